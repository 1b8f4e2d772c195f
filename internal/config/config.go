// Package config resolves the application settings from command-line
// flags, INTERVAL_CLOCK_* environment variables and an optional YAML
// config file, in that order of precedence
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lowaak/interval-clock/internal/workout"
)

const (
	AppName   = "interval-clock"
	EnvPrefix = "INTERVAL_CLOCK"
	AppDir    = ".interval-clock"

	DefaultSeries          = 5
	DefaultWorkSeconds     = 30
	DefaultRestSeconds     = 10
	DefaultCooldownSeconds = 0
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
)

// Keys shared by flags, env variables and the config file
const (
	KeySeries        = "series"
	KeyWork          = "work"
	KeyRest          = "rest"
	KeyCooldown      = "cooldown"
	KeyHeadless      = "headless"
	KeySound         = "sound"
	KeyWakeLock      = "wake-lock"
	KeyHRM           = "hrm"
	KeyHRMAddress    = "hrm-address"
	KeyLogFile       = "log-file"
	KeyLogMaxSizeMB  = "log-max-size-mb"
	KeyLogMaxBackups = "log-max-backups"
	KeyStateFile     = "state-file"
	KeyConfig        = "config"
)

var workoutKeys = []string{KeySeries, KeyWork, KeyRest, KeyCooldown}

// Settings is the resolved application configuration
type Settings struct {
	Workout workout.Config

	// WorkoutExplicit is set when any workout value came from a flag, the
	// environment or the config file; otherwise the remembered setup wins
	WorkoutExplicit bool

	Headless   bool
	Sound      bool
	WakeLock   bool
	HRM        bool
	HRMAddress string

	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	StateFile     string

	// ConfigFile is the config file that was read, empty if none
	ConfigFile string
}

// DefaultDir returns ~/.interval-clock, or ./.interval-clock when the home
// directory cannot be resolved
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, AppDir)
}

// NewFlagSet declares every flag. It is exported so the usage text can be
// printed by the caller.
func NewFlagSet() *pflag.FlagSet {
	dir := DefaultDir()
	flags := pflag.NewFlagSet(AppName, pflag.ContinueOnError)
	flags.SortFlags = false
	flags.IntP(KeySeries, "s", DefaultSeries, "number of work/rest series")
	flags.IntP(KeyWork, "w", DefaultWorkSeconds, "work phase length in seconds")
	flags.IntP(KeyRest, "r", DefaultRestSeconds, "rest phase length in seconds")
	flags.IntP(KeyCooldown, "c", DefaultCooldownSeconds, "cooldown length in seconds, 0 to skip")
	flags.Bool(KeyHeadless, false, "print the countdown to stdout instead of the terminal UI, and start immediately")
	flags.Bool(KeySound, true, "ring the terminal bell on countdown and phase changes")
	flags.Bool(KeyWakeLock, true, "inhibit the screensaver while a workout runs")
	flags.Bool(KeyHRM, false, "show heart rate from a Bluetooth LE strap")
	flags.String(KeyHRMAddress, "", "connect only to the strap with this address")
	flags.String(KeyLogFile, filepath.Join(dir, "interval-clock.log"), "log file path")
	flags.Int(KeyLogMaxSizeMB, DefaultLogMaxSizeMB, "rotate the log file after this many megabytes")
	flags.Int(KeyLogMaxBackups, DefaultLogMaxBackups, "rotated log files to keep")
	flags.String(KeyStateFile, filepath.Join(dir, "last_setup.yaml"), "file remembering the last workout setup")
	flags.String(KeyConfig, filepath.Join(dir, "config.yaml"), "config file")
	return flags
}

// Load parses args (without the program name) and resolves the settings.
// pflag.ErrHelp is returned as is when -h/--help is given.
func Load(args []string) (Settings, error) {
	flags := NewFlagSet()
	if err := flags.Parse(args); err != nil {
		return Settings{}, err
	}
	return load(flags)
}

func load(flags *pflag.FlagSet) (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return Settings{}, fmt.Errorf("bind flags: %w", err)
	}

	settings := Settings{}
	configFile := v.GetString(KeyConfig)
	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		err := v.ReadInConfig()
		switch {
		case err == nil:
			settings.ConfigFile = configFile
		case errors.Is(err, fs.ErrNotExist) && !v.IsSet(KeyConfig):
			// The default config file is optional
		default:
			return Settings{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	values := make(map[string]int, len(workoutKeys))
	for _, key := range workoutKeys {
		value, err := cast.ToIntE(v.Get(key))
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", key, err)
		}
		values[key] = value
		if v.IsSet(key) {
			settings.WorkoutExplicit = true
		}
	}
	settings.Workout = workout.Config{
		Series:          values[KeySeries],
		WorkSeconds:     values[KeyWork],
		RestSeconds:     values[KeyRest],
		CooldownSeconds: values[KeyCooldown],
	}
	if err := settings.Workout.Validate(); err != nil {
		return Settings{}, err
	}

	settings.Headless = v.GetBool(KeyHeadless)
	settings.Sound = v.GetBool(KeySound)
	settings.WakeLock = v.GetBool(KeyWakeLock)
	settings.HRM = v.GetBool(KeyHRM)
	settings.HRMAddress = v.GetString(KeyHRMAddress)
	settings.LogFile = v.GetString(KeyLogFile)
	settings.LogMaxSizeMB = v.GetInt(KeyLogMaxSizeMB)
	settings.LogMaxBackups = v.GetInt(KeyLogMaxBackups)
	settings.StateFile = v.GetString(KeyStateFile)

	if settings.LogMaxSizeMB < 1 {
		return Settings{}, fmt.Errorf("%s must be at least 1, got %d", KeyLogMaxSizeMB, settings.LogMaxSizeMB)
	}
	if settings.LogMaxBackups < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative, got %d", KeyLogMaxBackups, settings.LogMaxBackups)
	}
	if settings.HRMAddress != "" {
		settings.HRM = true
	}

	return settings, nil
}
