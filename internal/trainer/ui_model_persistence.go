package trainer

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lowaak/interval-clock/internal/workout"
)

type setupRecord struct {
	Series          int       `yaml:"series"`
	WorkSeconds     int       `yaml:"work_seconds"`
	RestSeconds     int       `yaml:"rest_seconds"`
	CooldownSeconds int       `yaml:"cooldown_seconds"`
	SavedAt         time.Time `yaml:"saved_at"`
}

type uiModelPersistenceData struct {
	LastSetup *setupRecord `yaml:"last_setup,omitempty"`
	Muted     bool         `yaml:"muted"`
}

// uiModelPersistence remembers the last started setup and the mute flag
// between launches. An empty file path keeps everything in memory.
type uiModelPersistence struct {
	filePath string
	data     uiModelPersistenceData
	logger   *log.Logger
}

func newUIModelPersistence(filePath string, logger *log.Logger) *uiModelPersistence {
	p := &uiModelPersistence{
		filePath: filePath,
		logger:   logger,
	}
	p.load()
	return p
}

// getLastSetup returns the remembered setup, if it is still valid
func (p *uiModelPersistence) getLastSetup() (workout.Config, bool) {
	record := p.data.LastSetup
	if record == nil {
		return workout.Config{}, false
	}
	config := workout.Config{
		Series:          record.Series,
		WorkSeconds:     record.WorkSeconds,
		RestSeconds:     record.RestSeconds,
		CooldownSeconds: record.CooldownSeconds,
	}
	if err := config.Validate(); err != nil {
		p.logger.Printf("UIModelPersistence: ignoring remembered setup: %v", err)
		return workout.Config{}, false
	}
	return config, true
}

func (p *uiModelPersistence) setLastSetup(config workout.Config) {
	p.data.LastSetup = &setupRecord{
		Series:          config.Series,
		WorkSeconds:     config.WorkSeconds,
		RestSeconds:     config.RestSeconds,
		CooldownSeconds: config.CooldownSeconds,
		SavedAt:         time.Now().UTC().Truncate(time.Second),
	}
	p.save()
}

func (p *uiModelPersistence) getMuted() bool {
	return p.data.Muted
}

func (p *uiModelPersistence) setMuted(muted bool) {
	if p.data.Muted == muted {
		return
	}
	p.data.Muted = muted
	p.save()
}

func (p *uiModelPersistence) load() {
	p.data = uiModelPersistenceData{}
	if p.filePath == "" {
		return
	}
	raw, err := os.ReadFile(p.filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.logger.Printf("UIModelPersistence: load %s (no existing file)", p.filePath)
		} else {
			p.logger.Printf("UIModelPersistence: load %s failed: %v", p.filePath, err)
		}
		return
	}
	if err := yaml.Unmarshal(raw, &p.data); err != nil {
		p.logger.Printf("UIModelPersistence: load %s failed to parse: %v", p.filePath, err)
		p.data = uiModelPersistenceData{}
		return
	}
	p.logger.Printf("UIModelPersistence: load %s", p.filePath)
}

func (p *uiModelPersistence) save() {
	if p.filePath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.filePath), 0o755); err != nil {
		p.logger.Printf("UIModelPersistence: save mkdir failed: %v", err)
		return
	}
	raw, err := yaml.Marshal(p.data)
	if err != nil {
		p.logger.Printf("UIModelPersistence: save marshal failed: %v", err)
		return
	}
	if err := os.WriteFile(p.filePath, raw, 0o644); err != nil {
		p.logger.Printf("UIModelPersistence: save %s failed: %v", p.filePath, err)
		return
	}
	p.logger.Printf("UIModelPersistence: save %s", p.filePath)
}
