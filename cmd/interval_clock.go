package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/interval-clock/internal/audio"
	"github.com/lowaak/interval-clock/internal/clock"
	"github.com/lowaak/interval-clock/internal/config"
	"github.com/lowaak/interval-clock/internal/hrm"
	"github.com/lowaak/interval-clock/internal/trainer"
	"github.com/lowaak/interval-clock/internal/wakelock"
	"github.com/lowaak/interval-clock/internal/workout"
)

const uiLogChanSize = 256

// uiLogWriter forwards each log line to the UI log pane. Lines are dropped
// when the UI falls behind; the log file still has them.
type uiLogWriter struct {
	ch chan<- string
}

func (w uiLogWriter) Write(p []byte) (int, error) {
	line := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), p)
	select {
	case w.ch <- line:
	default:
	}
	return len(p), nil
}

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup happens before
// os.Exit
func run() int {
	settings, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 2
	}

	logFile := &lumberjack.Logger{
		Filename:   settings.LogFile,
		MaxSize:    settings.LogMaxSizeMB,
		MaxBackups: settings.LogMaxBackups,
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.Headless {
		return runHeadless(ctx, settings, log.New(logFile, "", log.LstdFlags))
	}
	return runTUI(ctx, settings, logFile)
}

func runHeadless(ctx context.Context, settings config.Settings, logger *log.Logger) int {
	logger.Printf("Main: starting headless (config %q)", settings.ConfigFile)

	var player *audio.Player
	var sink workout.CueSink
	if settings.Sound {
		player = audio.NewPlayer(audio.NewBellBeeper(os.Stdout), logger)
		defer player.Close()
		sink = player
	}

	runner := trainer.NewConsoleRunner(trainer.NewConsoleRunnerArg{
		Out:      os.Stdout,
		Source:   clock.NewTicker(clock.DefaultInterval, logger),
		WakeLock: wakelock.New(settings.WakeLock, logger),
		Audio:    sink,
		Logger:   logger,
	})

	fmt.Println("Enter or p: pause/resume, s: stop, Ctrl-C: quit")
	runner.WatchInput(os.Stdin)

	// Let the fanfare ring out before exiting
	err := runner.Run(ctx, settings.Workout)
	if err == nil && player != nil {
		time.Sleep(time.Second)
	}
	switch {
	case err == nil, errors.Is(err, trainer.ErrStopped):
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, err)
		return 1
	}
}

func runTUI(ctx context.Context, settings config.Settings, logFile io.Writer) int {
	uiLogChan := make(chan string, uiLogChanSize)
	logger := log.New(io.MultiWriter(logFile, uiLogWriter{ch: uiLogChan}), "", log.LstdFlags)
	logger.Printf("Main: starting (config %q, state %q)", settings.ConfigFile, settings.StateFile)

	app := tview.NewApplication()
	screen, err := tcell.NewScreen()
	must("create screen", err)
	app.SetScreen(screen)

	var initialSetup *workout.Config
	if settings.WorkoutExplicit {
		initialSetup = &settings.Workout
	}
	model := trainer.NewUIModel(trainer.NewUIModelArg{
		Logger:       logger,
		UILogChan:    uiLogChan,
		StateFile:    settings.StateFile,
		InitialSetup: initialSetup,
	})

	var player *audio.Player
	var sink workout.CueSink
	var muter trainer.Muter
	if settings.Sound {
		player = audio.NewPlayer(audio.NewScreenBeeper(screen), logger)
		sink = player
		muter = player
	}

	workoutManager := trainer.NewWorkoutManager(trainer.NewWorkoutManagerArg{
		Model:    model,
		Source:   clock.NewTicker(clock.DefaultInterval, logger),
		WakeLock: wakelock.New(settings.WakeLock, logger),
		Audio:    sink,
		Logger:   logger,
	})

	var monitor *hrm.Monitor
	if settings.HRM {
		monitor = hrm.NewMonitor(hrm.NewMonitorArg{
			Address: settings.HRMAddress,
			Logger:  logger,
		})
		model.AttachHeartRateSource(monitor)
		monitor.Start()
	}

	controller := trainer.NewUIController(model, workoutManager, muter, logger)
	view := trainer.NewBaseUIView(trainer.NewBaseUIViewArg{
		UIViewImpl:   trainer.NewCursesUIView(logger, app, model),
		UIModel:      model,
		UIController: controller,
		Logger:       logger,
	})

	go func() {
		<-ctx.Done()
		model.RequestCloseApplication()
	}()

	runErr := view.Run()

	// Views first, then the producers they listen to
	view.Shutdown()
	controller.Shutdown()
	if player != nil {
		player.Close()
	}
	if monitor != nil {
		monitor.Shutdown()
	}
	model.Shutdown()

	if runErr != nil {
		logger.Printf("Main: UI exited with error: %v", runErr)
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.AppName, runErr)
		return 1
	}
	logger.Println("Main: bye")
	return 0
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + strings.TrimSpace(err.Error()))
	}
}
