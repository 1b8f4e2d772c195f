package trainer

import (
	"fmt"
	"log"
	"sync"

	"github.com/lowaak/interval-clock/internal/workout"
)

// NewWorkoutManagerArg holds the arguments for creating a WorkoutManager
type NewWorkoutManagerArg struct {
	Model    *UIModel
	Source   workout.TickSource
	WakeLock workout.WakeLock // Optional
	Audio    workout.CueSink  // Optional
	Logger   *log.Logger
}

// WorkoutManager owns the scheduler of the application and mirrors its
// cues into the UIModel. Audible cues are forwarded to the audio sink.
type WorkoutManager struct {
	model     *UIModel
	scheduler *workout.Scheduler
	audio     workout.CueSink
	logger    *log.Logger

	shutdownOnce sync.Once
}

func NewWorkoutManager(args NewWorkoutManagerArg) *WorkoutManager {
	if args.Model == nil {
		panic("WorkoutManager: model cannot be nil")
	}
	if args.Logger == nil {
		panic("WorkoutManager: logger cannot be nil")
	}
	wm := &WorkoutManager{
		model:  args.Model,
		audio:  args.Audio,
		logger: args.Logger,
	}
	wm.scheduler = workout.NewScheduler(workout.NewSchedulerArg{
		Source:   args.Source,
		Sink:     wm,
		WakeLock: args.WakeLock,
		Logger:   args.Logger,
	})
	return wm
}

// HandleCue implements workout.CueSink. It runs on the tick goroutine, or
// on the caller of Start for the initial tick.
func (wm *WorkoutManager) HandleCue(cue workout.Cue) {
	if cue.Type == workout.CueTick {
		snapshot := wm.scheduler.Snapshot()
		wm.model.SetTimerState(TimerState{
			RunID:     snapshot.RunID,
			Status:    wm.scheduler.Status(),
			Phase:     cue.Phase,
			Remaining: cue.Remaining,
			Serie:     cue.Serie,
			Series:    cue.Series,
			Paused:    snapshot.Paused,
		})
		if cue.Phase == workout.PhaseFinished {
			wm.logger.Printf("WorkoutManager: workout finished")
		}
		return
	}
	if wm.audio != nil && cue.Audible() && !wm.model.IsMuted() {
		wm.audio.HandleCue(cue)
	}
}

// Start begins a run with config and remembers config for the next launch
func (wm *WorkoutManager) Start(config workout.Config) error {
	if err := wm.scheduler.Start(config); err != nil {
		return fmt.Errorf("start workout: %w", err)
	}
	wm.model.RememberSetup(config)
	wm.logger.Printf("WorkoutManager: started %s", DescribeSetup(config))
	return nil
}

// TogglePause pauses or resumes the run and returns whether it is paused
func (wm *WorkoutManager) TogglePause() bool {
	paused := wm.scheduler.TogglePause()
	wm.model.UpdateTimerStatus(wm.scheduler.Status())
	return paused
}

// Stop aborts the run. It is safe to call at any time.
func (wm *WorkoutManager) Stop() {
	wm.scheduler.Stop()
	wm.model.UpdateTimerStatus(wm.scheduler.Status())
}

func (wm *WorkoutManager) Status() workout.Status {
	return wm.scheduler.Status()
}

// Done returns a channel closed when the current run finishes or stops
func (wm *WorkoutManager) Done() <-chan struct{} {
	return wm.scheduler.Done()
}

// Shutdown stops any run in progress
func (wm *WorkoutManager) Shutdown() {
	wm.shutdownOnce.Do(func() {
		wm.logger.Println("WorkoutManager: Shutting down")
		wm.scheduler.Stop()
		wm.logger.Println("WorkoutManager: Shutdown complete")
	})
}
