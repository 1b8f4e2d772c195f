package trainer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/lowaak/interval-clock/internal/go_func_utils"
	"github.com/lowaak/interval-clock/internal/workout"
)

// ErrStopped is returned by ConsoleRunner.Run when the workout was stopped
// from the input
var ErrStopped = errors.New("workout stopped")

// NewConsoleRunnerArg holds the arguments for creating a ConsoleRunner
type NewConsoleRunnerArg struct {
	Out      io.Writer
	Source   workout.TickSource
	WakeLock workout.WakeLock // Optional
	Audio    workout.CueSink  // Optional
	Logger   *log.Logger
}

// ConsoleRunner runs one workout without the curses UI, printing a line
// per second to Out. Input lines watched by WatchInput control the run:
// Enter or "p" toggles pause, "s" or "q" stops.
type ConsoleRunner struct {
	out       io.Writer
	scheduler *workout.Scheduler
	logger    *log.Logger

	mu       sync.Mutex
	lastLine string
}

func NewConsoleRunner(args NewConsoleRunnerArg) *ConsoleRunner {
	if args.Out == nil {
		panic("ConsoleRunner: out cannot be nil")
	}
	if args.Logger == nil {
		panic("ConsoleRunner: logger cannot be nil")
	}
	r := &ConsoleRunner{
		out:    args.Out,
		logger: args.Logger,
	}
	sinks := workout.MultiSink{workout.CueSinkFunc(r.print)}
	if args.Audio != nil {
		sinks = append(sinks, args.Audio)
	}
	r.scheduler = workout.NewScheduler(workout.NewSchedulerArg{
		Source:   args.Source,
		Sink:     sinks,
		WakeLock: args.WakeLock,
		Logger:   args.Logger,
	})
	return r
}

// Run starts config and blocks until the workout finishes or ctx is
// cancelled. Cancelling stops the run and returns ctx.Err().
func (r *ConsoleRunner) Run(ctx context.Context, config workout.Config) error {
	if err := r.scheduler.Start(config); err != nil {
		return fmt.Errorf("start workout: %w", err)
	}
	r.logger.Printf("ConsoleRunner: started %s", DescribeSetup(config))

	select {
	case <-r.scheduler.Done():
		if r.scheduler.Status() == workout.StatusFinished {
			return nil
		}
		r.writeLine("Stopped")
		return ErrStopped
	case <-ctx.Done():
		r.scheduler.Stop()
		r.writeLine("Stopped")
		return ctx.Err()
	}
}

// TogglePause pauses or resumes the running workout and returns whether it
// is paused afterwards
func (r *ConsoleRunner) TogglePause() bool {
	paused := r.scheduler.TogglePause()
	switch r.scheduler.Status() {
	case workout.StatusPaused:
		r.writeLine("Paused (Enter to resume)")
	case workout.StatusRunning:
		r.writeLine("Resumed")
	}
	return paused
}

// Stop aborts the running workout; Run then returns ErrStopped
func (r *ConsoleRunner) Stop() {
	r.scheduler.Stop()
}

// WatchInput reads control lines from in until EOF
func (r *ConsoleRunner) WatchInput(in io.Reader) {
	go_func_utils.SafeGo(r.logger, "ConsoleRunner.WatchInput", func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "", "p":
				r.TogglePause()
			case "s", "q":
				r.Stop()
			}
		}
		if err := scanner.Err(); err != nil {
			r.logger.Printf("ConsoleRunner: input: %v", err)
		}
	})
}

func (r *ConsoleRunner) writeLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := fmt.Fprintln(r.out, line); err != nil {
		r.logger.Printf("ConsoleRunner: write failed: %v", err)
	}
}

func (r *ConsoleRunner) print(cue workout.Cue) {
	if cue.Type != workout.CueTick {
		return
	}
	text := DescribeTimer(TimerState{
		Phase:     cue.Phase,
		Remaining: cue.Remaining,
		Serie:     cue.Serie,
		Series:    cue.Series,
	})
	line := fmt.Sprintf("%-8s %5s  %s", text.PhaseLabel, text.Time, text.Series)

	r.mu.Lock()
	defer r.mu.Unlock()
	if line == r.lastLine {
		return
	}
	r.lastLine = line
	if _, err := fmt.Fprintln(r.out, line); err != nil {
		r.logger.Printf("ConsoleRunner: write failed: %v", err)
	}
}
