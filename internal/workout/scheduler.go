package workout

import (
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// wakeLockAttempts is how many times Start tries to acquire the wake lock
const wakeLockAttempts = 2

// Status is the scheduler-level state, layered over RunState.Phase
type Status int

const (
	StatusIdle     Status = iota // No run started yet
	StatusRunning                // Countdown in progress
	StatusPaused                 // Countdown frozen, ticks ignored
	StatusFinished               // Last phase ran out
	StatusStopped                // Run aborted by Stop
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// RunState is the mutable state of one run. Only the Scheduler mutates it;
// callers get copies through Snapshot.
type RunState struct {
	RunID            string
	Config           Config
	Phase            Phase
	CurrentSerie     int
	RemainingSeconds int
	Paused           bool
}

// TickSource calls onTick once per elapsed second until stopped.
// Stop must not wait for an in-flight onTick call to return.
type TickSource interface {
	Start(onTick func())
	Stop()
}

// WakeLock keeps the display awake while a run is active
type WakeLock interface {
	Acquire() error
	Release() error
}

type noWakeLock struct{}

func (noWakeLock) Acquire() error { return nil }
func (noWakeLock) Release() error { return nil }

// NewSchedulerArg holds the collaborators of a Scheduler
type NewSchedulerArg struct {
	Source   TickSource
	Sink     CueSink
	WakeLock WakeLock // Optional
	Logger   *log.Logger
}

// Scheduler drives a workout run: it owns the single active countdown,
// turns elapsed seconds into RunState changes and cues, and answers
// start/pause/resume/stop requests.
type Scheduler struct {
	source   TickSource
	sink     CueSink
	wakeLock WakeLock
	logger   *log.Logger

	// tickMu serializes OnTick calls and the initial tick of Start
	tickMu sync.Mutex

	// Run state (protected by mu)
	mu       sync.Mutex
	status   Status
	state    RunState
	lockHeld bool
	done     chan struct{}
}

// NewScheduler creates an idle Scheduler
func NewScheduler(args NewSchedulerArg) *Scheduler {
	if args.Source == nil {
		panic("Scheduler: source cannot be nil")
	}
	if args.Sink == nil {
		panic("Scheduler: sink cannot be nil")
	}
	if args.Logger == nil {
		panic("Scheduler: logger cannot be nil")
	}
	wakeLock := args.WakeLock
	if wakeLock == nil {
		wakeLock = noWakeLock{}
	}
	done := make(chan struct{})
	close(done)
	return &Scheduler{
		source:   args.Source,
		sink:     args.Sink,
		wakeLock: wakeLock,
		logger:   args.Logger,
		status:   StatusIdle,
		done:     done,
	}
}

// Start begins a new run at PREP. The initial Tick cue is delivered before
// Start returns and before the tick source can deliver its first tick.
// A finished or stopped scheduler can be started again.
func (s *Scheduler) Start(config Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	if s.status == StatusRunning || s.status == StatusPaused {
		status := s.status
		s.mu.Unlock()
		return fmt.Errorf("start while %s: %w", status, ErrInvalidStateTransition)
	}
	s.state = RunState{
		RunID:            uuid.NewString(),
		Config:           config,
		Phase:            PhasePrep,
		CurrentSerie:     1,
		RemainingSeconds: PrepSeconds,
	}
	s.status = StatusRunning
	s.done = make(chan struct{})
	runID := s.state.RunID
	initial := tickCue(s.state)
	s.source.Start(func() { s.handleSourceTick(runID) })
	s.mu.Unlock()

	s.logger.Printf("Scheduler: run %s started (series=%d work=%ds rest=%ds cooldown=%ds, total %ds)",
		runID, config.Series, config.WorkSeconds, config.RestSeconds, config.CooldownSeconds, config.TotalSeconds())

	acquired := s.acquireWakeLock()
	if acquired {
		s.mu.Lock()
		stillActive := s.state.RunID == runID && (s.status == StatusRunning || s.status == StatusPaused)
		if stillActive {
			s.lockHeld = true
		}
		s.mu.Unlock()
		if !stillActive {
			s.releaseWakeLock()
		}
	}

	s.emit(initial)
	return nil
}

// OnTick processes one elapsed second of the current run. Ticks while
// paused, finished or stopped are ignored; a tick before any run is an
// error.
func (s *Scheduler) OnTick() error {
	return s.tick("")
}

// tick processes one elapsed second. A non-empty runID ties the tick to
// the run whose source produced it; ticks of an earlier run are ignored.
func (s *Scheduler) tick(runID string) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	s.mu.Lock()
	switch s.status {
	case StatusIdle:
		s.mu.Unlock()
		return fmt.Errorf("tick while idle: %w", ErrInvalidStateTransition)
	case StatusPaused, StatusFinished, StatusStopped:
		s.mu.Unlock()
		return nil
	}
	if runID != "" && runID != s.state.RunID {
		s.mu.Unlock()
		s.logger.Printf("Scheduler: ignoring tick of earlier run %s", runID)
		return nil
	}

	cues, finished := s.stepLocked()
	release := false
	runID = s.state.RunID
	if finished {
		s.status = StatusFinished
		s.source.Stop()
		release = s.lockHeld
		s.lockHeld = false
	}
	s.mu.Unlock()

	if release {
		s.releaseWakeLock()
	}
	for _, cue := range cues {
		s.emit(cue)
	}
	if finished {
		s.logger.Printf("Scheduler: run %s finished", runID)
		s.mu.Lock()
		s.closeDoneLocked()
		s.mu.Unlock()
	}
	return nil
}

// stepLocked decrements the countdown and advances the phase when it runs
// out. MUST be called with mu held.
func (s *Scheduler) stepLocked() ([]Cue, bool) {
	state := &s.state
	cues := make([]Cue, 0, 4)
	finished := false

	// A zero-length WORK phase is entered at 0 and ends on the next tick
	if state.RemainingSeconds > 0 {
		state.RemainingSeconds--
	}

	if state.RemainingSeconds >= 1 && state.RemainingSeconds <= 3 {
		cues = append(cues, countdownBeepCue(state.Phase))
	}

	if state.RemainingSeconds == 0 {
		cues = append(cues, phaseEndBeepCue(state.Phase))
		next := Advance(state.Config, state.Phase, state.CurrentSerie)
		if next.Terminal {
			state.Phase = PhaseFinished
			finished = true
			cues = append(cues, finishFanfareCue())
		} else {
			s.logger.Printf("Scheduler: run %s %s -> %s (%ds, serie %d/%d)",
				state.RunID, state.Phase, next.Phase, next.Duration, next.Serie, state.Config.Series)
			state.Phase = next.Phase
			state.RemainingSeconds = next.Duration
			state.CurrentSerie = next.Serie
		}
	}

	cues = append(cues, tickCue(*state))
	return cues, finished
}

// Pause freezes the countdown. Calling it twice is the same as once.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRunning {
		return
	}
	s.status = StatusPaused
	s.state.Paused = true
	s.logger.Printf("Scheduler: run %s paused at %s %ds", s.state.RunID, s.state.Phase, s.state.RemainingSeconds)
}

// Resume unfreezes the countdown. Missed seconds are not caught up.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPaused {
		return
	}
	s.status = StatusRunning
	s.state.Paused = false
	s.logger.Printf("Scheduler: run %s resumed", s.state.RunID)
}

// TogglePause pauses a running countdown or resumes a paused one and
// returns whether the scheduler is paused afterwards
func (s *Scheduler) TogglePause() bool {
	s.mu.Lock()
	status := s.status
	s.mu.Unlock()

	switch status {
	case StatusRunning:
		s.Pause()
	case StatusPaused:
		s.Resume()
	}
	return s.Status() == StatusPaused
}

// Stop cancels the tick source, releases the wake lock and discards the
// run. It is safe to call in any status, any number of times, including
// from a CueSink.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	switch s.status {
	case StatusIdle, StatusStopped:
		s.mu.Unlock()
		return
	}
	if s.status == StatusRunning || s.status == StatusPaused {
		s.source.Stop()
	}
	runID := s.state.RunID
	s.status = StatusStopped
	s.state = RunState{}
	release := s.lockHeld
	s.lockHeld = false
	s.closeDoneLocked()
	s.mu.Unlock()

	if release {
		s.releaseWakeLock()
	}
	s.logger.Printf("Scheduler: run %s stopped", runID)
}

// Status returns the current scheduler status
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns a copy of the current RunState. The zero RunState is
// returned when no run is active or the last run was stopped.
func (s *Scheduler) Snapshot() RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed when the current run finishes or is
// stopped. With no run in progress the returned channel is already closed.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// closeDoneLocked closes the done channel once. MUST be called with mu held.
func (s *Scheduler) closeDoneLocked() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Scheduler) handleSourceTick(runID string) {
	if err := s.tick(runID); err != nil {
		s.logger.Printf("Scheduler: %v", err)
	}
}

// emit hands a cue to the sink. A panicking sink is logged and does not
// stop the countdown.
func (s *Scheduler) emit(cue Cue) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("Scheduler: cue sink panic on %s: %v\n%s", cue.Type, r, debug.Stack())
		}
	}()
	s.sink.HandleCue(cue)
}

func (s *Scheduler) acquireWakeLock() bool {
	for attempt := 1; attempt <= wakeLockAttempts; attempt++ {
		err := s.wakeLock.Acquire()
		if err == nil {
			return true
		}
		s.logger.Printf("Scheduler: wake lock acquire attempt %d/%d failed: %v", attempt, wakeLockAttempts, err)
	}
	return false
}

func (s *Scheduler) releaseWakeLock() {
	if err := s.wakeLock.Release(); err != nil {
		s.logger.Printf("Scheduler: wake lock release failed: %v", err)
	}
}
