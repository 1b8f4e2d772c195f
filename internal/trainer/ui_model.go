package trainer

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/interval-clock/internal/events"
	"github.com/lowaak/interval-clock/internal/go_func_utils"
	"github.com/lowaak/interval-clock/internal/hrm"
	"github.com/lowaak/interval-clock/internal/workout"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

// SetupState is the setup screen: the workout being edited and the
// stepper that has the cursor
type SetupState struct {
	Config   workout.Config
	Selected SetupField
}

// TimerState is the timer screen, refreshed on every Tick cue
type TimerState struct {
	RunID     string
	Status    workout.Status
	Phase     workout.Phase
	Remaining int
	Serie     int
	Series    int
	Paused    bool
	Muted     bool
}

// HeartRateState is the heart-rate line shown under the countdown
type HeartRateState struct {
	Enabled bool
	State   hrm.State
	Device  string
	BPM     int
	Worn    bool
}

// HeartRateSource is the part of hrm.Monitor the model listens to
type HeartRateSource interface {
	ListenToMeasurements(ch chan<- hrm.Measurement) func()
	ListenToStatus(ch chan<- hrm.Status) func()
}

// NewUIModelArg holds the arguments for creating a new UIModel
type NewUIModelArg struct {
	Logger    *log.Logger
	UILogChan <-chan string
	StateFile string // Empty keeps the remembered setup in memory only

	// InitialSetup overrides the remembered setup when set
	InitialSetup *workout.Config
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	setupEvent            *events.ChannelEvent[SetupState]
	setup                 SetupState
	timerEvent            *events.ChannelEvent[TimerState]
	timer                 TimerState
	heartRateEvent        *events.ChannelEvent[HeartRateState]
	heartRate             HeartRateState
	muteEvent             *events.CallbackEvent[bool]
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

func NewUIModel(args NewUIModelArg) *UIModel {
	if args.Logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if args.UILogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	persistence := newUIModelPersistence(args.StateFile, args.Logger)

	setup := DefaultSetup
	if remembered, ok := persistence.getLastSetup(); ok {
		setup = remembered
	}
	if args.InitialSetup != nil {
		setup = *args.InitialSetup
	}

	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeSetup},
		setupEvent:            events.NewChannelEvent[SetupState](true),
		setup:                 SetupState{Config: setup, Selected: FieldSeries},
		timerEvent:            events.NewChannelEvent[TimerState](true),
		timer:                 TimerState{Status: workout.StatusIdle, Muted: persistence.getMuted()},
		heartRateEvent:        events.NewChannelEvent[HeartRateState](true),
		muteEvent:             events.NewCallbackEvent[bool](true),
		persistence:           persistence,
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                args.Logger,
	}

	model.muteEvent.Notify(model.timer.Muted)

	// Read from the UI log channel and populate logLines
	go_func_utils.SafeGoGroup(model.logger, &model.wg, "UIModel.readFromLogChannel", func() { model.readFromLogChannel(ctx, args.UILogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan<- string) func() {
	return m.logEvent.Listen(ch)
}

func (m *UIModel) ListenToCloseApplication(ch chan<- struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

func (m *UIModel) RequestCloseApplication() {
	m.logger.Println("UIModel: close requested")
	m.closeApplicationEvent.Notify(struct{}{})
}

// --- UI state ---

func (m *UIModel) ListenToUIState(ch chan<- UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// --- Setup ---

func (m *UIModel) ListenToSetup(ch chan<- SetupState) func() {
	return m.setupEvent.Listen(ch)
}

func (m *UIModel) GetSetup() SetupState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.setup
}

// SelectSetupField moves the stepper cursor by delta, wrapping around
func (m *UIModel) SelectSetupField(delta int) {
	m.mu.Lock()
	count := len(AllSetupFields)
	index := (int(m.setup.Selected) + delta) % count
	if index < 0 {
		index += count
	}
	m.setup.Selected = AllSetupFields[index].Field
	state := m.setup
	m.mu.Unlock()

	m.setupEvent.Notify(state)
}

// AdjustSelectedField moves the selected stepper by steps times its step
// size, clamped to the field limits
func (m *UIModel) AdjustSelectedField(steps int) {
	m.mu.Lock()
	info, ok := GetSetupFieldInfo(m.setup.Selected)
	if !ok {
		m.mu.Unlock()
		return
	}
	m.setup.Config = AdjustSetup(m.setup.Config, info.Field, steps*info.Step)
	state := m.setup
	m.mu.Unlock()

	m.setupEvent.Notify(state)
}

func (m *UIModel) SetSetupConfig(config workout.Config) {
	m.mu.Lock()
	m.setup.Config = config
	state := m.setup
	m.mu.Unlock()

	m.setupEvent.Notify(state)
}

// RememberSetup persists config as the setup offered on the next launch
func (m *UIModel) RememberSetup(config workout.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistence.setLastSetup(config)
}

// --- Timer ---

func (m *UIModel) ListenToTimer(ch chan<- TimerState) func() {
	return m.timerEvent.Listen(ch)
}

func (m *UIModel) GetTimerState() TimerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timer
}

// SetTimerState replaces the timer state. The mute flag is owned by the
// model and kept as is.
func (m *UIModel) SetTimerState(state TimerState) {
	m.mu.Lock()
	state.Muted = m.timer.Muted
	m.timer = state
	m.mu.Unlock()

	m.timerEvent.Notify(state)
}

// UpdateTimerStatus changes status and paused flag without touching the
// countdown
func (m *UIModel) UpdateTimerStatus(status workout.Status) {
	m.mu.Lock()
	m.timer.Status = status
	m.timer.Paused = status == workout.StatusPaused
	state := m.timer
	m.mu.Unlock()

	m.timerEvent.Notify(state)
}

func (m *UIModel) SetMuted(muted bool) {
	m.mu.Lock()
	m.timer.Muted = muted
	m.persistence.setMuted(muted)
	state := m.timer
	m.mu.Unlock()

	m.muteEvent.Notify(muted)
	m.timerEvent.Notify(state)
}

// OnMuteChanged calls callback synchronously with the current mute flag and
// again on every change. Returns the function that removes the callback.
func (m *UIModel) OnMuteChanged(callback func(muted bool)) func() {
	return m.muteEvent.Listen(callback)
}

func (m *UIModel) IsMuted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timer.Muted
}

// --- Heart rate ---

func (m *UIModel) ListenToHeartRate(ch chan<- HeartRateState) func() {
	return m.heartRateEvent.Listen(ch)
}

func (m *UIModel) GetHeartRate() HeartRateState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.heartRate
}

// AttachHeartRateSource starts following a heart-rate monitor
func (m *UIModel) AttachHeartRateSource(source HeartRateSource) {
	if source == nil {
		return
	}
	m.mu.Lock()
	m.heartRate.Enabled = true
	state := m.heartRate
	m.mu.Unlock()
	m.heartRateEvent.Notify(state)

	go_func_utils.SafeGoGroup(m.logger, &m.wg, "UIModel.listenToHeartRate", func() { m.listenToHeartRate(m.ctx, source) })
}

func (m *UIModel) listenToHeartRate(ctx context.Context, source HeartRateSource) {

	measurementCh := make(chan hrm.Measurement, 1)
	measurementUnregister := source.ListenToMeasurements(measurementCh)
	defer measurementUnregister()

	statusCh := make(chan hrm.Status, 4)
	statusUnregister := source.ListenToStatus(statusCh)
	defer statusUnregister()

	for {
		select {
		case <-ctx.Done():
			return
		case measurement := <-measurementCh:
			m.mu.Lock()
			m.heartRate.BPM = measurement.BPM
			m.heartRate.Worn = measurement.Worn()
			state := m.heartRate
			m.mu.Unlock()
			m.heartRateEvent.Notify(state)
		case status := <-statusCh:
			m.mu.Lock()
			m.heartRate.State = status.State
			m.heartRate.Device = status.Device
			if status.State != hrm.StateConnected {
				m.heartRate.BPM = 0
			}
			state := m.heartRate
			m.mu.Unlock()
			m.heartRateEvent.Notify(state)
		}
	}
}

// --- Log ---

func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
