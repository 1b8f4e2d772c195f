package trainer

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-clock/internal/events"
	"github.com/lowaak/interval-clock/internal/hrm"
	"github.com/lowaak/interval-clock/internal/workout"
)

const eventuallyTimeout = time.Second

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestModel(t *testing.T, args NewUIModelArg) (*UIModel, chan string) {
	t.Helper()
	logChan := make(chan string, 16)
	if args.Logger == nil {
		args.Logger = testLogger()
	}
	args.UILogChan = logChan
	model := NewUIModel(args)
	t.Cleanup(model.Shutdown)
	return model, logChan
}

type fakeHeartRateSource struct {
	measurements *events.ChannelEvent[hrm.Measurement]
	status       *events.ChannelEvent[hrm.Status]
}

func newFakeHeartRateSource() *fakeHeartRateSource {
	return &fakeHeartRateSource{
		measurements: events.NewChannelEvent[hrm.Measurement](false),
		status:       events.NewChannelEvent[hrm.Status](true),
	}
}

func (f *fakeHeartRateSource) ListenToMeasurements(ch chan<- hrm.Measurement) func() {
	return f.measurements.Listen(ch)
}

func (f *fakeHeartRateSource) ListenToStatus(ch chan<- hrm.Status) func() {
	return f.status.Listen(ch)
}

func TestNewUIModel_NilArgs(t *testing.T) {
	assert.PanicsWithValue(t, "UIModel: logger cannot be nil", func() {
		NewUIModel(NewUIModelArg{UILogChan: make(chan string)})
	})
	assert.PanicsWithValue(t, "UIModel: uiLogChan cannot be nil", func() {
		NewUIModel(NewUIModelArg{Logger: testLogger()})
	})
}

func TestUIModel_Defaults(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})

	assert.Equal(t, UIModeSetup, model.GetUIState().Mode)
	assert.Equal(t, SetupState{Config: DefaultSetup, Selected: FieldSeries}, model.GetSetup())
	assert.Equal(t, workout.StatusIdle, model.GetTimerState().Status)
	assert.False(t, model.IsMuted())
	assert.False(t, model.GetHeartRate().Enabled)
}

func TestUIModel_InitialSetupPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	remembered := workout.Config{Series: 7, WorkSeconds: 20, RestSeconds: 5, CooldownSeconds: 30}
	explicit := workout.Config{Series: 2, WorkSeconds: 60, RestSeconds: 30, CooldownSeconds: 0}

	first, _ := newTestModel(t, NewUIModelArg{StateFile: path})
	first.RememberSetup(remembered)

	fromFile, _ := newTestModel(t, NewUIModelArg{StateFile: path})
	assert.Equal(t, remembered, fromFile.GetSetup().Config)

	overridden, _ := newTestModel(t, NewUIModelArg{StateFile: path, InitialSetup: &explicit})
	assert.Equal(t, explicit, overridden.GetSetup().Config)
}

func TestUIModel_SetModeNotifiesOnChange(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	ch := make(chan UIState, 4)
	unregister := model.ListenToUIState(ch)
	defer unregister()

	model.SetMode(UIModeSetup)
	assert.Empty(t, ch)

	model.SetMode(UIModeTimer)
	require.Len(t, ch, 1)
	assert.Equal(t, UIModeTimer, (<-ch).Mode)
}

func TestUIModel_SelectSetupFieldWraps(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})

	model.SelectSetupField(-1)
	assert.Equal(t, FieldCooldown, model.GetSetup().Selected)
	model.SelectSetupField(1)
	assert.Equal(t, FieldSeries, model.GetSetup().Selected)
	model.SelectSetupField(len(AllSetupFields) + 2)
	assert.Equal(t, FieldRest, model.GetSetup().Selected)
}

func TestUIModel_AdjustSelectedField(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	ch := make(chan SetupState, 8)
	unregister := model.ListenToSetup(ch)
	defer unregister()

	model.AdjustSelectedField(2)
	assert.Equal(t, DefaultSetup.Series+2, model.GetSetup().Config.Series)

	model.SelectSetupField(1)
	model.AdjustSelectedField(-1)
	assert.Equal(t, DefaultSetup.WorkSeconds-5, model.GetSetup().Config.WorkSeconds)

	model.AdjustSelectedField(-1000)
	assert.Equal(t, 0, model.GetSetup().Config.WorkSeconds)

	assert.Len(t, ch, 4)
}

func TestUIModel_SetTimerStateKeepsMute(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	model.SetMuted(true)

	model.SetTimerState(TimerState{Status: workout.StatusRunning, Phase: workout.PhaseWork, Remaining: 12})
	state := model.GetTimerState()
	assert.True(t, state.Muted)
	assert.Equal(t, 12, state.Remaining)

	model.UpdateTimerStatus(workout.StatusPaused)
	state = model.GetTimerState()
	assert.True(t, state.Paused)
	assert.Equal(t, workout.StatusPaused, state.Status)
	assert.Equal(t, 12, state.Remaining)
}

func TestUIModel_MutePersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	first, _ := newTestModel(t, NewUIModelArg{StateFile: path})
	first.SetMuted(true)

	second, _ := newTestModel(t, NewUIModelArg{StateFile: path})
	assert.True(t, second.IsMuted())
}

func TestUIModel_RequestCloseApplication(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	ch := make(chan struct{}, 1)
	unregister := model.ListenToCloseApplication(ch)
	defer unregister()

	model.RequestCloseApplication()
	select {
	case <-ch:
	case <-time.After(eventuallyTimeout):
		t.Fatal("close not requested")
	}
}

func TestUIModel_LogTail(t *testing.T) {
	model, logChan := newTestModel(t, NewUIModelArg{})
	assert.Empty(t, model.GetLogTail(5))

	for i := 0; i < 3; i++ {
		logChan <- fmt.Sprintf("line %d\n", i)
	}
	require.Eventually(t, func() bool { return len(model.GetLogTail(10)) == 3 }, eventuallyTimeout, time.Millisecond)

	assert.Equal(t, []string{"line 1\n", "line 2\n"}, model.GetLogTail(2))
	assert.Empty(t, model.GetLogTail(0))
}

func TestUIModel_LogTailIsBounded(t *testing.T) {
	model, logChan := newTestModel(t, NewUIModelArg{})
	for i := 0; i < maxLogLines+10; i++ {
		logChan <- fmt.Sprintf("line %d\n", i)
	}
	last := fmt.Sprintf("line %d\n", maxLogLines+9)
	require.Eventually(t, func() bool {
		tail := model.GetLogTail(1)
		return len(tail) == 1 && tail[0] == last
	}, eventuallyTimeout, time.Millisecond)

	all := model.GetLogTail(maxLogLines * 2)
	assert.Len(t, all, maxLogLines)
	assert.Equal(t, "line 10\n", all[0])
}

func TestUIModel_HeartRate(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	source := newFakeHeartRateSource()

	model.AttachHeartRateSource(nil)
	assert.False(t, model.GetHeartRate().Enabled)

	model.AttachHeartRateSource(source)
	assert.True(t, model.GetHeartRate().Enabled)
	require.Eventually(t, func() bool { return source.measurements.ListenerCount() == 1 }, eventuallyTimeout, time.Millisecond)

	source.status.Notify(hrm.Status{State: hrm.StateConnected, Device: "Polar H10"})
	require.Eventually(t, func() bool { return model.GetHeartRate().State == hrm.StateConnected }, eventuallyTimeout, time.Millisecond)
	assert.Equal(t, "Polar H10", model.GetHeartRate().Device)

	source.measurements.Notify(hrm.Measurement{BPM: 142, ContactSupported: true, ContactDetected: true})
	require.Eventually(t, func() bool { return model.GetHeartRate().BPM == 142 }, eventuallyTimeout, time.Millisecond)
	assert.True(t, model.GetHeartRate().Worn)

	source.status.Notify(hrm.Status{State: hrm.StateDisconnected})
	require.Eventually(t, func() bool { return model.GetHeartRate().State == hrm.StateDisconnected }, eventuallyTimeout, time.Millisecond)
	assert.Zero(t, model.GetHeartRate().BPM)
}

func TestUIModel_OnMuteChanged(t *testing.T) {
	model, _ := newTestModel(t, NewUIModelArg{})
	var calls []bool
	unregister := model.OnMuteChanged(func(muted bool) { calls = append(calls, muted) })

	model.SetMuted(true)
	model.SetMuted(false)
	unregister()
	model.SetMuted(true)

	assert.Equal(t, []bool{false, true, false}, calls)
}
