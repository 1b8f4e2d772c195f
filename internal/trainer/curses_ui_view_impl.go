package trainer

import (
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/interval-clock/internal/hrm"
	"github.com/lowaak/interval-clock/internal/workout"
)

// Page names for tview.Pages
const (
	pageSetup = "setup"
	pageTimer = "timer"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Setup mode components
	setupFlex    *tview.Flex
	setupPanel   *tview.TextView
	summaryPanel *tview.TextView

	// Timer mode components
	timerFlex      *tview.Flex
	phasePanel     *tview.TextView
	timePanel      *tview.TextView
	seriesPanel    *tview.TextView
	controlsPanel  *tview.TextView
	heartRatePanel *tview.TextView
	timerState     TimerState
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeSetup,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc with app.Draw() here: it can hang during shutdown.
	// BaseUIView draws after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initSetupMode()
	ui.initTimerMode()

	ui.pages.AddPage(pageSetup, ui.setupFlex, true, true)
	ui.pages.AddPage(pageTimer, ui.timerFlex, true, false)

	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)
}

func newHintText(mode UIMode) *tview.TextView {
	hint := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	if info, ok := GetUIModeInfo(mode); ok {
		hint.SetText(info.Hint)
	}
	return hint
}

func newCenteredText() *tview.TextView {
	return tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
}

// initSetupMode sets up the Setup mode UI
func (ui *CursesUIViewImpl) initSetupMode() {
	ui.setupPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.setupPanel.SetBorder(true).SetTitle(" Workout ")

	ui.summaryPanel = newCenteredText()

	ui.setupFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newHintText(UIModeSetup), 2, 0, false).
		AddItem(ui.setupPanel, 0, 1, true).
		AddItem(ui.summaryPanel, 2, 0, false)
}

// initTimerMode sets up the Timer mode UI
func (ui *CursesUIViewImpl) initTimerMode() {
	ui.phasePanel = newCenteredText()
	ui.timePanel = newCenteredText()
	ui.seriesPanel = newCenteredText()
	ui.controlsPanel = newCenteredText()
	ui.heartRatePanel = newCenteredText()

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(ui.phasePanel, 2, 0, false).
		AddItem(ui.timePanel, glyphHeight+1, 0, false).
		AddItem(ui.seriesPanel, 2, 0, false).
		AddItem(ui.controlsPanel, 2, 0, false).
		AddItem(ui.heartRatePanel, 1, 0, false).
		AddItem(nil, 0, 1, false)
	content.SetBorder(true).SetTitle(" Timer ")

	ui.timerFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(newHintText(UIModeTimer), 2, 0, false).
		AddItem(content, 0, 1, true)
}

// UpdateSetup renders the steppers
func (ui *CursesUIViewImpl) UpdateSetup(state SetupState) {
	if ui.setupPanel == nil {
		return
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, info := range AllSetupFields {
		value := FormatSetupValue(info, SetupValue(state.Config, info.Field))
		if info.Field == state.Selected {
			fmt.Fprintf(&b, "  [yellow]▶ %-10s[white]  [yellow]-[white]  [::b]%6s[::-]  [yellow]+[white]\n\n", info.Label, value)
		} else {
			fmt.Fprintf(&b, "    [gray]%-10s[white]  -  %6s  +\n\n", info.Label, value)
		}
	}
	ui.setupPanel.SetText(b.String())

	ui.summaryPanel.SetText(fmt.Sprintf("Total [yellow]%s[white]  (%d s prep included)\n[green]Enter[white] START",
		FormatDuration(state.Config.TotalSeconds()), workout.PrepSeconds))
}

// UpdateTimer renders the countdown in the color of the phase
func (ui *CursesUIViewImpl) UpdateTimer(state TimerState) {
	ui.timerState = state
	if ui.timePanel == nil {
		return
	}

	if state.Status == workout.StatusIdle || state.Status == workout.StatusStopped {
		ui.phasePanel.SetText("")
		ui.timePanel.SetText("")
		ui.seriesPanel.SetText("[gray]No workout running[white]")
		ui.controlsPanel.SetText("")
		return
	}

	text := DescribeTimer(state)
	color := PhaseColor(state.Phase)
	tag := fmt.Sprintf("[#%06x]", color.Hex())

	ui.phasePanel.SetText(fmt.Sprintf("%s[::b]%s[::-][white]", tag, text.PhaseLabel))
	ui.timePanel.SetText(tag + tview.Escape(renderBig(text.Time)) + "[white]")
	ui.seriesPanel.SetText(text.Series)

	var controls string
	switch {
	case text.PauseButton == "":
		controls = "[green]Enter[white] back to setup"
	case state.Paused:
		controls = fmt.Sprintf("[black:#00e676] %s [-:-]   [white:red] STOP [-:-]", text.PauseButton)
	default:
		controls = fmt.Sprintf("[black:#ffb300] %s [-:-]   [white:red] STOP [-:-]", text.PauseButton)
	}
	if state.Muted {
		controls += "   [gray](muted)[white]"
	}
	ui.controlsPanel.SetText(controls)
}

// UpdateHeartRate renders the heart-rate line
func (ui *CursesUIViewImpl) UpdateHeartRate(state HeartRateState) {
	if ui.heartRatePanel == nil {
		return
	}
	ui.heartRatePanel.SetText(formatHeartRate(state))
}

func formatHeartRate(state HeartRateState) string {
	if !state.Enabled {
		return ""
	}
	switch state.State {
	case hrm.StateConnected:
		if state.BPM == 0 {
			return fmt.Sprintf("[red]♥[white] %s: [gray]waiting for data[white]", state.Device)
		}
		if !state.Worn {
			return fmt.Sprintf("[red]♥[white] [gray]%d bpm (no skin contact)[white]", state.BPM)
		}
		return fmt.Sprintf("[red]♥[white] [yellow]%d[white] bpm", state.BPM)
	case hrm.StateSearching:
		return "[red]♥[white] [gray]searching...[white]"
	default:
		return "[red]♥[white] [gray]--[white]"
	}
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeSetup:
		ui.pages.SwitchToPage(pageSetup)
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	}
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}
		if event.Key() == tcell.KeyRune && (event.Rune() == 'm' || event.Rune() == 'M') {
			controller.ToggleMute()
			return nil
		}

		switch ui.currentMode {
		case UIModeSetup:
			return ui.handleSetupKey(controller, event)
		case UIModeTimer:
			return ui.handleTimerKey(controller, event)
		}
		return event
	})
}

func (ui *CursesUIViewImpl) handleSetupKey(controller *UIController, event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp, tcell.KeyBacktab:
		controller.SelectPreviousField()
		return nil
	case tcell.KeyDown, tcell.KeyTab:
		controller.SelectNextField()
		return nil
	case tcell.KeyLeft:
		controller.DecreaseSelectedField()
		return nil
	case tcell.KeyRight:
		controller.IncreaseSelectedField()
		return nil
	case tcell.KeyEnter:
		controller.StartWorkout()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k':
			controller.SelectPreviousField()
			return nil
		case 'j':
			controller.SelectNextField()
			return nil
		case '-', '_':
			controller.DecreaseSelectedField()
			return nil
		case '+', '=':
			controller.IncreaseSelectedField()
			return nil
		}
	}
	return event
}

func (ui *CursesUIViewImpl) handleTimerKey(controller *UIController, event *tcell.EventKey) *tcell.EventKey {
	finished := ui.timerState.Phase == workout.PhaseFinished
	switch event.Key() {
	case tcell.KeyEnter:
		if finished {
			controller.StopWorkout()
			return nil
		}
	case tcell.KeyRune:
		switch event.Rune() {
		case ' ', 'p', 'P':
			if !finished {
				controller.TogglePause()
			}
			return nil
		case 's', 'S', 'x', 'X':
			controller.StopWorkout()
			return nil
		}
	}
	return event
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	ui.app.SetRoot(ui.mainFlex, true)
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
