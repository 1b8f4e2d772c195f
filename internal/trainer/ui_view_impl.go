package trainer

// UIViewImpl defines the interface for framework-specific UI implementations
type UIViewImpl interface {
	// Initialize is called after construction to set up framework-specific widgets
	// controller is used to handle UI events
	Initialize(controller *UIController)

	// SetupKeyboardHandlers sets up keyboard event handlers
	SetupKeyboardHandlers(controller *UIController)

	// Run starts the UI framework and blocks until it exits
	Run() error

	// Stop stops the UI framework
	Stop()

	// Draw refreshes/redraws the UI
	Draw() error

	// --- Mode Management ---

	SetMode(mode UIMode)
	GetCurrentMode() UIMode

	// --- Log View (shared across modes) ---

	GetLogViewHeight() int
	ClearLogView()
	WriteLogLine(line string) error

	// --- Setup Mode ---

	// UpdateSetup shows the steppers and the selected one
	UpdateSetup(state SetupState)

	// --- Timer Mode ---

	// UpdateTimer shows the countdown
	UpdateTimer(state TimerState)

	// UpdateHeartRate shows the heart-rate line
	UpdateHeartRate(state HeartRateState)
}
