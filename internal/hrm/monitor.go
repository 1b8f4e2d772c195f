// Package hrm reads a Bluetooth LE heart-rate strap so the current pulse
// can be shown next to the countdown
package hrm

import (
	"context"
	"log"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/lowaak/interval-clock/internal/events"
	"github.com/lowaak/interval-clock/internal/go_func_utils"
)

const (
	DefaultScanTimeout = 15 * time.Second
	DefaultRetryDelay  = 5 * time.Second
)

// State is the connection state of the monitor
type State int

const (
	StateIdle State = iota
	StateSearching
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Status is published whenever the connection state changes
type Status struct {
	State  State
	Device string // Name of the connected strap, if any
	Err    error  // Last connection error, if any
}

// NewMonitorArg holds the arguments for creating a Monitor
type NewMonitorArg struct {
	Adapter     *bluetooth.Adapter // Defaults to bluetooth.DefaultAdapter
	Address     string             // Connect only to this strap
	ScanTimeout time.Duration
	RetryDelay  time.Duration
	Logger      *log.Logger
}

// Monitor keeps a connection to one heart-rate strap, reconnecting after a
// failed scan or a dropped link, and publishes its measurements
type Monitor struct {
	connector  connector
	retryDelay time.Duration
	logger     *log.Logger

	measurementEvent *events.ChannelEvent[Measurement]
	statusEvent      *events.ChannelEvent[Status]

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewMonitor(args NewMonitorArg) *Monitor {
	if args.Logger == nil {
		panic("Monitor: logger cannot be nil")
	}
	adapter := args.Adapter
	if adapter == nil {
		adapter = bluetooth.DefaultAdapter
	}
	scanTimeout := args.ScanTimeout
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	return newMonitor(newBLEConnector(adapter, args.Address, scanTimeout, args.Logger), args.RetryDelay, args.Logger)
}

func newMonitor(conn connector, retryDelay time.Duration, logger *log.Logger) *Monitor {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		connector:        conn,
		retryDelay:       retryDelay,
		logger:           logger,
		measurementEvent: events.NewChannelEvent[Measurement](true),
		statusEvent:      events.NewChannelEvent[Status](true),
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Start launches the connection loop. Calling it again has no effect.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	go_func_utils.SafeGoGroup(m.logger, &m.wg, "hrm.Monitor", m.run)
}

func (m *Monitor) run() {
	for {
		m.statusEvent.Notify(Status{State: StateSearching})
		lost := make(chan struct{})
		var lostOnce sync.Once
		sess, err := m.connector.Connect(m.ctx, m.handleData, func() {
			lostOnce.Do(func() { close(lost) })
		})
		if err != nil {
			if m.ctx.Err() != nil {
				return
			}
			m.logger.Printf("HRM: %v", err)
			m.statusEvent.Notify(Status{State: StateDisconnected, Err: err})
			if !m.sleep(m.retryDelay) {
				return
			}
			continue
		}

		m.logger.Printf("HRM: connected to %s (%s)", sess.name, sess.address)
		m.statusEvent.Notify(Status{State: StateConnected, Device: sess.name})

		select {
		case <-m.ctx.Done():
			if err := sess.disconnect(); err != nil {
				m.logger.Printf("HRM: disconnect %s: %v", sess.address, err)
			}
			return
		case <-lost:
			m.statusEvent.Notify(Status{State: StateDisconnected})
			if !m.sleep(m.retryDelay) {
				return
			}
		}
	}
}

func (m *Monitor) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (m *Monitor) handleData(buf []byte) {
	measurement, err := ParseMeasurement(buf)
	if err != nil {
		m.logger.Printf("HRM: %v", err)
		return
	}
	m.measurementEvent.Notify(measurement)
}

// ListenToMeasurements registers a channel to receive decoded measurements
// Returns a deregistration function that can be called to remove the listener
func (m *Monitor) ListenToMeasurements(ch chan<- Measurement) func() {
	return m.measurementEvent.Listen(ch)
}

// ListenToStatus registers a channel to receive connection state changes
// Returns a deregistration function that can be called to remove the listener
func (m *Monitor) ListenToStatus(ch chan<- Status) func() {
	return m.statusEvent.Listen(ch)
}

// Shutdown disconnects the strap and waits for the connection loop to exit
func (m *Monitor) Shutdown() {
	m.logger.Println("HRM: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.statusEvent.Notify(Status{State: StateIdle})
	m.logger.Println("HRM: Shutdown complete")
}
