package wakelock

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverDest = "org.freedesktop.ScreenSaver"
	screenSaverPath = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	inhibitMethod   = screenSaverDest + ".Inhibit"
	unInhibitMethod = screenSaverDest + ".UnInhibit"
	defaultAppName  = "interval-clock"
	defaultReason   = "Workout in progress"
)

// ErrNoSessionBus is returned by Acquire when no D-Bus session bus is
// reachable (headless boxes, ssh sessions)
var ErrNoSessionBus = errors.New("no D-Bus session bus")

// busCaller is the part of dbus.BusObject the inhibitor uses
type busCaller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Inhibitor keeps the desktop from blanking the screen through the
// freedesktop ScreenSaver D-Bus interface. The session bus is dialled on
// the first Acquire.
type Inhibitor struct {
	logger  *log.Logger
	appName string
	reason  string
	dial    func() (busCaller, error)

	mu     sync.Mutex
	bus    busCaller
	cookie uint32
	held   bool
}

func NewInhibitor(logger *log.Logger) *Inhibitor {
	if logger == nil {
		panic("Inhibitor: logger cannot be nil")
	}
	return &Inhibitor{
		logger:  logger,
		appName: defaultAppName,
		reason:  defaultReason,
		dial:    dialSessionBus,
	}
}

func dialSessionBus() (busCaller, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSessionBus, err)
	}
	return conn.Object(screenSaverDest, screenSaverPath), nil
}

// Acquire inhibits the screensaver. Acquiring a held lock is a no-op.
func (i *Inhibitor) Acquire() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.held {
		return nil
	}
	if i.bus == nil {
		bus, err := i.dial()
		if err != nil {
			return err
		}
		i.bus = bus
	}

	var cookie uint32
	call := i.bus.Call(inhibitMethod, 0, i.appName, i.reason)
	if err := call.Store(&cookie); err != nil {
		return fmt.Errorf("screensaver inhibit: %w", err)
	}
	i.cookie = cookie
	i.held = true
	i.logger.Printf("Inhibitor: screensaver inhibited (cookie %d)", cookie)
	return nil
}

// Release lifts the inhibition. Releasing a lock that is not held is a
// no-op.
func (i *Inhibitor) Release() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.held {
		return nil
	}
	cookie := i.cookie
	i.held = false
	i.cookie = 0
	if call := i.bus.Call(unInhibitMethod, 0, cookie); call.Err != nil {
		return fmt.Errorf("screensaver uninhibit %d: %w", cookie, call.Err)
	}
	i.logger.Printf("Inhibitor: screensaver released (cookie %d)", cookie)
	return nil
}

// Held reports whether the screensaver is currently inhibited
func (i *Inhibitor) Held() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.held
}
