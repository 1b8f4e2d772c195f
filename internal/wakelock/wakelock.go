// Package wakelock keeps the display awake while a workout runs
package wakelock

import "log"

// Lock is acquired when a run starts and released when it ends
type Lock interface {
	Acquire() error
	Release() error
}

// Noop is used when wake locking is disabled or unsupported
type Noop struct{}

func (Noop) Acquire() error { return nil }
func (Noop) Release() error { return nil }

// New returns the platform wake lock, or Noop when disabled
func New(enabled bool, logger *log.Logger) Lock {
	if !enabled {
		logger.Println("WakeLock: disabled")
		return Noop{}
	}
	return platformLock(logger)
}
