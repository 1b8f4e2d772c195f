//go:build !linux

package wakelock

import "log"

func platformLock(logger *log.Logger) Lock {
	logger.Println("WakeLock: not supported on this platform")
	return Noop{}
}
