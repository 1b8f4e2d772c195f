package wakelock

import "log"

func platformLock(logger *log.Logger) Lock {
	return NewInhibitor(logger)
}
