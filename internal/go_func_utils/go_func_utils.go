package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn in a new goroutine named name. A panic is written to
// logger with the name and stack before being re-raised: the curses UI
// owns the terminal, so the log file is the only trace left.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer logPanic(logger, name)
		fn()
	}()
}

// SafeGoGroup is SafeGo tracked by wg: wg.Add happens before the goroutine
// starts and wg.Done when fn returns, so a later wg.Wait cannot miss it.
func SafeGoGroup(logger *log.Logger, wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	SafeGo(logger, name, func() {
		defer wg.Done()
		fn()
	})
}

func logPanic(logger *log.Logger, name string) {
	r := recover()
	if r == nil {
		return
	}
	if logger != nil {
		logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
	}
	panic(r)
}
