package workout

import (
	"errors"
	"fmt"
)

// ErrInvalidStateTransition is returned when a scheduler command does not
// apply to the current scheduler status, e.g. Start while a run is active
var ErrInvalidStateTransition = errors.New("invalid state transition")

// InvalidConfigError describes a workout configuration that cannot be run
type InvalidConfigError struct {
	Field string
	Value int
}

func (e *InvalidConfigError) Error() string {
	if e.Field == "series" {
		return fmt.Sprintf("invalid workout config: series must be at least 1, got %d", e.Value)
	}
	return fmt.Sprintf("invalid workout config: %s must not be negative, got %d", e.Field, e.Value)
}
