package sim

import (
	"errors"
	"fmt"
)

// Error kinds reported by the simulator. Callers match them with errors.Is.
var (
	// ErrConfiguration marks a scenario rejected before the first event runs.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAllocation marks a run that stopped because a ledger or table could not grow.
	ErrAllocation = errors.New("allocation failed")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func allocationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAllocation, fmt.Sprintf(format, args...))
}
