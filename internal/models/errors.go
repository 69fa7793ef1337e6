package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the analytics engine. Callers match them with
// errors.Is; the wrapped message carries the offending entity or value.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDomainRange       = errors.New("value out of range")
)

// checkRange rejects a present value outside [lo, hi].
func checkRange(field string, v *float64, lo, hi float64) error {
	if v == nil {
		return nil
	}
	if *v < lo || *v > hi {
		return fmt.Errorf("%s %v not in [%v, %v]: %w", field, *v, lo, hi, ErrDomainRange)
	}
	return nil
}

func checkIntRange(field string, v *int, lo, hi int) error {
	if v == nil {
		return nil
	}
	if *v < lo || *v > hi {
		return fmt.Errorf("%s %d not in [%d, %d]: %w", field, *v, lo, hi, ErrDomainRange)
	}
	return nil
}
