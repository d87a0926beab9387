package signals

import (
	"errors"
	"fmt"
)

var (
	ErrNotTimeSeries = errors.New("signal has no time axis")
)

// DimensionMismatchError is returned when a time array and a value array differ in length
type DimensionMismatchError struct {
	Path    string
	Times   int
	Samples int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("signal '%s': time array has %d entries but value array has %d", e.Path, e.Times, e.Samples)
}

// NonMonotonicTimeError is returned when a time axis is not ordered for interpolation
type NonMonotonicTimeError struct {
	Path  string
	Index int
}

func (e *NonMonotonicTimeError) Error() string {
	return fmt.Sprintf("signal '%s': time array is not increasing at index %d", e.Path, e.Index)
}
