package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownIndicator is returned for names outside Indicators.
	ErrUnknownIndicator = errors.New("unknown indicator")
	// ErrUnknownLayout is returned when no reader is registered for a layout.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrNoYears is returned when a source yields no year tables at all.
	ErrNoYears = errors.New("no years found")
)

// SourceError attaches the indicator and file to a load failure.
type SourceError struct {
	Indicator Indicator
	Path      string
	Err       error
}

func (e *SourceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Indicator, e.Err)
	}
	return fmt.Sprintf("load %s from %s: %v", e.Indicator, e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
