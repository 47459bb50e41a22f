package bucket

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is matched by every ValueError via errors.Is.
var ErrInvalidSpec = errors.New("invalid bucket spec")

// ValueError reports an unusable bucket configuration.
type ValueError struct {
	Field  string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid bucket spec: %s %s", e.Field, e.Reason)
}

func (e *ValueError) Unwrap() error { return ErrInvalidSpec }
