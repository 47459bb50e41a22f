package table

import (
	"errors"
	"fmt"
)

// ErrSchema is matched by every SchemaError via errors.Is.
var ErrSchema = errors.New("schema error")

// SchemaError indicates an expected column is absent from a table.
type SchemaError struct {
	Table  string
	Column string
}

func (e *SchemaError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("schema error: missing column %q", e.Column)
	}
	return fmt.Sprintf("schema error: table %q has no column %q", e.Table, e.Column)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }
