package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrEmptyFile is wrapped in the LoadError of a manifest or sub-collection file that
// holds no data.
var ErrEmptyFile = errors.New("dataset: empty file")

// LoadError reports a manifest, sub-collection or table file that could not be
// retrieved or decoded.
type LoadError struct {
	Resource string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("dataset: load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ParseError reports a malformed line in a percentile table.
type ParseError struct {
	Resource string
	Line     int
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataset: parse %s:%d: %s", e.Resource, e.Line, e.Reason)
}
