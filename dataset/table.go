package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
)

// Table is a percentile table: breakpoints in file order (descending) and, per role, one
// rate threshold per breakpoint.
type Table struct {
	Ref         string               `json:"ref"`
	Label       string               `json:"label"`
	Breakpoints []float64            `json:"breakpoints"`
	Roles       []string             `json:"roles"`
	Thresholds  map[string][]float64 `json:"thresholds"`
}

// Role returns the thresholds of role, or false when the table has no row for it.
func (t *Table) Role(role string) ([]float64, bool) {
	v, ok := t.Thresholds[role]
	return v, ok
}

// LoadTable retrieves and parses the table file ref. A row whose column count differs
// from the header aborts the whole load.
func LoadTable(ctx context.Context, src Source, ref string) (*Table, error) {
	rc, err := src.Open(ctx, ref)
	if err != nil {
		return nil, &LoadError{Resource: ref, Err: err}
	}
	defer rc.Close()

	return ParseTable(ref, rc)
}

// ParseTable parses comma separated table text read from r.
func ParseTable(ref string, r io.Reader) (*Table, error) {
	sr, _ := utfbom.Skip(r)

	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &Table{
		Ref:        ref,
		Thresholds: make(map[string][]float64),
	}

	header := true
	for {
		d, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if pe, ok := err.(*csv.ParseError); ok {
				return nil, &ParseError{Resource: ref, Line: pe.Line, Reason: pe.Err.Error()}
			}
			return nil, &LoadError{Resource: ref, Err: errors.WithStack(err)}
		}

		line, _ := cr.FieldPos(0)

		if len(d) == 1 && strings.TrimSpace(d[0]) == "" {
			continue
		}

		if header {
			header = false

			if len(d) < 2 {
				return nil, &ParseError{Resource: ref, Line: line, Reason: "header has no breakpoint columns"}
			}

			t.Label = strings.TrimSpace(d[0])
			t.Breakpoints, err = parseFloats(d[1:])
			if err != nil {
				return nil, &ParseError{Resource: ref, Line: line, Reason: err.Error()}
			}
			continue
		}

		if len(d) != len(t.Breakpoints)+1 {
			return nil, &ParseError{
				Resource: ref,
				Line:     line,
				Reason:   "expected " + strconv.Itoa(len(t.Breakpoints)+1) + " columns, got " + strconv.Itoa(len(d)),
			}
		}

		role := strings.TrimSpace(d[0])
		values, err := parseFloats(d[1:])
		if err != nil {
			return nil, &ParseError{Resource: ref, Line: line, Reason: err.Error()}
		}

		// a repeated role replaces the earlier row
		if _, ok := t.Thresholds[role]; !ok {
			t.Roles = append(t.Roles, role)
		}
		t.Thresholds[role] = values
	}

	if header {
		return nil, &ParseError{Resource: ref, Line: 1, Reason: "missing header"}
	}

	return t, nil
}

func parseFloats(cells []string) ([]float64, error) {
	r := make([]float64, len(cells))
	for i, cell := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, errors.Errorf("column %d: %q is not a number", i+2, cell)
		}
		r[i] = v
	}
	return r, nil
}
