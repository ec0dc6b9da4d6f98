package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("dataset file not found")
	ErrEmpty         = errors.New("dataset has no data rows")
	ErrMalformed     = errors.New("dataset is malformed")
	ErrMissingTarget = errors.New("target column not found")
)

// Frame is the raw grid read from a dataset file: header plus string cells.
type Frame struct {
	Source string
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (f *Frame) Column(name string) ([]string, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingTarget, name)
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// ResolveTarget picks the configured target, or the last column when unset.
func (f *Frame) ResolveTarget(configured string) (string, error) {
	configured = strings.TrimSpace(configured)
	if configured == "" {
		if len(f.Header) == 0 {
			return "", ErrEmpty
		}
		return f.Header[len(f.Header)-1], nil
	}
	if f.ColumnIndex(configured) < 0 {
		return "", fmt.Errorf("%w: %q (columns: %s)", ErrMissingTarget, configured, strings.Join(f.Header, ", "))
	}
	return configured, nil
}

// Validate enforces the training data contract: a non-empty body, a unique
// header, rows as wide as the header, and every cell populated.
// Training never proceeds on partial data.
func (f *Frame) Validate() error {
	if len(f.Header) == 0 || len(f.Rows) == 0 {
		return ErrEmpty
	}

	seen := make(map[string]bool, len(f.Header))
	for i, h := range f.Header {
		if h == "" {
			return fmt.Errorf("%w: header column %d is blank", ErrMalformed, i+1)
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicate column %q", ErrMalformed, h)
		}
		seen[h] = true
	}

	for i, row := range f.Rows {
		// header is line 1
		line := i + 2
		if len(row) != len(f.Header) {
			return fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformed, line, len(row), len(f.Header))
		}
		for j, cell := range row {
			if strings.TrimSpace(cell) == "" {
				return fmt.Errorf("%w: line %d column %q is empty", ErrMalformed, line, f.Header[j])
			}
		}
	}
	return nil
}

func normalizeCells(cells []string) []string {
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
