package backend

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedColumnType indicates a column whose type is neither "line" nor "x".
var ErrUnrecognizedColumnType = errors.New("unrecognized column type")

// ErrMissingTimeAxis indicates a block without an "x" column.
var ErrMissingTimeAxis = errors.New("missing time axis column")

// ErrDuplicateTimeAxis indicates a block with more than one "x" column.
var ErrDuplicateTimeAxis = errors.New("more than one time axis column")

// ErrLengthMismatch indicates a line column whose sample count differs from the time axis.
var ErrLengthMismatch = errors.New("column length does not match time axis")

// ErrMalformedColumn indicates a column that is empty, lacks a string
// identifier, or holds a non-numeric sample.
var ErrMalformedColumn = errors.New("malformed column")

// ErrNoSeries indicates a block without any line columns.
var ErrNoSeries = errors.New("block has no line columns")

// ColumnError describes a problem with a single column of an input block.
type ColumnError struct {
	Block  int
	Column string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("block %d column %q: %v", e.Block, e.Column, e.Err)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}
