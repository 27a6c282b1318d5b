package models

import (
	"errors"
	"fmt"
)

// ErrNoExtractableData is returned when every sheet of a workbook yielded
// zero phone records. It is an expected outcome for a mismatched upload, not
// a processing fault; callers receive it alongside a complete report.
var ErrNoExtractableData = errors.New("no extractable phone data in workbook")

// ErrEmailConflict is returned when a write would duplicate an email address
// already held by a different validated row. The write is rejected rather
// than silently overwriting either row.
var ErrEmailConflict = errors.New("email already belongs to another validated record")

// DecodeError indicates an unreadable, encrypted, or unrecognized workbook.
// It is fatal for the whole run; nothing partial is written.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode workbook: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode workbook: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// RowError marks a single data row that failed during expansion. The row is
// logged and skipped; the rest of the sheet continues.
type RowError struct {
	Sheet string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("sheet %q row %d: %v", e.Sheet, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// StoreError wraps a persistence failure with a retryable classification.
// Retryable errors trigger a bounded retry of the same record in isolation;
// non-retryable errors are surfaced immediately.
type StoreError struct {
	Op        string
	Retryable bool
	Err       error
}

func (e *StoreError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("store %s: %s: %v", e.Op, kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a StoreError classified as retryable.
func IsRetryable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Retryable
}
