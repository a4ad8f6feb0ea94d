// file: internal/database/errors.go
// version: 1.0.0
// guid: 4a7d2e91-3c6b-48f0-b1e5-9d2a6f8c0b17

package database

import (
	"errors"
	"fmt"
)

// ErrConstraintViolation is matched by every ConstraintViolation via errors.Is
var ErrConstraintViolation = errors.New("constraint violation")

// ConstraintKind classifies a rejected record
type ConstraintKind string

const (
	NotNull ConstraintKind = "not_null"
	Unique  ConstraintKind = "unique"
	Length  ConstraintKind = "length"
	Range   ConstraintKind = "range"
)

// ConstraintViolation reports the first rule a committed record broke.
type ConstraintViolation struct {
	Kind  ConstraintKind
	Field string
	Value string // name of the offending record, when known
	Err   error  // underlying driver or validator error
}

func (e *ConstraintViolation) Error() string {
	msg := fmt.Sprintf("%s constraint failed on books.%s", e.Kind, e.Field)
	if e.Value != "" {
		msg = fmt.Sprintf("%s (record %q)", msg, truncate(e.Value, 64))
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is makes errors.Is(err, ErrConstraintViolation) hold for any kind
func (e *ConstraintViolation) Is(target error) bool {
	return target == ErrConstraintViolation
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

// IsConstraintViolation unwraps err into a *ConstraintViolation if it holds one
func IsConstraintViolation(err error) (*ConstraintViolation, bool) {
	var cv *ConstraintViolation
	if errors.As(err, &cv) {
		return cv, true
	}
	return nil, false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
