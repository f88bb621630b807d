package predicate

import (
	"errors"
	"fmt"
)

// ErrInvalidExpression indicates that the given expression could not be parsed.
// Every error returned by Parse wraps this value.
var ErrInvalidExpression = errors.New("invalid expression")

// SyntaxError describes where and why parsing failed.
type SyntaxError struct {
	// Pos is the zero-based index of the offending token.
	// It equals the number of tokens when the expression ended unexpectedly.
	Pos int

	// Token is the offending token, or empty at the end of input.
	Token string

	// Reason is a short human-readable description.
	Reason string
}

var _ error = (*SyntaxError)(nil)

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %s at token %d", ErrInvalidExpression.Error(), e.Reason, e.Pos)
	}
	return fmt.Sprintf("%s: %s %q at token %d", ErrInvalidExpression.Error(), e.Reason, e.Token, e.Pos)
}

// Unwrap returns ErrInvalidExpression so callers can use errors.Is.
func (e *SyntaxError) Unwrap() error {
	return ErrInvalidExpression
}
