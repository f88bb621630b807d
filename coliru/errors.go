package coliru

import (
	"errors"
	"fmt"
)

// ErrMissingCodeBlock indicates that the argument is not a fenced code block.
var ErrMissingCodeBlock = errors.New("missing code block")

// ErrUnavailable indicates that the service answered with a non-200 status.
var ErrUnavailable = errors.New("compile service unavailable")

// UnknownLanguageError indicates that no compile command is registered for the code block's language.
type UnknownLanguageError struct {
	// Language is empty when the code block did not name one.
	Language string
}

var _ error = (*UnknownLanguageError)(nil)

func (e *UnknownLanguageError) Error() string {
	if e.Language == "" {
		return "could not find a language to compile with"
	}
	return fmt.Sprintf("unknown language to compile for: %s", e.Language)
}
