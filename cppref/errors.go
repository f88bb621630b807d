package cppref

import "fmt"

// StatusError indicates that the wiki answered the search with a non-200 status.
type StatusError struct {
	StatusCode int
}

var _ error = (*StatusError)(nil)

func (e *StatusError) Error() string {
	return fmt.Sprintf("search returned status %d", e.StatusCode)
}
