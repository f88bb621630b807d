package discussion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// ErrBlacklisted indicates that the acting member is on the Blacklist.
var ErrBlacklisted = errors.New("member is blacklisted")

// ErrNotDiscussionChannel indicates that a member was to be added to a channel that is not a discussion channel.
var ErrNotDiscussionChannel = errors.New("channel is not a discussion channel")

// ErrLookupMiss indicates that a referenced guild, channel, message or member no longer exists.
// Event handlers absorb this error since the triggering event may be stale.
var ErrLookupMiss = errors.New("lookup miss")

// TransportError wraps a failed call to Discord.
type TransportError struct {
	// Op names the failed operation.
	Op  string
	Err error
}

var _ error = (*TransportError)(nil)

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// classify maps an error returned by discordgo to ErrLookupMiss or *TransportError.
func classify(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, ErrLookupMiss)
	}
	return &TransportError{Op: op, Err: err}
}

// absorb swallows ErrLookupMiss and passes everything else through.
func absorb(err error) error {
	if errors.Is(err, ErrLookupMiss) {
		return nil
	}
	return err
}
