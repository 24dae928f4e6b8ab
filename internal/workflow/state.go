// Package workflow implements the continuation request lifecycle as a
// finite-state machine together with the session context it owns:
// the editor content mirror, the active provider and the saved drafts.
package workflow

import (
	"errors"
	"time"

	"github.com/hpn/hpn-quill/internal/domain"
)

// State is the request lifecycle state. Exactly one is active at any time.
type State int

const (
	// Idle is the initial state; a continuation may be requested.
	Idle State = iota
	// Requesting means one continuation request is in flight.
	Requesting
	// Failed shows the last error until dismissed or the auto-dismiss delay passes.
	Failed
)

// AutoDismissDelay is how long a Failed state is shown before returning to Idle.
const AutoDismissDelay = 5 * time.Second

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrBusy is returned when a continuation is requested while one is in flight.
	ErrBusy = errors.New("a continuation request is already in progress")

	// ErrBlankContent is returned by guards that require non-blank content.
	ErrBlankContent = errors.New("content is empty")

	// ErrInvalidTransition is returned for triggers the current state does not accept.
	ErrInvalidTransition = errors.New("trigger not accepted in current state")

	// ErrDraftIndex is returned for draft operations on an out-of-range index.
	ErrDraftIndex = errors.New("draft index out of range")
)

// Snapshot is a deep copy of the orchestration context plus the current state.
type Snapshot struct {
	State            State             `json:"state"`
	EditorContent    string            `json:"editor_content"`
	LastContinuation string            `json:"last_continuation"`
	LastError        *string           `json:"last_error"`
	LastRequestAt    *time.Time        `json:"last_request_at"`
	SavedDrafts      []string          `json:"saved_drafts"`
	ActiveProvider   domain.ProviderID `json:"active_provider"`
	ActiveDraftIndex *int              `json:"active_draft_index"`
}

// Request is what the caller needs to perform the continuation call
// that a successful RequestContinuation authorises.
type Request struct {
	Text     string
	Provider domain.ProviderID
}
