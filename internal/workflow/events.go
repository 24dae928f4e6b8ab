package workflow

import "github.com/hpn/hpn-quill/internal/domain"

// Event is a trigger delivered to the Machine.
type Event interface {
	eventName() string
}

// ContentChanged mirrors the editing surface content. Accepted in every state.
type ContentChanged struct{ Text string }

// RequestContinuation asserts intent to request a continuation.
// It performs no I/O.
type RequestContinuation struct{}

// GenerationSucceeded feeds a successful continuation back.
type GenerationSucceeded struct{ Text string }

// GenerationFailed feeds a failed continuation back.
type GenerationFailed struct{ Message string }

// DismissError clears a Failed state.
type DismissError struct{}

// SaveDraft saves Text as a new draft or over the active draft.
type SaveDraft struct{ Text string }

// LoadDraft loads the draft at Index into the editor content.
type LoadDraft struct{ Index int }

// DeleteDraft removes the draft at Index.
type DeleteDraft struct{ Index int }

// ClearContent empties the editor content and forgets the active draft.
type ClearContent struct{}

// SwitchProvider changes the provider used by the next request.
type SwitchProvider struct{ Provider domain.ProviderID }

// HydrateDrafts replaces the saved drafts wholesale.
type HydrateDrafts struct{ Drafts []string }

// autoDismiss is delivered by the Failed timer; epoch ties it to one entry into Failed.
type autoDismiss struct{ epoch uint64 }

func (ContentChanged) eventName() string      { return "content-changed" }
func (RequestContinuation) eventName() string { return "request-continuation" }
func (GenerationSucceeded) eventName() string { return "generation-succeeded" }
func (GenerationFailed) eventName() string    { return "generation-failed" }
func (DismissError) eventName() string        { return "dismiss-error" }
func (SaveDraft) eventName() string           { return "save-draft" }
func (LoadDraft) eventName() string           { return "load-draft" }
func (DeleteDraft) eventName() string         { return "delete-draft" }
func (ClearContent) eventName() string        { return "clear" }
func (SwitchProvider) eventName() string      { return "switch-provider" }
func (HydrateDrafts) eventName() string       { return "hydrate-drafts" }
func (autoDismiss) eventName() string         { return "auto-dismiss" }
