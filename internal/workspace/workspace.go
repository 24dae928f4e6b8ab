// Package workspace binds the workflow machine to the continuation service,
// an editing surface and draft persistence.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/hpn/hpn-quill/internal/editor"
	"github.com/hpn/hpn-quill/internal/session"
	"github.com/hpn/hpn-quill/internal/workflow"
)

// Continuer produces continuations. *continuation.Service satisfies it.
type Continuer interface {
	ContinueWriting(ctx context.Context, text string, provider domain.ProviderID) (string, error)
}

// Workspace is one editing session.
type Workspace struct {
	// surfaceMu keeps surface writes and the mirrored machine content in step.
	surfaceMu sync.Mutex

	machine   *workflow.Machine
	continuer Continuer
	surface   editor.Surface
	bridge    *session.Bridge
	logger    *slog.Logger

	machineOpts []workflow.MachineOption
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
		w.machineOpts = append(w.machineOpts, workflow.WithLogger(logger))
	}
}

// WithClock sets the clock driving the auto-dismiss timer.
func WithClock(clock workflow.Clock) Option {
	return func(w *Workspace) {
		w.machineOpts = append(w.machineOpts, workflow.WithClock(clock))
	}
}

// WithProvider sets the initial provider.
func WithProvider(provider domain.ProviderID) Option {
	return func(w *Workspace) {
		w.machineOpts = append(w.machineOpts, workflow.WithProvider(provider))
	}
}

// WithBridge enables draft persistence.
func WithBridge(bridge *session.Bridge) Option {
	return func(w *Workspace) {
		w.bridge = bridge
	}
}

// WithTransitionHook observes state changes.
func WithTransitionHook(fn func(from, to workflow.State, trigger string)) Option {
	return func(w *Workspace) {
		w.machineOpts = append(w.machineOpts, workflow.OnTransition(fn))
	}
}

// New creates a Workspace writing into surface.
func New(continuer Continuer, surface editor.Surface, opts ...Option) *Workspace {
	w := &Workspace{
		continuer: continuer,
		surface:   surface,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}

	machineOpts := append([]workflow.MachineOption(nil), w.machineOpts...)
	if w.bridge != nil {
		machineOpts = append(machineOpts, workflow.OnDraftsChanged(w.bridge.Persist))
	}
	w.machine = workflow.NewMachine(machineOpts...)

	if content := surface.Content(); content != "" {
		_ = w.machine.Fire(workflow.ContentChanged{Text: content})
	}
	return w
}

// Start hydrates saved drafts from the bridge. It never fails on bad data.
func (w *Workspace) Start(ctx context.Context) {
	if w.bridge == nil {
		return
	}
	drafts := w.bridge.Hydrate(ctx)
	_ = w.machine.Fire(workflow.HydrateDrafts{Drafts: drafts})
	w.logger.Info("Workspace started", slog.Int("drafts", len(drafts)))
}

// Edit replaces the editor content.
func (w *Workspace) Edit(text string) {
	w.surfaceMu.Lock()
	defer w.surfaceMu.Unlock()
	w.surface.SetContent(text)
	_ = w.machine.Fire(workflow.ContentChanged{Text: text})
}

// RequestContinuation asks the active provider to continue the current
// content and appends the result to the surface. The service call runs
// without holding any lock, so edits and provider switches stay possible.
func (w *Workspace) RequestContinuation(ctx context.Context) (string, error) {
	w.surfaceMu.Lock()
	req, err := w.machine.RequestContinuation()
	w.surfaceMu.Unlock()
	if err != nil {
		return "", err
	}

	text, err := w.continuer.ContinueWriting(ctx, req.Text, req.Provider)
	if err != nil {
		if fireErr := w.machine.Fire(workflow.GenerationFailed{Message: err.Error()}); fireErr != nil {
			w.logger.Error("Failed to record generation failure", slog.String("error", fireErr.Error()))
		}
		return "", err
	}

	// The next request dispatches only after the inserted text is mirrored.
	w.surfaceMu.Lock()
	defer w.surfaceMu.Unlock()
	if err := w.machine.Fire(workflow.GenerationSucceeded{Text: text}); err != nil {
		return "", err
	}
	w.surface.InsertText(text)
	_ = w.machine.Fire(workflow.ContentChanged{Text: w.surface.Content()})

	return text, nil
}

// Dismiss clears a shown error.
func (w *Workspace) Dismiss() error {
	return w.machine.Fire(workflow.DismissError{})
}

// SwitchProvider changes the provider used by the next request.
func (w *Workspace) SwitchProvider(provider domain.ProviderID) error {
	return w.machine.Fire(workflow.SwitchProvider{Provider: provider})
}

// SaveDraft stores the surface content, overwriting the loaded draft if any,
// and clears the surface.
func (w *Workspace) SaveDraft() error {
	w.surfaceMu.Lock()
	defer w.surfaceMu.Unlock()
	if err := w.machine.Fire(workflow.SaveDraft{Text: w.surface.Content()}); err != nil {
		return err
	}
	w.surface.SetContent("")
	return nil
}

// LoadDraft puts the draft at index into the surface and marks it active.
func (w *Workspace) LoadDraft(index int) error {
	w.surfaceMu.Lock()
	defer w.surfaceMu.Unlock()
	if err := w.machine.Fire(workflow.LoadDraft{Index: index}); err != nil {
		return err
	}
	w.surface.SetContent(w.machine.Snapshot().EditorContent)
	w.surface.Focus()
	return nil
}

// DeleteDraft removes the draft at index.
func (w *Workspace) DeleteDraft(index int) error {
	return w.machine.Fire(workflow.DeleteDraft{Index: index})
}

// Clear empties the surface and detaches the active draft.
func (w *Workspace) Clear() {
	w.surfaceMu.Lock()
	defer w.surfaceMu.Unlock()
	_ = w.machine.Fire(workflow.ClearContent{})
	w.surface.SetContent("")
}

// Snapshot returns the current context.
func (w *Workspace) Snapshot() workflow.Snapshot {
	return w.machine.Snapshot()
}

// IsConflict reports whether err means the trigger was not accepted in the
// current state rather than being invalid input.
func IsConflict(err error) bool {
	return errors.Is(err, workflow.ErrBusy) || errors.Is(err, workflow.ErrInvalidTransition)
}
