package workflow

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hpn/hpn-quill/internal/domain"
)

// defaultFailureMessage stands in for an empty failure message so that
// lastError is always present while Failed.
const defaultFailureMessage = "Failed to generate continuation"

// Machine owns the orchestration context. Every mutation goes through apply,
// called with mu held, so triggers are atomic and totally ordered.
type Machine struct {
	mu sync.Mutex

	state            State
	editorContent    string
	lastContinuation string
	lastError        string
	lastRequestAt    time.Time
	savedDrafts      []string
	activeProvider   domain.ProviderID
	activeDraftIndex int // -1 when no draft is active

	clock        Clock
	dismissTimer Timer
	failEpoch    uint64

	onDraftsChanged func([]string)
	onTransition    func(from, to State, trigger string)
	logger          *slog.Logger
}

// MachineOption is a functional option for configuring Machine.
type MachineOption func(*Machine)

// WithClock replaces the system clock, mainly for tests.
func WithClock(clock Clock) MachineOption {
	return func(m *Machine) {
		m.clock = clock
	}
}

// WithProvider sets the initially active provider.
func WithProvider(provider domain.ProviderID) MachineOption {
	return func(m *Machine) {
		if provider.Valid() {
			m.activeProvider = provider
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// OnDraftsChanged registers fn to receive a copy of the drafts after every
// mutation of the saved-draft list. fn runs with the machine locked and must
// not call back into the Machine.
func OnDraftsChanged(fn func([]string)) MachineOption {
	return func(m *Machine) {
		m.onDraftsChanged = fn
	}
}

// OnTransition registers fn to observe state changes.
func OnTransition(fn func(from, to State, trigger string)) MachineOption {
	return func(m *Machine) {
		m.onTransition = fn
	}
}

// NewMachine creates a Machine in Idle with empty defaults.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		state:            Idle,
		savedDrafts:      []string{},
		activeProvider:   domain.DefaultProvider,
		activeDraftIndex: -1,
		clock:            SystemClock(),
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fire delivers one trigger.
func (m *Machine) Fire(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(ev)
}

// RequestContinuation moves Idle or Failed to Requesting when the content is
// non-blank and returns the text and provider the caller must use.
func (m *Machine) RequestContinuation() (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.apply(RequestContinuation{}); err != nil {
		return Request{}, err
	}
	return Request{Text: m.editorContent, Provider: m.activeProvider}, nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Snapshot returns a deep copy of the context.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:            m.state,
		EditorContent:    m.editorContent,
		LastContinuation: m.lastContinuation,
		SavedDrafts:      append([]string(nil), m.savedDrafts...),
		ActiveProvider:   m.activeProvider,
	}
	if snap.SavedDrafts == nil {
		snap.SavedDrafts = []string{}
	}
	if m.state == Failed {
		msg := m.lastError
		snap.LastError = &msg
	}
	if !m.lastRequestAt.IsZero() {
		at := m.lastRequestAt
		snap.LastRequestAt = &at
	}
	if m.activeDraftIndex >= 0 {
		idx := m.activeDraftIndex
		snap.ActiveDraftIndex = &idx
	}
	return snap
}

// apply is the transition function.
func (m *Machine) apply(ev Event) error {
	from := m.state

	switch e := ev.(type) {
	case ContentChanged:
		m.editorContent = e.Text

	case RequestContinuation:
		if m.state == Requesting {
			return ErrBusy
		}
		if strings.TrimSpace(m.editorContent) == "" {
			return ErrBlankContent
		}
		m.cancelDismissTimer()
		m.lastError = ""
		m.state = Requesting

	case GenerationSucceeded:
		if m.state != Requesting {
			return m.rejected(ev)
		}
		m.lastContinuation = e.Text
		m.lastError = ""
		m.lastRequestAt = m.clock.Now()
		m.state = Idle

	case GenerationFailed:
		if m.state != Requesting {
			return m.rejected(ev)
		}
		m.lastError = e.Message
		if m.lastError == "" {
			m.lastError = defaultFailureMessage
		}
		m.lastRequestAt = m.clock.Now()
		m.state = Failed
		m.scheduleDismiss()

	case DismissError:
		if m.state != Failed {
			return m.rejected(ev)
		}
		m.cancelDismissTimer()
		m.lastError = ""
		m.state = Idle

	case autoDismiss:
		// A stale timer from an earlier Failed must not clear a later error.
		if m.state != Failed || e.epoch != m.failEpoch {
			return nil
		}
		m.dismissTimer = nil
		m.lastError = ""
		m.state = Idle

	case SaveDraft:
		if strings.TrimSpace(e.Text) == "" {
			return ErrBlankContent
		}
		if m.activeDraftIndex >= 0 && m.activeDraftIndex < len(m.savedDrafts) {
			m.savedDrafts[m.activeDraftIndex] = e.Text
		} else {
			m.savedDrafts = append(m.savedDrafts, e.Text)
		}
		m.editorContent = ""
		m.activeDraftIndex = -1
		m.draftsChanged()

	case LoadDraft:
		if e.Index < 0 || e.Index >= len(m.savedDrafts) {
			return fmt.Errorf("load draft %d: %w", e.Index, ErrDraftIndex)
		}
		m.editorContent = m.savedDrafts[e.Index]
		m.activeDraftIndex = e.Index

	case DeleteDraft:
		if e.Index < 0 || e.Index >= len(m.savedDrafts) {
			return fmt.Errorf("delete draft %d: %w", e.Index, ErrDraftIndex)
		}
		m.savedDrafts = removeAt(m.savedDrafts, e.Index)
		m.activeDraftIndex = reindexAfterDelete(m.activeDraftIndex, e.Index)
		m.draftsChanged()

	case ClearContent:
		m.editorContent = ""
		m.activeDraftIndex = -1

	case SwitchProvider:
		if !e.Provider.Valid() {
			return domain.NewProviderError(e.Provider, domain.KindUnsupportedProvider,
				fmt.Sprintf("unsupported provider %q", e.Provider), nil)
		}
		m.activeProvider = e.Provider

	case HydrateDrafts:
		m.savedDrafts = append([]string{}, e.Drafts...)
		if m.activeDraftIndex >= len(m.savedDrafts) {
			m.activeDraftIndex = -1
		}

	default:
		return fmt.Errorf("unknown event %T", ev)
	}

	if from != m.state {
		m.logger.Debug("workflow transition",
			slog.String("from", from.String()),
			slog.String("to", m.state.String()),
			slog.String("trigger", ev.eventName()),
		)
		if m.onTransition != nil {
			m.onTransition(from, m.state, ev.eventName())
		}
	}
	return nil
}

func (m *Machine) rejected(ev Event) error {
	return fmt.Errorf("%s in state %s: %w", ev.eventName(), m.state, ErrInvalidTransition)
}

// scheduleDismiss arms the auto-dismiss timer for the current Failed entry.
func (m *Machine) scheduleDismiss() {
	m.cancelDismissTimer()
	m.failEpoch++
	epoch := m.failEpoch
	m.dismissTimer = m.clock.AfterFunc(AutoDismissDelay, func() {
		_ = m.Fire(autoDismiss{epoch: epoch})
	})
}

func (m *Machine) cancelDismissTimer() {
	if m.dismissTimer != nil {
		m.dismissTimer.Stop()
		m.dismissTimer = nil
	}
}

func (m *Machine) draftsChanged() {
	if m.onDraftsChanged != nil {
		m.onDraftsChanged(append([]string(nil), m.savedDrafts...))
	}
}

// removeAt returns drafts without the element at index.
func removeAt(drafts []string, index int) []string {
	out := make([]string, 0, len(drafts)-1)
	out = append(out, drafts[:index]...)
	return append(out, drafts[index+1:]...)
}

// reindexAfterDelete keeps the active index pointing at the same draft:
// deletions below it shift it down, deleting it clears it.
func reindexAfterDelete(active, deleted int) int {
	switch {
	case active < 0:
		return -1
	case deleted < active:
		return active - 1
	case deleted == active:
		return -1
	default:
		return active
	}
}
