package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestSaveDraft_AsNew(t *testing.T) {
	var persisted [][]string
	m, _ := newTestMachine(t, OnDraftsChanged(func(d []string) {
		persisted = append(persisted, d)
	}))
	requireFire(t, m, ContentChanged{Text: "draft one"})

	requireFire(t, m, SaveDraft{Text: "draft one"})

	snap := m.Snapshot()
	assert.Equal(t, []string{"draft one"}, snap.SavedDrafts)
	assert.Empty(t, snap.EditorContent)
	assert.Nil(t, snap.ActiveDraftIndex)
	assert.Equal(t, [][]string{{"draft one"}}, persisted)
}

func TestSaveDraft_BlankIsNoOp(t *testing.T) {
	calls := 0
	m, _ := newTestMachine(t, OnDraftsChanged(func([]string) { calls++ }))
	requireFire(t, m, ContentChanged{Text: "   "})

	err := m.Fire(SaveDraft{Text: "   "})

	assert.ErrorIs(t, err, ErrBlankContent)
	snap := m.Snapshot()
	assert.Empty(t, snap.SavedDrafts)
	assert.Equal(t, "   ", snap.EditorContent)
	assert.Zero(t, calls)
}

func TestLoadEditSave_Overwrites(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"a", "b"}})

	requireFire(t, m, LoadDraft{Index: 0})
	snap := m.Snapshot()
	assert.Equal(t, "a", snap.EditorContent)
	assert.Equal(t, intPtr(0), snap.ActiveDraftIndex)

	requireFire(t, m, ContentChanged{Text: "a, revised"})
	requireFire(t, m, SaveDraft{Text: "a, revised"})

	snap = m.Snapshot()
	assert.Equal(t, []string{"a, revised", "b"}, snap.SavedDrafts)
	assert.Empty(t, snap.EditorContent)
	assert.Nil(t, snap.ActiveDraftIndex)
}

func TestLoadDraft_OutOfRange(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"a"}})

	assert.ErrorIs(t, m.Fire(LoadDraft{Index: 1}), ErrDraftIndex)
	assert.ErrorIs(t, m.Fire(LoadDraft{Index: -1}), ErrDraftIndex)
	assert.ErrorIs(t, m.Fire(DeleteDraft{Index: 3}), ErrDraftIndex)
}

func TestClearContent(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"a", "b"}})
	requireFire(t, m, LoadDraft{Index: 1})

	requireFire(t, m, ClearContent{})

	snap := m.Snapshot()
	assert.Empty(t, snap.EditorContent)
	assert.Nil(t, snap.ActiveDraftIndex)
	assert.Equal(t, []string{"a", "b"}, snap.SavedDrafts)

	// Next save appends.
	requireFire(t, m, SaveDraft{Text: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, m.Snapshot().SavedDrafts)
}

func TestDeleteDraft_Reindexing(t *testing.T) {
	tests := []struct {
		name       string
		deleted    int
		wantDrafts []string
		wantActive *int
	}{
		{"below active shifts down", 0, []string{"b", "c"}, intPtr(1)},
		{"active itself clears", 2, []string{"a", "b"}, nil},
		{"middle index below active shifts down", 1, []string{"a", "c"}, intPtr(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var persisted []string
			m, _ := newTestMachine(t, OnDraftsChanged(func(d []string) { persisted = d }))
			requireFire(t, m, HydrateDrafts{Drafts: []string{"a", "b", "c"}})
			requireFire(t, m, LoadDraft{Index: 2})

			requireFire(t, m, DeleteDraft{Index: tt.deleted})

			snap := m.Snapshot()
			assert.Equal(t, tt.wantDrafts, snap.SavedDrafts)
			assert.Equal(t, tt.wantActive, snap.ActiveDraftIndex)
			assert.Equal(t, tt.wantDrafts, persisted)
		})
	}
}

func TestDeleteDraft_AboveActiveUnaffected(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"a", "b", "c"}})
	requireFire(t, m, LoadDraft{Index: 0})

	requireFire(t, m, DeleteDraft{Index: 2})

	assert.Equal(t, intPtr(0), m.Snapshot().ActiveDraftIndex)
}

func TestHydrateDrafts_RoundTripAndReplace(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"old"}})

	input := []string{"x", "y", "x"}
	requireFire(t, m, HydrateDrafts{Drafts: input})
	input[0] = "mutated"

	assert.Equal(t, []string{"x", "y", "x"}, m.Snapshot().SavedDrafts)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	m, _ := newTestMachine(t)
	requireFire(t, m, HydrateDrafts{Drafts: []string{"a"}})

	snap := m.Snapshot()
	snap.SavedDrafts[0] = "changed"

	require.Equal(t, []string{"a"}, m.Snapshot().SavedDrafts)
}

func TestReindexAfterDelete(t *testing.T) {
	assert.Equal(t, -1, reindexAfterDelete(-1, 0))
	assert.Equal(t, 1, reindexAfterDelete(2, 0))
	assert.Equal(t, -1, reindexAfterDelete(2, 2))
	assert.Equal(t, 2, reindexAfterDelete(2, 3))
}
