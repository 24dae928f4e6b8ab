// Package editor defines the editing surface the workspace writes into.
package editor

import (
	"sync"
	"unicode/utf8"
)

// Surface is the opaque text component a continuation is inserted into.
type Surface interface {
	// Content returns the full text.
	Content() string
	// SetContent replaces the full text.
	SetContent(text string)
	// InsertText appends text at the end and moves the cursor after it.
	InsertText(text string)
	// Focus gives the surface input focus.
	Focus()
}

// Buffer is an in-memory Surface.
type Buffer struct {
	mu       sync.RWMutex
	content  string
	cursor   int
	focused  bool
	revision uint64
}

var _ Surface = (*Buffer)(nil)

// NewBuffer creates a Buffer holding text with the cursor at the end.
func NewBuffer(text string) *Buffer {
	return &Buffer{content: text, cursor: utf8.RuneCountInString(text)}
}

// Content returns the current text.
func (b *Buffer) Content() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// SetContent replaces the text and moves the cursor to the end.
func (b *Buffer) SetContent(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = text
	b.cursor = utf8.RuneCountInString(text)
	b.revision++
}

// InsertText appends text, then focuses at the insertion point.
func (b *Buffer) InsertText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content += text
	b.cursor = utf8.RuneCountInString(b.content)
	b.focused = true
	b.revision++
}

// Focus marks the buffer as focused.
func (b *Buffer) Focus() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.focused = true
}

// Cursor returns the cursor position in runes.
func (b *Buffer) Cursor() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cursor
}

// Focused reports whether Focus or InsertText has been called.
func (b *Buffer) Focused() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.focused
}

// Revision counts content mutations.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}
