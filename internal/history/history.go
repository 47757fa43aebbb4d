// Package history keeps a linear undo/redo log of text snapshots for the
// signal input buffer.
//
// The log always holds at least one entry (it starts with the empty string)
// and a cursor pointing at the current snapshot. Recording a new snapshot
// while the cursor is behind the tail discards the redo branch first.
package history

import (
	"sync"
)

const (
	// DefaultMaxEntries is used when New is given a non-positive bound.
	DefaultMaxEntries = 1000
	// MaxEntriesLimit caps any configured bound.
	MaxEntriesLimit = 100000
)

// History is a cursor over an ordered list of text snapshots.
// All methods are total: boundary moves are no-ops, never errors.
type History struct {
	mu         sync.RWMutex
	entries    []string
	cursor     int
	maxEntries int
}

// New creates a history holding a single empty snapshot.
// maxEntries bounds the log; the oldest snapshots are dropped past it.
func New(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxEntries > MaxEntriesLimit {
		maxEntries = MaxEntriesLimit
	}
	return &History{
		entries:    []string{""},
		maxEntries: maxEntries,
	}
}

// Record makes text the new current snapshot.
// It is a no-op when text equals the current snapshot.
func (h *History) Record(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record(text)
}

func (h *History) record(text string) bool {
	if h.entries[h.cursor] == text {
		return false
	}

	h.entries = append(h.entries[:h.cursor+1], text)
	h.cursor++

	if over := len(h.entries) - h.maxEntries; over > 0 {
		// Keep the cursor on the same snapshot after dropping the oldest.
		h.entries = append(h.entries[:0], h.entries[over:]...)
		h.cursor -= over
	}
	return true
}

// Undo steps back one snapshot and returns the new current text.
// At the oldest snapshot it returns the current text unchanged.
func (h *History) Undo() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor]
}

// Redo steps forward one snapshot and returns the new current text.
// At the newest snapshot it returns the current text unchanged.
func (h *History) Redo() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < len(h.entries)-1 {
		h.cursor++
	}
	return h.entries[h.cursor]
}

// CanUndo reports whether Undo would move the cursor.
func (h *History) CanUndo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor > 0
}

// CanRedo reports whether Redo would move the cursor.
func (h *History) CanRedo() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor < len(h.entries)-1
}

// Clear records the empty string as a new snapshot, so a following Undo
// restores the text that was present before the clear.
func (h *History) Clear() {
	h.Record("")
}

// Reset wipes the log back to a single empty snapshot. Unlike Clear it is
// not undoable.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []string{""}
	h.cursor = 0
}

// Current returns the snapshot under the cursor.
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[h.cursor]
}

// Cursor returns the index of the current snapshot.
func (h *History) Cursor() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cursor
}

// Len returns the number of snapshots in the log.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}
