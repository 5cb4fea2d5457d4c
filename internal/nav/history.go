package nav

import "slices"

// DefaultHistoryLimit caps the history when no limit is configured.
const DefaultHistoryLimit = 10

// History is the ordered list of visited tabs, most recent last. It never holds
// two equal consecutive entries and never grows past its limit; the oldest entry
// is evicted on overflow.
type History struct {
	entries []Tab
	limit   int
}

// NewHistory creates a history seeded with initial entries (subject to the same
// invariants as Push).
func NewHistory(limit int, initial ...Tab) *History {
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	h := &History{entries: make([]Tab, 0, limit), limit: limit}
	for _, t := range initial {
		h.Push(t)
	}
	return h
}

// Push appends t unless it equals the current last entry. It reports whether the
// history changed.
func (h *History) Push(t Tab) bool {
	if n := len(h.entries); n > 0 && h.entries[n-1] == t {
		return false
	}
	h.entries = append(h.entries, t)
	if over := len(h.entries) - h.limit; over > 0 {
		h.entries = slices.Delete(h.entries, 0, over)
	}
	return true
}

// Pop removes and returns the last entry.
func (h *History) Pop() (Tab, bool) {
	n := len(h.entries)
	if n == 0 {
		return 0, false
	}
	last := h.entries[n-1]
	h.entries = h.entries[:n-1]
	return last, true
}

// Last returns the most recent entry without removing it.
func (h *History) Last() (Tab, bool) {
	n := len(h.entries)
	if n == 0 {
		return 0, false
	}
	return h.entries[n-1], true
}

func (h *History) Len() int   { return len(h.entries) }
func (h *History) Limit() int { return h.limit }

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []Tab { return slices.Clone(h.entries) }
