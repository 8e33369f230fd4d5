package guided

// History is a linear undo/redo stack of snapshots with a current-index pointer.
// Entries are cloned on the way in and on the way out, so callers never share
// state with the stack.
type History[T any] struct {
	entries []T
	index   int
	clone   func(T) T
	limit   int
}

// NewHistory starts a history at initial. A limit ≤ 0 keeps every entry.
func NewHistory[T any](initial T, clone func(T) T, limit int) *History[T] {
	return &History[T]{
		entries: []T{clone(initial)},
		clone:   clone,
		limit:   limit,
	}
}

// Push records s after the current entry, dropping any redo entries
func (h *History[T]) Push(s T) {
	h.entries = append(h.entries[:h.index+1], h.clone(s))
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append(h.entries[:0], h.entries[drop:]...)
	}
	h.index = len(h.entries) - 1
}

// Undo steps back one entry
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.index--
	return h.clone(h.entries[h.index]), true
}

// Redo steps forward one entry
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.index++
	return h.clone(h.entries[h.index]), true
}

// Current returns a copy of the entry under the pointer
func (h *History[T]) Current() T {
	return h.clone(h.entries[h.index])
}

func (h *History[T]) CanUndo() bool { return h.index > 0 }
func (h *History[T]) CanRedo() bool { return h.index < len(h.entries)-1 }

// Len is the number of recorded entries, including any redo tail
func (h *History[T]) Len() int { return len(h.entries) }
