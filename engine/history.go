package engine

// History is a two-stack undo/redo log of whole-state entries.
type History[T any] struct {
	undos []T
	redos []T
}

// PushUndo records an entry and invalidates the redo stack.
func (h *History[T]) PushUndo(item T) {
	h.undos = append(h.undos, item)
	clear(h.redos)
	h.redos = h.redos[:0]
}

// PushRedo records an entry on the redo stack only.
func (h *History[T]) PushRedo(item T) { h.redos = append(h.redos, item) }

// pushUndoKeepRedo is used by redo, which must not clear the remaining redos.
func (h *History[T]) pushUndoKeepRedo(item T) { h.undos = append(h.undos, item) }

// PopUndo removes the most recent undo entry.
func (h *History[T]) PopUndo() (T, bool) { return pop(&h.undos) }

// PopRedo removes the most recent redo entry.
func (h *History[T]) PopRedo() (T, bool) { return pop(&h.redos) }

// CanUndo reports whether an undo entry is available.
func (h *History[T]) CanUndo() bool { return len(h.undos) > 0 }

// CanRedo reports whether a redo entry is available.
func (h *History[T]) CanRedo() bool { return len(h.redos) > 0 }

// Depth returns the undo and redo stack sizes.
func (h *History[T]) Depth() (undo, redo int) { return len(h.undos), len(h.redos) }

// Clear empties both stacks.
func (h *History[T]) Clear() {
	clear(h.undos)
	clear(h.redos)
	h.undos = h.undos[:0]
	h.redos = h.redos[:0]
}

func pop[T any](s *[]T) (T, bool) {
	var zero T
	n := len(*s)
	if n == 0 {
		return zero, false
	}
	item := (*s)[n-1]
	(*s)[n-1] = zero
	*s = (*s)[:n-1]
	return item, true
}
