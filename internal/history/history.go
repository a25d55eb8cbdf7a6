// Package history keeps bounded undo/redo stacks of whole Timeline snapshots.
package history

import "motionline/internal/model"

const DefaultLimit = 100

// History is not safe for concurrent use.
type History struct {
	limit int
	past  []model.Timeline
	next  []model.Timeline
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

func (h *History) Limit() int { return h.limit }

// Push records prev as the state to return to on Undo and clears the redo stack.
func (h *History) Push(prev model.Timeline) {
	h.past = append(h.past, prev)
	if len(h.past) > h.limit {
		h.past = append([]model.Timeline(nil), h.past[len(h.past)-h.limit:]...)
	}
	h.next = nil
}

// Undo swaps current for the most recent snapshot. ok is false when there is nothing to undo.
func (h *History) Undo(current model.Timeline) (model.Timeline, bool) {
	if len(h.past) == 0 {
		return current, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.next = append(h.next, current)
	return prev, true
}

func (h *History) Redo(current model.Timeline) (model.Timeline, bool) {
	if len(h.next) == 0 {
		return current, false
	}
	n := h.next[len(h.next)-1]
	h.next = h.next[:len(h.next)-1]
	h.past = append(h.past, current)
	return n, true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.next) > 0 }
