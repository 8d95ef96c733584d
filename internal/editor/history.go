// Package editor owns the in-memory editing session: a store serializing
// every funnel mutation, and the bounded undo/redo history behind it.
package editor

import (
	"github.com/funnelsmith/funnelsmith/internal/funnel"
)

// DefaultHistoryCap is the number of undo steps a session retains.
const DefaultHistoryCap = 50

// History is a bounded undo/redo log of graph snapshots. Snapshots are held
// by reference, which is safe because graphs are never mutated in place. The
// undo side is a fixed-capacity ring: once full, the oldest snapshot is
// dropped. History is session-scoped and never persisted.
type History struct {
	ring   []*funnel.Graph
	start  int
	size   int
	future []*funnel.Graph
}

// NewHistory returns a history retaining up to capacity undo steps.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCap
	}
	return &History{ring: make([]*funnel.Graph, capacity)}
}

// Push records the graph that was current before a mutation and clears the
// redo log.
func (h *History) Push(prev *funnel.Graph) {
	h.pushPast(prev)
	h.future = h.future[:0]
}

// Undo exchanges current for the most recent snapshot. It reports false,
// returning current unchanged, when there is nothing to undo.
func (h *History) Undo(current *funnel.Graph) (*funnel.Graph, bool) {
	if h.size == 0 {
		return current, false
	}
	idx := (h.start + h.size - 1) % len(h.ring)
	restored := h.ring[idx]
	h.ring[idx] = nil
	h.size--
	h.future = append(h.future, current)
	return restored, true
}

// Redo re-applies the most recently undone snapshot. It reports false,
// returning current unchanged, when there is nothing to redo.
func (h *History) Redo(current *funnel.Graph) (*funnel.Graph, bool) {
	if len(h.future) == 0 {
		return current, false
	}
	restored := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.pushPast(current)
	return restored, true
}

// CanUndo reports whether an undo step is available.
func (h *History) CanUndo() bool { return h.size > 0 }

// CanRedo reports whether a redo step is available.
func (h *History) CanRedo() bool { return len(h.future) > 0 }

func (h *History) pushPast(g *funnel.Graph) {
	if h.size == len(h.ring) {
		h.ring[h.start] = g
		h.start = (h.start + 1) % len(h.ring)
		return
	}
	h.ring[(h.start+h.size)%len(h.ring)] = g
	h.size++
}
