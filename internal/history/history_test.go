package history

import (
	"testing"

	"motionline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snap(id string) model.Timeline {
	return model.Timeline{Layers: []model.Track{{Identifier: model.TrackIdentifier{TrackID: id, TrackType: model.TrackTypeLayer, ParentTrackNumber: model.NoParent}}}}
}

func id(tl model.Timeline) string { return tl.Layers[0].Identifier.TrackID }

func TestUndoRedo(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultLimit, h.Limit())
	assert.False(t, h.CanUndo())

	cur := snap("a")
	h.Push(cur)
	cur = snap("b")
	h.Push(cur)
	cur = snap("c")

	cur, ok := h.Undo(cur)
	require.True(t, ok)
	assert.Equal(t, "b", id(cur))
	cur, ok = h.Undo(cur)
	require.True(t, ok)
	assert.Equal(t, "a", id(cur))
	_, ok = h.Undo(cur)
	assert.False(t, ok)

	cur, ok = h.Redo(cur)
	require.True(t, ok)
	assert.Equal(t, "b", id(cur))
	assert.True(t, h.CanRedo())

	// A new edit drops the redo branch.
	h.Push(cur)
	assert.False(t, h.CanRedo())
	_, ok = h.Redo(snap("x"))
	assert.False(t, ok)
}

func TestPush_Bounded(t *testing.T) {
	h := New(2)
	h.Push(snap("a"))
	h.Push(snap("b"))
	h.Push(snap("c"))

	cur, _ := h.Undo(snap("d"))
	assert.Equal(t, "c", id(cur))
	cur, _ = h.Undo(cur)
	assert.Equal(t, "b", id(cur))
	assert.False(t, h.CanUndo())
}
