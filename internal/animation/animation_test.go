package animation

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"motionline/internal/keyframe"
	"motionline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walkDoc = `{
  "id": "walk",
  "name": "Walk cycle",
  "layers": [
    {"id": "base", "bones": [
      {"id": "hips", "name": "Hips", "properties": [
        {"kind": "position", "keyframes": [{"time": 10, "value": [0,1,0]}, {"time": 0, "value": [0,0,0]}]},
        {"kind": "rotation", "keyframes": [{"time": 5, "value": 0.5}]}
      ]},
      {"id": "spine", "properties": [
        {"kind": "scale", "keyframes": [{"time": 5, "value": 1}, {"time": 20, "value": 2}]}
      ]}
    ]},
    {"id": "upper", "bones": []}
  ]
}`

func TestParse_DefaultsAndValidation(t *testing.T) {
	a, err := Parse([]byte(walkDoc))
	require.NoError(t, err)
	assert.Equal(t, DefaultFPS, a.FPS)
	assert.Equal(t, "base", a.DefaultLayerID())

	cases := map[string]string{
		"missing id":     `{"layers": []}`,
		"unknown kind":   `{"id": "a", "layers": [{"id": "l", "bones": [{"id": "b", "properties": [{"kind": "skew", "keyframes": []}]}]}]}`,
		"duplicate time": `{"id": "a", "layers": [{"id": "l", "bones": [{"id": "b", "properties": [{"kind": "scale", "keyframes": [{"time": 1}, {"time": 1}]}]}]}]}`,
		"duplicate bone": `{"id": "a", "layers": [{"id": "l", "bones": [{"id": "b"}, {"id": "b"}]}]}`,
		"not json":       `{`,
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
}

func TestLoad_ReportsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"layers": []}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

func TestBuildTimeline_DerivesParents(t *testing.T) {
	a, err := Parse([]byte(walkDoc))
	require.NoError(t, err)

	tl, err := BuildTimeline(a, "base")
	require.NoError(t, err)

	require.Len(t, tl.Layers, 1)
	require.Len(t, tl.Bones, 2)
	require.Len(t, tl.Properties, 3)

	p0 := tl.Properties[0]
	assert.Equal(t, "hips.position", p0.Identifier.TrackID)
	assert.Equal(t, model.PropertyPosition, p0.Identifier.PropertyKind)
	assert.Equal(t, []int{0, 10}, keyframe.LiveTimes(p0.Keyframes))
	assert.Equal(t, 1, tl.Properties[2].Identifier.ParentTrackNumber)
	assert.Equal(t, 2, tl.Properties[2].Identifier.TrackNumber)

	assert.Equal(t, []int{0, 5, 10}, keyframe.LiveTimes(tl.Bones[0].Keyframes))
	assert.Equal(t, []int{5, 20}, keyframe.LiveTimes(tl.Bones[1].Keyframes))
	assert.Equal(t, []int{0, 5, 10, 20}, keyframe.LiveTimes(tl.Layers[0].Keyframes))
	assert.Equal(t, model.NoParent, tl.Layers[0].Identifier.ParentTrackNumber)
	assert.Empty(t, keyframe.CheckTimeline(tl))

	empty, err := BuildTimeline(a, "upper")
	require.NoError(t, err)
	assert.Empty(t, empty.Bones)
	assert.Empty(t, empty.Layers[0].Keyframes)

	_, err = BuildTimeline(a, "nope")
	var nf model.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestWriteBack_FoldsCommittedShift(t *testing.T) {
	a, err := Parse([]byte(walkDoc))
	require.NoError(t, err)
	tl, err := BuildTimeline(a, "base")
	require.NoError(t, err)

	sel := keyframe.Initialize([]model.SelectionEvent{{Identifier: tl.Properties[0].Identifier, Time: 0}})
	tl = keyframe.WithPropertySelection(tl, sel)
	tl = keyframe.Commit(tl, 3).Timeline

	out, err := WriteBack(a, tl)
	require.NoError(t, err)

	hips := out.Layers[0].Bones[0]
	assert.Equal(t, "Hips", hips.Name)
	pos := hips.Properties[0]
	require.Len(t, pos.Keyframes, 2)
	assert.Equal(t, 3, pos.Keyframes[0].Time)
	assert.JSONEq(t, `[0,0,0]`, string(pos.Keyframes[0].Value))
	assert.Equal(t, 10, pos.Keyframes[1].Time)

	// The source document is untouched.
	assert.Equal(t, 10, a.Layers[0].Bones[0].Properties[0].Keyframes[0].Time)
	assert.Equal(t, "upper", out.Layers[1].ID)

	b, err := Export(out)
	require.NoError(t, err)
	var round Animation
	require.NoError(t, json.Unmarshal(b, &round))
	assert.Equal(t, out.ID, round.ID)
	assert.Equal(t, 3, round.Layers[0].Bones[0].Properties[0].Keyframes[0].Time)
	assert.JSONEq(t, `[0,1,0]`, string(round.Layers[0].Bones[0].Properties[0].Keyframes[1].Value))
}

func TestWriteBack_NoLayer(t *testing.T) {
	_, err := WriteBack(Animation{ID: "a"}, model.Timeline{})
	assert.ErrorIs(t, err, model.ErrNoActiveLayer)
}
