package keyframe

import (
	"testing"

	"motionline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePresence_UnionOfLiveChildTimes(t *testing.T) {
	bones := []model.Track{
		{Identifier: boneID(0, "hips", 0)},
		{Identifier: boneID(1, "spine", 0)},
	}
	props := []model.Track{
		{Identifier: propID(0, "hips.position", 0), Keyframes: live(0, 8)},
		{Identifier: propID(1, "hips.rotation", 0), Keyframes: append(live(4), model.Keyframe{Time: 6, IsDeleted: true})},
		{Identifier: propID(2, "spine.rotation", 1), Keyframes: live(2)},
	}

	got := DerivePresence(bones, props)

	require.Len(t, got, 2)
	assert.Equal(t, []int{0, 4, 8}, LiveTimes(got[0].Keyframes))
	assert.Equal(t, []int{2}, LiveTimes(got[1].Keyframes))
	for _, kf := range got[0].Keyframes {
		assert.Nil(t, kf.Value)
	}
	assert.Empty(t, CheckCascade(got, props))
}

func TestCheckTimeline_ReportsBrokenCascade(t *testing.T) {
	layer, bone, prop := singleChain(live(0, 10))
	tl := timelineOf([]model.Track{layer}, []model.Track{bone}, []model.Track{prop}, nil)
	require.Empty(t, CheckTimeline(tl))

	// Orphan a bone marker and leave a property keyframe uncovered.
	tl.Bones[0].Keyframes = []model.Keyframe{{Time: 0}, {Time: 5}}

	vs := CheckTimeline(tl)
	rules := map[int]string{}
	for _, v := range vs {
		if v.TrackType == string(model.TrackTypeBone) {
			rules[v.Time] = v.Rule
		}
	}
	assert.Equal(t, "cascade", rules[5])
	assert.Equal(t, "cascade", rules[10])
	assert.NotContains(t, rules, 0)
}

func TestCheckTimeline_ReportsOrderAndSelection(t *testing.T) {
	tl := model.Timeline{
		Properties:         []model.Track{{Identifier: propID(0, "p", 0), Keyframes: []model.Keyframe{{Time: 5}, {Time: 2}}}},
		SelectedProperties: Initialize([]model.SelectionEvent{{Identifier: propID(0, "p", 0), Time: 9}}),
	}

	var rules []string
	for _, v := range CheckTimeline(tl) {
		rules = append(rules, v.Rule)
	}
	assert.Contains(t, rules, "order")
	assert.Contains(t, rules, "selection")
}
