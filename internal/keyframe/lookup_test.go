package keyframe

import (
	"testing"

	"motionline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	kfs := []model.Keyframe{{Time: 0}, {Time: 3, IsDeleted: true}, {Time: 7}, {Time: 12}}

	tests := []struct {
		name string
		time int
		want int
	}{
		{name: "first", time: 0, want: 0},
		{name: "tombstone still found", time: 3, want: 1},
		{name: "last", time: 12, want: 3},
		{name: "gap", time: 5, want: NotFound},
		{name: "before start", time: -1, want: NotFound},
		{name: "after end", time: 13, want: NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Find(kfs, tt.time))
		})
	}

	assert.Equal(t, NotFound, Find(nil, 0))
	assert.False(t, IsLive(kfs, 3))
	assert.True(t, IsLive(kfs, 7))
}

func TestInsertSorted_KeepsOrder(t *testing.T) {
	var kfs []model.Keyframe
	for _, tm := range []int{10, 2, 7, -3, 11} {
		kfs = insertSorted(kfs, model.Keyframe{Time: tm})
	}
	require.True(t, IsSorted(kfs))
	assert.Equal(t, []int{-3, 2, 7, 10, 11}, LiveTimes(kfs))
}

func TestCloneTracks_DoesNotAlias(t *testing.T) {
	orig := []model.Track{{Identifier: propID(0, "p", 0), Keyframes: live(1, 2)}}
	cp := CloneTracks(orig)
	cp[0].Keyframes[0].IsDeleted = true

	assert.False(t, orig[0].Keyframes[0].IsDeleted)
	assert.Nil(t, CloneTracks(nil))
}
