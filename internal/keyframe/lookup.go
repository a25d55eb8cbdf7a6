// Package keyframe implements the timeline keyframe engine: sorted per-track keyframe
// lists, selection clusters, and the Property -> Bone -> Layer time-shift cascade.
//
// Every exported operation is pure. Inputs are never mutated; callers get fresh slices
// back and may keep the previous snapshot around (undo history relies on this).
package keyframe

import (
	"sort"

	"motionline/internal/model"
)

// NotFound is returned by Find when no keyframe sits at the requested time.
const NotFound = -1

// Find returns the index of the keyframe at time (tombstoned or not) or NotFound.
// keyframes must be strictly ascending by time.
func Find(keyframes []model.Keyframe, time int) int {
	i := sort.Search(len(keyframes), func(i int) bool { return keyframes[i].Time >= time })
	if i < len(keyframes) && keyframes[i].Time == time {
		return i
	}
	return NotFound
}

// IsLive reports whether a non-tombstoned keyframe exists at time.
func IsLive(keyframes []model.Keyframe, time int) bool {
	i := Find(keyframes, time)
	return i != NotFound && !keyframes[i].IsDeleted
}

// insertSorted inserts kf at its ordered position. The caller guarantees no keyframe
// already exists at kf.Time; the slice is modified in place and returned.
func insertSorted(keyframes []model.Keyframe, kf model.Keyframe) []model.Keyframe {
	i := sort.Search(len(keyframes), func(i int) bool { return keyframes[i].Time >= kf.Time })
	keyframes = append(keyframes, model.Keyframe{})
	copy(keyframes[i+1:], keyframes[i:])
	keyframes[i] = kf
	return keyframes
}

// IsSorted reports whether keyframe times are strictly ascending.
func IsSorted(keyframes []model.Keyframe) bool {
	for i := 1; i < len(keyframes); i++ {
		if keyframes[i-1].Time >= keyframes[i].Time {
			return false
		}
	}
	return true
}

// LiveTimes returns the times of all non-tombstoned keyframes, ascending.
func LiveTimes(keyframes []model.Keyframe) []int {
	out := make([]int, 0, len(keyframes))
	for _, kf := range keyframes {
		if !kf.IsDeleted {
			out = append(out, kf.Time)
		}
	}
	return out
}

func cloneTrack(t model.Track) model.Track {
	kfs := make([]model.Keyframe, len(t.Keyframes))
	copy(kfs, t.Keyframes)
	return model.Track{Identifier: t.Identifier, Keyframes: kfs}
}

// CloneTracks copies the track slice and every keyframe array. Values are shared;
// they are treated as immutable payloads.
func CloneTracks(tracks []model.Track) []model.Track {
	if tracks == nil {
		return nil
	}
	out := make([]model.Track, len(tracks))
	for i := range tracks {
		out[i] = cloneTrack(tracks[i])
	}
	return out
}

// FindTrack returns the index of the track with the given track number.
func FindTrack(tracks []model.Track, trackNumber int) (int, bool) {
	for i := range tracks {
		if tracks[i].Identifier.TrackNumber == trackNumber {
			return i, true
		}
	}
	return 0, false
}

// FindTrackByID returns the index of the track with the given external id.
func FindTrackByID(tracks []model.Track, trackID string) (int, bool) {
	for i := range tracks {
		if tracks[i].Identifier.TrackID == trackID {
			return i, true
		}
	}
	return 0, false
}

// ChildrenOf returns the tracks whose parent is parentTrackNumber, in slice order.
func ChildrenOf(tracks []model.Track, parentTrackNumber int) []model.Track {
	var out []model.Track
	for _, t := range tracks {
		if t.Identifier.ParentTrackNumber == parentTrackNumber {
			out = append(out, t)
		}
	}
	return out
}

// AnyLive reports whether any of tracks has a non-tombstoned keyframe at time.
func AnyLive(tracks []model.Track, time int) bool {
	for _, t := range tracks {
		if IsLive(t.Keyframes, time) {
			return true
		}
	}
	return false
}
