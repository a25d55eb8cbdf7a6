package keyframe

import (
	"sort"

	"motionline/internal/model"
)

// Skipped names a selected keyframe that could not be moved because its source slot was
// missing or already tombstoned at commit time.
type Skipped struct {
	Identifier model.TrackIdentifier `json:"identifier"`
	Time       int                   `json:"time"`
}

// PropertyResult is the outcome of shifting the property level.
type PropertyResult struct {
	Tracks []model.Track
	// PrevTimesByBone holds the pre-shift selected times per parent bone track number.
	PrevTimesByBone map[int][]int
	// PrevTimes holds every pre-shift selected time, ascending and de-duplicated.
	PrevTimes []int
	Skipped   []Skipped
	Moved     int
}

// PropertyRepository shifts leaf-level keyframes and their selection.
type PropertyRepository struct {
	Tracks    []model.Track
	Selection []model.SelectionCluster
}

// UpdateTrack moves every selected property keyframe by delta.
//
// Each source slot is tombstoned and never reused; the destination is overwritten in
// place when a keyframe (live or tombstoned) already sits there, or inserted otherwise.
// With delta >= 0 a track's keyframes are processed latest-first, with delta < 0
// earliest-first, so an unprocessed source is never clobbered by a moved sibling.
func (r PropertyRepository) UpdateTrack(delta int) PropertyResult {
	res := PropertyResult{
		Tracks:          CloneTracks(r.Tracks),
		PrevTimesByBone: map[int][]int{},
	}
	seen := map[int]bool{}

	for _, c := range r.Selection {
		ti, ok := FindTrack(res.Tracks, c.Identifier.TrackNumber)
		if !ok {
			for _, k := range c.Keyframes {
				res.Skipped = append(res.Skipped, Skipped{Identifier: c.Identifier, Time: k.Time})
			}
			continue
		}
		track := &res.Tracks[ti]
		parent := track.Identifier.ParentTrackNumber

		times := make([]int, 0, len(c.Keyframes))
		for _, k := range c.Keyframes {
			times = append(times, k.Time)
			res.PrevTimesByBone[parent] = appendUnique(res.PrevTimesByBone[parent], k.Time)
			if !seen[k.Time] {
				seen[k.Time] = true
				res.PrevTimes = append(res.PrevTimes, k.Time)
			}
		}
		if delta >= 0 {
			sort.Sort(sort.Reverse(sort.IntSlice(times)))
		} else {
			sort.Ints(times)
		}

		for _, t := range times {
			if moveKeyframe(track, t, t+delta) {
				res.Moved++
			} else {
				res.Skipped = append(res.Skipped, Skipped{Identifier: track.Identifier, Time: t})
			}
		}
	}

	for bone := range res.PrevTimesByBone {
		sort.Ints(res.PrevTimesByBone[bone])
	}
	sort.Ints(res.PrevTimes)
	return res
}

// UpdateSelection returns the selection shifted by delta.
func (r PropertyRepository) UpdateSelection(delta int) []model.SelectionCluster {
	return ShiftTimes(r.Selection, delta)
}

func moveKeyframe(track *model.Track, from, to int) bool {
	src := Find(track.Keyframes, from)
	if src == NotFound || track.Keyframes[src].IsDeleted {
		return false
	}
	value := track.Keyframes[src].Value
	track.Keyframes[src].IsDeleted = true
	track.Keyframes[src].IsSelected = false

	moved := model.Keyframe{Time: to, Value: value, IsDeleted: false, IsSelected: true}
	if dst := Find(track.Keyframes, to); dst != NotFound {
		track.Keyframes[dst] = moved
		return true
	}
	track.Keyframes = insertSorted(track.Keyframes, moved)
	return true
}

func appendUnique(xs []int, x int) []int {
	for _, v := range xs {
		if v == x {
			return xs
		}
	}
	return append(xs, x)
}
