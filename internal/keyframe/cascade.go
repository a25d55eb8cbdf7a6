package keyframe

import "motionline/internal/model"

// BoneRepository reconciles bone presence markers after a property shift.
type BoneRepository struct {
	Tracks    []model.Track
	Selection []model.SelectionCluster
}

// UpdateTrack applies the four-pass cascade to every bone named in prevTimesByBone,
// testing presence against properties (the already-shifted property collection).
func (r BoneRepository) UpdateTrack(delta int, properties []model.Track, prevTimesByBone map[int][]int) []model.Track {
	return reconcile(r.Tracks, properties, prevTimesByBone, delta)
}

// UpdateSelection returns the selection shifted by delta.
func (r BoneRepository) UpdateSelection(delta int) []model.SelectionCluster {
	return ShiftTimes(r.Selection, delta)
}

// LayerRepository reconciles the resident layer's presence markers after a bone update.
type LayerRepository struct {
	Tracks    []model.Track
	Selection []model.SelectionCluster
}

// UpdateTrack applies the four-pass cascade to the resident layer tracks against bones.
// prevTimes is every pre-shift selected property time.
func (r LayerRepository) UpdateTrack(delta int, bones []model.Track, prevTimes []int) []model.Track {
	byLayer := make(map[int][]int, len(r.Tracks))
	for _, l := range r.Tracks {
		byLayer[l.Identifier.TrackNumber] = prevTimes
	}
	return reconcile(r.Tracks, bones, byLayer, delta)
}

// UpdateSelection returns the selection shifted by delta.
func (r LayerRepository) UpdateSelection(delta int) []model.SelectionCluster {
	return ShiftTimes(r.Selection, delta)
}

// reconcile is the shared presence cascade for a non-leaf level:
//
//  1. clear the selection flag on each parent track being reconciled
//  2. tombstone the marker at each previous time no child is live at any more
//  3. un-tombstone or insert the marker at each shifted time a child is live at
//  4. select the marker at each shifted time
//
// Passes run to completion in order so a destination can never be tombstoned by a later
// delete. A shifted time with no live child (its source was skipped) gets no marker.
func reconcile(parents, children []model.Track, prevTimes map[int][]int, delta int) []model.Track {
	out := CloneTracks(parents)
	for i := range out {
		track := &out[i]
		times, ok := prevTimes[track.Identifier.TrackNumber]
		if !ok {
			continue
		}
		kids := ChildrenOf(children, track.Identifier.TrackNumber)

		for k := range track.Keyframes {
			track.Keyframes[k].IsSelected = false
		}

		for _, t := range times {
			if AnyLive(kids, t) {
				continue
			}
			if j := Find(track.Keyframes, t); j != NotFound {
				track.Keyframes[j].IsDeleted = true
			}
		}

		for _, t := range times {
			dst := t + delta
			if !AnyLive(kids, dst) {
				continue
			}
			if j := Find(track.Keyframes, dst); j != NotFound {
				track.Keyframes[j].IsDeleted = false
				continue
			}
			track.Keyframes = insertSorted(track.Keyframes, model.Keyframe{Time: dst})
		}

		for _, t := range times {
			if j := Find(track.Keyframes, t+delta); j != NotFound && !track.Keyframes[j].IsDeleted {
				track.Keyframes[j].IsSelected = true
			}
		}
	}
	return out
}
