package keyframe

import "motionline/internal/model"

// TrackLists holds the three updated track collections of a committed drag.
type TrackLists struct {
	Layers     []model.Track
	Bones      []model.Track
	Properties []model.Track

	Skipped []Skipped
	Moved   int
}

// Selections holds the three re-shifted selection clusters of a committed drag.
type Selections struct {
	Layers     []model.SelectionCluster
	Bones      []model.SelectionCluster
	Properties []model.SelectionCluster
}

// DragDrop sequences the level repositories for one committed drag gesture.
// Both methods read the same pre-shift snapshot and may run in either order.
type DragDrop struct {
	snapshot model.Timeline
}

// NewDragDrop captures tl as the snapshot both update methods read from.
func NewDragDrop(tl model.Timeline) DragDrop {
	return DragDrop{snapshot: tl}
}

// UpdateTimeEditorTrackList shifts the property level, then bones, then the layer.
func (d DragDrop) UpdateTimeEditorTrackList(delta int) TrackLists {
	tl := d.snapshot
	if delta == 0 {
		return TrackLists{
			Layers:     CloneTracks(tl.Layers),
			Bones:      CloneTracks(tl.Bones),
			Properties: CloneTracks(tl.Properties),
			Moved:      Count(tl.SelectedProperties),
		}
	}

	props := PropertyRepository{Tracks: tl.Properties, Selection: tl.SelectedProperties}.UpdateTrack(delta)
	bones := BoneRepository{Tracks: tl.Bones, Selection: tl.SelectedBones}.UpdateTrack(delta, props.Tracks, props.PrevTimesByBone)
	layers := LayerRepository{Tracks: tl.Layers, Selection: tl.SelectedLayers}.UpdateTrack(delta, bones, props.PrevTimes)

	return TrackLists{
		Layers:     layers,
		Bones:      bones,
		Properties: props.Tracks,
		Skipped:    props.Skipped,
		Moved:      props.Moved,
	}
}

// UpdateSelectedTrackKeyframes re-shifts the three prior selection clusters by delta.
func (d DragDrop) UpdateSelectedTrackKeyframes(delta int) Selections {
	tl := d.snapshot
	return Selections{
		Layers:     LayerRepository{Selection: tl.SelectedLayers}.UpdateSelection(delta),
		Bones:      BoneRepository{Selection: tl.SelectedBones}.UpdateSelection(delta),
		Properties: PropertyRepository{Selection: tl.SelectedProperties}.UpdateSelection(delta),
	}
}

// CommitResult is the next snapshot after a drag plus what happened on the way.
type CommitResult struct {
	Timeline model.Timeline
	Skipped  []Skipped
	Moved    int
}

// Commit runs both halves of a drag against tl and assembles the next snapshot.
// After skipped sources the property selection is pruned to live keyframes and the
// bone and layer selections are re-derived from it.
func Commit(tl model.Timeline, delta int) CommitResult {
	dd := NewDragDrop(tl)
	tracks := dd.UpdateTimeEditorTrackList(delta)
	sel := dd.UpdateSelectedTrackKeyframes(delta)

	next := model.Timeline{
		Layers:             tracks.Layers,
		Bones:              tracks.Bones,
		Properties:         tracks.Properties,
		SelectedLayers:     sel.Layers,
		SelectedBones:      sel.Bones,
		SelectedProperties: sel.Properties,
	}
	if len(tracks.Skipped) > 0 {
		next = WithPropertySelection(next, next.SelectedProperties)
	}
	return CommitResult{Timeline: next, Skipped: tracks.Skipped, Moved: tracks.Moved}
}

// PruneSelection drops cluster entries that no longer point at a live keyframe.
func PruneSelection(clusters []model.SelectionCluster, tracks []model.Track) []model.SelectionCluster {
	var drop []model.SelectionEvent
	for _, c := range clusters {
		ti, ok := FindTrack(tracks, c.Identifier.TrackNumber)
		for _, k := range c.Keyframes {
			if !ok || !IsLive(tracks[ti].Keyframes, k.Time) {
				drop = append(drop, model.SelectionEvent{Identifier: c.Identifier, Time: k.Time})
			}
		}
	}
	if len(drop) == 0 {
		return cloneClusters(clusters)
	}
	return FilterOutTimes(clusters, drop)
}
