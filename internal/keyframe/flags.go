package keyframe

import "motionline/internal/model"

// DeriveSelection lifts a child-level selection one level up: a parent marker is selected
// at t when any of its children is selected at t and the marker is live there.
func DeriveSelection(childSelection []model.SelectionCluster, parents []model.Track) []model.SelectionCluster {
	var events []model.SelectionEvent
	for _, c := range childSelection {
		pi, ok := FindTrack(parents, c.Identifier.ParentTrackNumber)
		if !ok {
			continue
		}
		p := parents[pi]
		for _, k := range c.Keyframes {
			if IsLive(p.Keyframes, k.Time) {
				events = append(events, model.SelectionEvent{Identifier: p.Identifier, Time: k.Time})
			}
		}
	}
	return Initialize(events)
}

// SyncSelectionFlags returns tracks whose IsSelected flags mirror clusters exactly.
func SyncSelectionFlags(tracks []model.Track, clusters []model.SelectionCluster) []model.Track {
	out := CloneTracks(tracks)
	for i := range out {
		n := out[i].Identifier.TrackNumber
		for j := range out[i].Keyframes {
			kf := &out[i].Keyframes[j]
			kf.IsSelected = !kf.IsDeleted && Contains(clusters, n, kf.Time)
		}
	}
	return out
}

// WithPropertySelection installs props as the property selection of tl, derives the bone
// and layer selections from it and re-syncs every track's selection flags.
func WithPropertySelection(tl model.Timeline, props []model.SelectionCluster) model.Timeline {
	props = PruneSelection(props, tl.Properties)
	bones := DeriveSelection(props, tl.Bones)
	layers := DeriveSelection(bones, tl.Layers)
	return model.Timeline{
		Layers:             SyncSelectionFlags(tl.Layers, layers),
		Bones:              SyncSelectionFlags(tl.Bones, bones),
		Properties:         SyncSelectionFlags(tl.Properties, props),
		SelectedLayers:     layers,
		SelectedBones:      bones,
		SelectedProperties: props,
	}
}
