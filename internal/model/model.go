package model

import (
	"encoding/json"
	"time"
)

type TrackType string

const (
	TrackTypeLayer    TrackType = "layer"
	TrackTypeBone     TrackType = "bone"
	TrackTypeProperty TrackType = "property"
)

// PropertyKind tags which transform channel a property track animates.
// It is empty for bone and layer tracks.
type PropertyKind string

const (
	PropertyPosition PropertyKind = "position"
	PropertyRotation PropertyKind = "rotation"
	PropertyScale    PropertyKind = "scale"
)

// NoParent is the ParentTrackNumber of layer tracks.
const NoParent = -1

type TrackIdentifier struct {
	// TrackNumber is the row index within its level. Unique per level.
	TrackNumber int       `json:"trackNumber"`
	TrackID     string    `json:"trackId"`
	TrackType   TrackType `json:"trackType"`

	// ParentTrackNumber points at the owning row one level up (NoParent for layers).
	ParentTrackNumber int          `json:"parentTrackNumber"`
	PropertyKind      PropertyKind `json:"propertyKind,omitempty"`
}

// Keyframe is a time-stamped record on a track.
// Property keyframes carry a Value; bone and layer keyframes are presence markers (nil Value).
type Keyframe struct {
	Time       int             `json:"time"`
	Value      json.RawMessage `json:"value,omitempty"`
	IsDeleted  bool            `json:"isDeleted"`
	IsSelected bool            `json:"isSelected"`
}

type Track struct {
	Identifier TrackIdentifier `json:"identifier"`
	Keyframes  []Keyframe      `json:"keyframes"`
}

type ClusterKeyframe struct {
	Time  int             `json:"time"`
	Value json.RawMessage `json:"value,omitempty"`
}

// SelectionCluster is the per-track list of currently selected keyframes.
type SelectionCluster struct {
	Identifier TrackIdentifier   `json:"identifier"`
	Keyframes  []ClusterKeyframe `json:"keyframes"`
}

// SelectionEvent is one flat (track, time, value?) entry used to build or patch clusters.
type SelectionEvent struct {
	Identifier TrackIdentifier `json:"identifier"`
	Time       int             `json:"time"`
	Value      json.RawMessage `json:"value,omitempty"`
}

// Timeline is one immutable snapshot of the resident tracks and selections.
// Exactly one layer track is resident at a time.
type Timeline struct {
	Layers     []Track `json:"layers"`
	Bones      []Track `json:"bones"`
	Properties []Track `json:"properties"`

	SelectedLayers     []SelectionCluster `json:"selectedLayers"`
	SelectedBones      []SelectionCluster `json:"selectedBones"`
	SelectedProperties []SelectionCluster `json:"selectedProperties"`
}

// TracksOf returns the tracks of the given level.
func (tl Timeline) TracksOf(tt TrackType) []Track {
	switch tt {
	case TrackTypeLayer:
		return tl.Layers
	case TrackTypeBone:
		return tl.Bones
	case TrackTypeProperty:
		return tl.Properties
	default:
		return nil
	}
}

// SelectionOf returns the selection clusters of the given level.
func (tl Timeline) SelectionOf(tt TrackType) []SelectionCluster {
	switch tt {
	case TrackTypeLayer:
		return tl.SelectedLayers
	case TrackTypeBone:
		return tl.SelectedBones
	case TrackTypeProperty:
		return tl.SelectedProperties
	default:
		return nil
	}
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
