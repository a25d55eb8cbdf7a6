// Package animation holds the durable animation document and converts between it and
// the resident Timeline of one layer.
package animation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"motionline/internal/keyframe"
	"motionline/internal/model"
)

type Animation struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	FPS    int     `json:"fps"`
	Layers []Layer `json:"layers"`
}

type Layer struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Bones []Bone `json:"bones"`
}

type Bone struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Properties []Property `json:"properties"`
}

type Property struct {
	Kind      model.PropertyKind `json:"kind"`
	Keyframes []Key              `json:"keyframes"`
}

type Key struct {
	Time  int             `json:"time"`
	Value json.RawMessage `json:"value"`
}

var ErrInvalid = errors.New("invalid animation")

const DefaultFPS = 24

// PropertyTrackID is the TrackID of a property track: "<bone>.<kind>".
func PropertyTrackID(boneID string, kind model.PropertyKind) string {
	return boneID + "." + string(kind)
}

func Load(path string) (Animation, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Animation{}, err
	}
	a, err := Parse(b)
	if err != nil {
		return Animation{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func Parse(b []byte) (Animation, error) {
	var a Animation
	if err := json.Unmarshal(b, &a); err != nil {
		return Animation{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if a.FPS == 0 {
		a.FPS = DefaultFPS
	}
	if err := Validate(a); err != nil {
		return Animation{}, err
	}
	return a, nil
}

// Validate rejects documents the timeline cannot represent.
func Validate(a Animation) error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: missing animation id", ErrInvalid)
	}
	if a.FPS < 0 {
		return fmt.Errorf("%w: fps must be positive", ErrInvalid)
	}
	layerIDs := map[string]bool{}
	for _, l := range a.Layers {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("%w: layer with empty id", ErrInvalid)
		}
		if layerIDs[l.ID] {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalid, l.ID)
		}
		layerIDs[l.ID] = true

		boneIDs := map[string]bool{}
		for _, b := range l.Bones {
			if strings.TrimSpace(b.ID) == "" {
				return fmt.Errorf("%w: layer %q: bone with empty id", ErrInvalid, l.ID)
			}
			if boneIDs[b.ID] {
				return fmt.Errorf("%w: layer %q: duplicate bone %q", ErrInvalid, l.ID, b.ID)
			}
			boneIDs[b.ID] = true

			kinds := map[model.PropertyKind]bool{}
			for _, p := range b.Properties {
				switch p.Kind {
				case model.PropertyPosition, model.PropertyRotation, model.PropertyScale:
				default:
					return fmt.Errorf("%w: bone %q: unknown property kind %q", ErrInvalid, b.ID, p.Kind)
				}
				if kinds[p.Kind] {
					return fmt.Errorf("%w: bone %q: duplicate property %q", ErrInvalid, b.ID, p.Kind)
				}
				kinds[p.Kind] = true

				times := map[int]bool{}
				for _, k := range p.Keyframes {
					if times[k.Time] {
						return fmt.Errorf("%w: %s: duplicate keyframe at %d", ErrInvalid, PropertyTrackID(b.ID, p.Kind), k.Time)
					}
					times[k.Time] = true
				}
			}
		}
	}
	return nil
}

func (a Animation) FindLayer(id string) (Layer, bool) {
	for _, l := range a.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// DefaultLayerID is the first layer's id, or "" for an empty document.
func (a Animation) DefaultLayerID() string {
	if len(a.Layers) == 0 {
		return ""
	}
	return a.Layers[0].ID
}

// BuildTimeline builds the resident Timeline for one layer with an empty selection.
// Track numbers follow document order within each level.
func BuildTimeline(a Animation, layerID string) (model.Timeline, error) {
	l, ok := a.FindLayer(layerID)
	if !ok {
		return model.Timeline{}, model.NotFoundError{Kind: "layer", ID: layerID}
	}

	layers := []model.Track{{
		Identifier: model.TrackIdentifier{
			TrackNumber:       0,
			TrackID:           l.ID,
			TrackType:         model.TrackTypeLayer,
			ParentTrackNumber: model.NoParent,
		},
	}}
	bones := make([]model.Track, 0, len(l.Bones))
	props := []model.Track{}
	for bn, b := range l.Bones {
		bones = append(bones, model.Track{Identifier: model.TrackIdentifier{
			TrackNumber:       bn,
			TrackID:           b.ID,
			TrackType:         model.TrackTypeBone,
			ParentTrackNumber: 0,
		}})
		for _, p := range b.Properties {
			kfs := make([]model.Keyframe, 0, len(p.Keyframes))
			for _, k := range p.Keyframes {
				kfs = append(kfs, model.Keyframe{Time: k.Time, Value: k.Value})
			}
			sort.SliceStable(kfs, func(i, j int) bool { return kfs[i].Time < kfs[j].Time })
			props = append(props, model.Track{
				Identifier: model.TrackIdentifier{
					TrackNumber:       len(props),
					TrackID:           PropertyTrackID(b.ID, p.Kind),
					TrackType:         model.TrackTypeProperty,
					ParentTrackNumber: bn,
					PropertyKind:      p.Kind,
				},
				Keyframes: kfs,
			})
		}
	}

	bones = keyframe.DerivePresence(bones, props)
	layers = keyframe.DerivePresence(layers, bones)
	tl := model.Timeline{Layers: layers, Bones: bones, Properties: props}
	return keyframe.WithPropertySelection(tl, nil), nil
}

// WriteBack folds the resident layer's property tracks into a copy of the document.
// Tombstones are dropped and keyframes come out sorted by time.
func WriteBack(a Animation, tl model.Timeline) (Animation, error) {
	if len(tl.Layers) == 0 {
		return a, model.ErrNoActiveLayer
	}
	layerID := tl.Layers[0].Identifier.TrackID
	li := -1
	for i, l := range a.Layers {
		if l.ID == layerID {
			li = i
			break
		}
	}
	if li < 0 {
		return a, model.NotFoundError{Kind: "layer", ID: layerID}
	}

	byBone := map[int][]model.Track{}
	for _, p := range tl.Properties {
		byBone[p.Identifier.ParentTrackNumber] = append(byBone[p.Identifier.ParentTrackNumber], p)
	}

	out := a
	out.Layers = append([]Layer(nil), a.Layers...)
	layer := out.Layers[li]
	layer.Bones = make([]Bone, 0, len(tl.Bones))
	for _, bt := range tl.Bones {
		b := Bone{ID: bt.Identifier.TrackID, Properties: []Property{}}
		if orig, ok := findBone(a.Layers[li], b.ID); ok {
			b.Name = orig.Name
		}
		for _, pt := range byBone[bt.Identifier.TrackNumber] {
			keys := []Key{}
			for _, kf := range pt.Keyframes {
				if kf.IsDeleted {
					continue
				}
				keys = append(keys, Key{Time: kf.Time, Value: kf.Value})
			}
			sort.SliceStable(keys, func(i, j int) bool { return keys[i].Time < keys[j].Time })
			b.Properties = append(b.Properties, Property{Kind: pt.Identifier.PropertyKind, Keyframes: keys})
		}
		layer.Bones = append(layer.Bones, b)
	}
	out.Layers[li] = layer
	return out, nil
}

func findBone(l Layer, id string) (Bone, bool) {
	for _, b := range l.Bones {
		if b.ID == id {
			return b, true
		}
	}
	return Bone{}, false
}

func Export(a Animation) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
