// Package remote pushes committed property keyframes to an external store.
package remote

import (
	"context"
	"encoding/json"
	"sort"

	"motionline/internal/model"
)

type Key struct {
	Time  int             `json:"time"`
	Value json.RawMessage `json:"value"`
}

// TrackPayload is the live keyframe list of one property track.
type TrackPayload struct {
	TrackID   string             `json:"trackId"`
	Kind      model.PropertyKind `json:"kind"`
	Keyframes []Key              `json:"keyframes"`
}

type Payload struct {
	AnimationID string         `json:"animationId"`
	LayerID     string         `json:"layerId"`
	Tracks      []TrackPayload `json:"tracks"`
}

func (p Payload) Empty() bool { return len(p.Tracks) == 0 }

type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// PayloadFor collects the non-tombstoned keyframes of the given property tracks.
// A nil trackNumbers selects every property track.
func PayloadFor(animationID string, tl model.Timeline, trackNumbers []int) Payload {
	p := Payload{AnimationID: animationID}
	if len(tl.Layers) > 0 {
		p.LayerID = tl.Layers[0].Identifier.TrackID
	}
	want := map[int]bool{}
	for _, n := range trackNumbers {
		want[n] = true
	}
	for _, tr := range tl.Properties {
		if trackNumbers != nil && !want[tr.Identifier.TrackNumber] {
			continue
		}
		tp := TrackPayload{TrackID: tr.Identifier.TrackID, Kind: tr.Identifier.PropertyKind, Keyframes: []Key{}}
		for _, kf := range tr.Keyframes {
			if kf.IsDeleted {
				continue
			}
			tp.Keyframes = append(tp.Keyframes, Key{Time: kf.Time, Value: kf.Value})
		}
		p.Tracks = append(p.Tracks, tp)
	}
	return p
}

// merge folds next into p; tracks in next replace same-id tracks in p.
func merge(p, next Payload) Payload {
	if p.AnimationID != next.AnimationID || p.LayerID != next.LayerID {
		return next
	}
	byID := map[string]TrackPayload{}
	for _, t := range p.Tracks {
		byID[t.TrackID] = t
	}
	for _, t := range next.Tracks {
		byID[t.TrackID] = t
	}
	out := Payload{AnimationID: next.AnimationID, LayerID: next.LayerID}
	for _, t := range byID {
		out.Tracks = append(out.Tracks, t)
	}
	sort.Slice(out.Tracks, func(i, j int) bool { return out.Tracks[i].TrackID < out.Tracks[j].TrackID })
	return out
}
