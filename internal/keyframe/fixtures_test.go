package keyframe

import (
	"encoding/json"
	"fmt"

	"motionline/internal/model"
)

func val(s string) json.RawMessage { return json.RawMessage(s) }

func layerID(n int, id string) model.TrackIdentifier {
	return model.TrackIdentifier{TrackNumber: n, TrackID: id, TrackType: model.TrackTypeLayer, ParentTrackNumber: model.NoParent}
}

func boneID(n int, id string, layer int) model.TrackIdentifier {
	return model.TrackIdentifier{TrackNumber: n, TrackID: id, TrackType: model.TrackTypeBone, ParentTrackNumber: layer}
}

func propID(n int, id string, bone int) model.TrackIdentifier {
	return model.TrackIdentifier{TrackNumber: n, TrackID: id, TrackType: model.TrackTypeProperty, ParentTrackNumber: bone, PropertyKind: model.PropertyPosition}
}

// live builds live property keyframes with values "v<time>".
func live(times ...int) []model.Keyframe {
	out := make([]model.Keyframe, 0, len(times))
	for _, t := range times {
		out = append(out, model.Keyframe{Time: t, Value: val(fmt.Sprintf("%q", fmt.Sprintf("v%d", t)))})
	}
	return out
}

// timelineOf derives bone/layer presence from props and installs the selection.
func timelineOf(layers, bones, props []model.Track, selected []model.SelectionEvent) model.Timeline {
	bones = DerivePresence(bones, props)
	layers = DerivePresence(layers, bones)
	tl := model.Timeline{Layers: layers, Bones: bones, Properties: props}
	return WithPropertySelection(tl, Initialize(selected))
}

func selectAt(track model.Track, times ...int) []model.SelectionEvent {
	var out []model.SelectionEvent
	for _, t := range times {
		i := Find(track.Keyframes, t)
		out = append(out, model.SelectionEvent{Identifier: track.Identifier, Time: t, Value: track.Keyframes[i].Value})
	}
	return out
}

// keyframeAt returns the keyframe at time on the track (tombstoned or not).
func keyframeAt(track model.Track, time int) (model.Keyframe, bool) {
	i := Find(track.Keyframes, time)
	if i == NotFound {
		return model.Keyframe{}, false
	}
	return track.Keyframes[i], true
}

func deletedTimes(kfs []model.Keyframe) []int {
	out := []int{}
	for _, kf := range kfs {
		if kf.IsDeleted {
			out = append(out, kf.Time)
		}
	}
	return out
}
