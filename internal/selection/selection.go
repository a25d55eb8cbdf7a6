// Package selection turns discrete click and keyboard gestures into fresh selection sets.
package selection

import (
	"errors"
	"fmt"
	"strings"

	"motionline/internal/keyframe"
	"motionline/internal/model"
)

type SelectType string

const (
	SelectLeft        SelectType = "left"
	SelectMultiple    SelectType = "multiple"
	SelectHorizontal  SelectType = "horizontal"
	SelectVertical    SelectType = "vertical"
	SelectAll         SelectType = "selectAll"
	SelectUnselectAll SelectType = "unselectAll"
)

var ErrInvalidSelectType = errors.New("invalid select type")

// ParseSelectType accepts the canonical names plus the row/column/all/none aliases.
func ParseSelectType(s string) (SelectType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "single":
		return SelectLeft, nil
	case "multiple", "toggle":
		return SelectMultiple, nil
	case "horizontal", "row":
		return SelectHorizontal, nil
	case "vertical", "column":
		return SelectVertical, nil
	case "selectall", "all":
		return SelectAll, nil
	case "unselectall", "none":
		return SelectUnselectAll, nil
	default:
		return "", fmt.Errorf("%w: %q (expected left|multiple|horizontal|vertical|selectAll|unselectAll)", ErrInvalidSelectType, s)
	}
}

// Target is the clicked cell. AllTracks applies selectAll/unselectAll to the whole
// timeline instead of one track.
type Target struct {
	TrackType   model.TrackType
	TrackNumber int
	Time        int
	AllTracks   bool
}

// SelectKeyframes returns tl with a freshly built selection for the gesture.
//
// Selections are held at property granularity: a click on a bone or layer keyframe
// stands for the live property keyframes beneath it at that time. Bone and layer
// selections are derived afterwards and every track's selection flags are re-synced.
func SelectKeyframes(tl model.Timeline, st SelectType, target Target) (model.Timeline, error) {
	if !(target.AllTracks && (st == SelectAll || st == SelectUnselectAll)) {
		if _, ok := keyframe.FindTrack(tl.TracksOf(target.TrackType), target.TrackNumber); !ok {
			return tl, model.NotFoundError{Kind: string(target.TrackType) + " track", ID: fmt.Sprintf("%d", target.TrackNumber)}
		}
	}

	current := tl.SelectedProperties
	var next []model.SelectionCluster

	switch st {
	case SelectLeft:
		next = keyframe.Initialize(eventsAt(descendants(tl, target.TrackType, target.TrackNumber), target.Time))

	case SelectMultiple:
		evs := eventsAt(descendants(tl, target.TrackType, target.TrackNumber), target.Time)
		if allSelected(current, evs) {
			next = keyframe.FilterOutTimes(current, evs)
		} else {
			next = keyframe.AddTimes(current, evs)
		}

	case SelectHorizontal:
		next = keyframe.Initialize(eventsAll(descendants(tl, target.TrackType, target.TrackNumber)))

	case SelectVertical:
		var props []model.Track
		for _, sib := range siblings(tl, target.TrackType, target.TrackNumber) {
			props = append(props, descendants(tl, target.TrackType, sib)...)
		}
		next = keyframe.Initialize(eventsAt(props, target.Time))

	case SelectAll:
		props := tl.Properties
		if !target.AllTracks {
			props = descendants(tl, target.TrackType, target.TrackNumber)
		}
		next = keyframe.AddTimes(current, eventsAll(props))

	case SelectUnselectAll:
		if target.AllTracks {
			next = []model.SelectionCluster{}
			break
		}
		var drop []model.SelectionEvent
		for _, p := range descendants(tl, target.TrackType, target.TrackNumber) {
			for _, t := range keyframe.SelectedTimes(current, p.Identifier.TrackNumber) {
				drop = append(drop, model.SelectionEvent{Identifier: p.Identifier, Time: t})
			}
		}
		next = keyframe.FilterOutTimes(current, drop)

	default:
		return tl, fmt.Errorf("%w: %q", ErrInvalidSelectType, st)
	}

	return keyframe.WithPropertySelection(tl, next), nil
}

// descendants returns the property tracks at or beneath the given track.
func descendants(tl model.Timeline, tt model.TrackType, trackNumber int) []model.Track {
	switch tt {
	case model.TrackTypeProperty:
		if i, ok := keyframe.FindTrack(tl.Properties, trackNumber); ok {
			return []model.Track{tl.Properties[i]}
		}
		return nil
	case model.TrackTypeBone:
		return keyframe.ChildrenOf(tl.Properties, trackNumber)
	case model.TrackTypeLayer:
		var out []model.Track
		for _, b := range keyframe.ChildrenOf(tl.Bones, trackNumber) {
			out = append(out, keyframe.ChildrenOf(tl.Properties, b.Identifier.TrackNumber)...)
		}
		return out
	default:
		return nil
	}
}

// siblings returns the track numbers sharing the clicked track's parent, itself included.
func siblings(tl model.Timeline, tt model.TrackType, trackNumber int) []int {
	tracks := tl.TracksOf(tt)
	i, ok := keyframe.FindTrack(tracks, trackNumber)
	if !ok {
		return nil
	}
	parent := tracks[i].Identifier.ParentTrackNumber
	var out []int
	for _, t := range keyframe.ChildrenOf(tracks, parent) {
		out = append(out, t.Identifier.TrackNumber)
	}
	return out
}

func eventsAt(props []model.Track, time int) []model.SelectionEvent {
	var out []model.SelectionEvent
	for _, p := range props {
		i := keyframe.Find(p.Keyframes, time)
		if i == keyframe.NotFound || p.Keyframes[i].IsDeleted {
			continue
		}
		out = append(out, model.SelectionEvent{Identifier: p.Identifier, Time: time, Value: p.Keyframes[i].Value})
	}
	return out
}

func eventsAll(props []model.Track) []model.SelectionEvent {
	var out []model.SelectionEvent
	for _, p := range props {
		for _, kf := range p.Keyframes {
			if kf.IsDeleted {
				continue
			}
			out = append(out, model.SelectionEvent{Identifier: p.Identifier, Time: kf.Time, Value: kf.Value})
		}
	}
	return out
}

func allSelected(clusters []model.SelectionCluster, evs []model.SelectionEvent) bool {
	if len(evs) == 0 {
		return false
	}
	for _, ev := range evs {
		if !keyframe.Contains(clusters, ev.Identifier.TrackNumber, ev.Time) {
			return false
		}
	}
	return true
}
