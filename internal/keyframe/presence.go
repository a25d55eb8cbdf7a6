package keyframe

import (
	"fmt"
	"sort"

	"motionline/internal/model"
)

// DerivePresence rebuilds parent presence markers from children as a read-time view:
// each parent gets one live marker per time any of its children is live at. Tombstones
// and selection flags on the parents are discarded.
func DerivePresence(parents, children []model.Track) []model.Track {
	out := make([]model.Track, len(parents))
	for i, p := range parents {
		set := map[int]bool{}
		for _, c := range ChildrenOf(children, p.Identifier.TrackNumber) {
			for _, t := range LiveTimes(c.Keyframes) {
				set[t] = true
			}
		}
		times := make([]int, 0, len(set))
		for t := range set {
			times = append(times, t)
		}
		sort.Ints(times)
		kfs := make([]model.Keyframe, len(times))
		for j, t := range times {
			kfs[j] = model.Keyframe{Time: t}
		}
		out[i] = model.Track{Identifier: p.Identifier, Keyframes: kfs}
	}
	return out
}

// Violation describes one broken invariant found by CheckTimeline.
type Violation struct {
	Rule      string `json:"rule"`
	TrackType string `json:"trackType"`
	TrackID   string `json:"trackId"`
	Time      int    `json:"time"`
	Message   string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %s/%s@%d: %s", v.Rule, v.TrackType, v.TrackID, v.Time, v.Message)
}

// CheckTimeline verifies ordering, cascade and selection validity over a snapshot.
// An empty result means the snapshot is consistent.
func CheckTimeline(tl model.Timeline) []Violation {
	var out []Violation
	for _, level := range [][]model.Track{tl.Layers, tl.Bones, tl.Properties} {
		for _, t := range level {
			if !IsSorted(t.Keyframes) {
				out = append(out, violation("order", t.Identifier, 0, "keyframe times are not strictly ascending"))
			}
		}
	}
	out = append(out, CheckCascade(tl.Bones, tl.Properties)...)
	out = append(out, CheckCascade(tl.Layers, tl.Bones)...)

	out = append(out, checkSelection(tl.SelectedLayers, tl.Layers)...)
	out = append(out, checkSelection(tl.SelectedBones, tl.Bones)...)
	out = append(out, checkSelection(tl.SelectedProperties, tl.Properties)...)
	return out
}

// CheckCascade reports every (parent, time) where the parent's live marker disagrees with
// its children's presence.
func CheckCascade(parents, children []model.Track) []Violation {
	var out []Violation
	for _, p := range parents {
		kids := ChildrenOf(children, p.Identifier.TrackNumber)
		times := map[int]bool{}
		for _, kf := range p.Keyframes {
			times[kf.Time] = true
		}
		for _, k := range kids {
			for _, kf := range k.Keyframes {
				times[kf.Time] = true
			}
		}
		sorted := make([]int, 0, len(times))
		for t := range times {
			sorted = append(sorted, t)
		}
		sort.Ints(sorted)

		for _, t := range sorted {
			parentLive := IsLive(p.Keyframes, t)
			childLive := AnyLive(kids, t)
			switch {
			case parentLive && !childLive:
				out = append(out, violation("cascade", p.Identifier, t, "marker is live but no child is"))
			case !parentLive && childLive:
				out = append(out, violation("cascade", p.Identifier, t, "a child is live but the marker is not"))
			}
		}
	}
	return out
}

func checkSelection(clusters []model.SelectionCluster, tracks []model.Track) []Violation {
	var out []Violation
	for _, c := range clusters {
		ti, ok := FindTrack(tracks, c.Identifier.TrackNumber)
		for _, k := range c.Keyframes {
			if !ok || !IsLive(tracks[ti].Keyframes, k.Time) {
				out = append(out, violation("selection", c.Identifier, k.Time, "selected keyframe is not live"))
			}
		}
	}
	return out
}

func violation(rule string, id model.TrackIdentifier, t int, msg string) Violation {
	return Violation{Rule: rule, TrackType: string(id.TrackType), TrackID: id.TrackID, Time: t, Message: msg}
}
