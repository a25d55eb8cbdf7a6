package keyframe

import (
	"sort"

	"motionline/internal/model"
)

// Initialize builds selection clusters from flat events. Clusters are ordered by track
// number and each cluster's keyframes by time; a repeated (track, time) keeps the last value.
func Initialize(events []model.SelectionEvent) []model.SelectionCluster {
	return AddTimes(nil, events)
}

// AddTimes merges events into a copy of clusters.
func AddTimes(clusters []model.SelectionCluster, events []model.SelectionEvent) []model.SelectionCluster {
	out := cloneClusters(clusters)
	for _, ev := range events {
		ci := findCluster(out, ev.Identifier.TrackNumber)
		if ci == NotFound {
			out = append(out, model.SelectionCluster{Identifier: ev.Identifier})
			ci = len(out) - 1
		}
		c := &out[ci]
		ki := sort.Search(len(c.Keyframes), func(i int) bool { return c.Keyframes[i].Time >= ev.Time })
		if ki < len(c.Keyframes) && c.Keyframes[ki].Time == ev.Time {
			c.Keyframes[ki].Value = ev.Value
			continue
		}
		c.Keyframes = append(c.Keyframes, model.ClusterKeyframe{})
		copy(c.Keyframes[ki+1:], c.Keyframes[ki:])
		c.Keyframes[ki] = model.ClusterKeyframe{Time: ev.Time, Value: ev.Value}
	}
	sortClusters(out)
	return out
}

// FilterOutTimes removes the given (track, time) entries from a copy of clusters.
// Clusters left without keyframes are dropped.
func FilterOutTimes(clusters []model.SelectionCluster, events []model.SelectionEvent) []model.SelectionCluster {
	drop := map[int]map[int]bool{}
	for _, ev := range events {
		n := ev.Identifier.TrackNumber
		if drop[n] == nil {
			drop[n] = map[int]bool{}
		}
		drop[n][ev.Time] = true
	}

	out := make([]model.SelectionCluster, 0, len(clusters))
	for _, c := range clusters {
		times := drop[c.Identifier.TrackNumber]
		kept := make([]model.ClusterKeyframe, 0, len(c.Keyframes))
		for _, k := range c.Keyframes {
			if times[k.Time] {
				continue
			}
			kept = append(kept, k)
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, model.SelectionCluster{Identifier: c.Identifier, Keyframes: kept})
	}
	return out
}

// ShiftTimes adds delta to every selected time. No existence checks are made.
func ShiftTimes(clusters []model.SelectionCluster, delta int) []model.SelectionCluster {
	out := cloneClusters(clusters)
	for i := range out {
		for j := range out[i].Keyframes {
			out[i].Keyframes[j].Time += delta
		}
	}
	return out
}

// Events flattens clusters back into (track, time, value) events.
func Events(clusters []model.SelectionCluster) []model.SelectionEvent {
	var out []model.SelectionEvent
	for _, c := range clusters {
		for _, k := range c.Keyframes {
			out = append(out, model.SelectionEvent{Identifier: c.Identifier, Time: k.Time, Value: k.Value})
		}
	}
	return out
}

// Contains reports whether (trackNumber, time) is selected.
func Contains(clusters []model.SelectionCluster, trackNumber, time int) bool {
	ci := findCluster(clusters, trackNumber)
	if ci == NotFound {
		return false
	}
	ks := clusters[ci].Keyframes
	i := sort.Search(len(ks), func(i int) bool { return ks[i].Time >= time })
	return i < len(ks) && ks[i].Time == time
}

// SelectedTimes returns the selected times of one track, ascending.
func SelectedTimes(clusters []model.SelectionCluster, trackNumber int) []int {
	ci := findCluster(clusters, trackNumber)
	if ci == NotFound {
		return nil
	}
	out := make([]int, 0, len(clusters[ci].Keyframes))
	for _, k := range clusters[ci].Keyframes {
		out = append(out, k.Time)
	}
	return out
}

// Count returns the number of selected keyframes across all clusters.
func Count(clusters []model.SelectionCluster) int {
	n := 0
	for _, c := range clusters {
		n += len(c.Keyframes)
	}
	return n
}

func findCluster(clusters []model.SelectionCluster, trackNumber int) int {
	for i := range clusters {
		if clusters[i].Identifier.TrackNumber == trackNumber {
			return i
		}
	}
	return NotFound
}

func cloneClusters(clusters []model.SelectionCluster) []model.SelectionCluster {
	out := make([]model.SelectionCluster, len(clusters))
	for i, c := range clusters {
		ks := make([]model.ClusterKeyframe, len(c.Keyframes))
		copy(ks, c.Keyframes)
		out[i] = model.SelectionCluster{Identifier: c.Identifier, Keyframes: ks}
	}
	return out
}

func sortClusters(clusters []model.SelectionCluster) {
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Identifier.TrackNumber < clusters[j].Identifier.TrackNumber
	})
}
