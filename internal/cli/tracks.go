package cli

import (
	"context"
	"fmt"
	"strings"

	"motionline/internal/keyframe"
	"motionline/internal/model"
	"motionline/internal/remote"
	"motionline/internal/selection"
	"motionline/internal/session"

	"github.com/spf13/cobra"
)

var levels = []model.TrackType{model.TrackTypeLayer, model.TrackTypeBone, model.TrackTypeProperty}

func parseLevel(s string) (model.TrackType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "layer", "layers":
		return model.TrackTypeLayer, nil
	case "bone", "bones":
		return model.TrackTypeBone, nil
	case "", "property", "properties", "prop":
		return model.TrackTypeProperty, nil
	default:
		return "", fmt.Errorf("invalid --level: %q (expected layer|bone|property)", s)
	}
}

// resolveTrack finds a track by id, searching the deepest level first unless level is set.
func resolveTrack(tl model.Timeline, level, trackID string) (model.Track, error) {
	search := []model.TrackType{model.TrackTypeProperty, model.TrackTypeBone, model.TrackTypeLayer}
	if strings.TrimSpace(level) != "" {
		lvl, err := parseLevel(level)
		if err != nil {
			return model.Track{}, err
		}
		search = []model.TrackType{lvl}
	}
	for _, lvl := range search {
		tracks := tl.TracksOf(lvl)
		if i, ok := keyframe.FindTrackByID(tracks, trackID); ok {
			return tracks[i], nil
		}
	}
	return model.Track{}, errNotFound("track", trackID)
}

func trackSummary(t model.Track) map[string]any {
	return map[string]any{
		"trackNumber":       t.Identifier.TrackNumber,
		"trackId":           t.Identifier.TrackID,
		"trackType":         t.Identifier.TrackType,
		"parentTrackNumber": t.Identifier.ParentTrackNumber,
		"propertyKind":      t.Identifier.PropertyKind,
		"times":             keyframe.LiveTimes(t.Keyframes),
	}
}

func newTracksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Inspect the resident layer's tracks",
	}

	var level string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks of one level (or all levels)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			want := levels
			if strings.TrimSpace(level) != "" && level != "all" {
				lvl, err := parseLevel(level)
				if err != nil {
					return writeErr(cmd, err)
				}
				want = []model.TrackType{lvl}
			}
			out := []map[string]any{}
			for _, lvl := range want {
				for _, t := range db.Timeline.TracksOf(lvl) {
					out = append(out, trackSummary(t))
				}
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	listCmd.Flags().StringVar(&level, "level", "all", "Track level (layer|bone|property|all)")

	var showLevel string
	showCmd := &cobra.Command{
		Use:   "show <track-id>",
		Short: "Show one track with its keyframes and selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := resolveTrack(db.Timeline, showLevel, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			sel := keyframe.SelectedTimes(db.Timeline.SelectionOf(t.Identifier.TrackType), t.Identifier.TrackNumber)
			if sel == nil {
				sel = []int{}
			}
			children := []map[string]any{}
			switch t.Identifier.TrackType {
			case model.TrackTypeLayer:
				for _, c := range keyframe.ChildrenOf(db.Timeline.Bones, t.Identifier.TrackNumber) {
					children = append(children, trackSummary(c))
				}
			case model.TrackTypeBone:
				for _, c := range keyframe.ChildrenOf(db.Timeline.Properties, t.Identifier.TrackNumber) {
					children = append(children, trackSummary(c))
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"identifier": t.Identifier,
				"keyframes":  t.Keyframes,
				"selected":   sel,
				"children":   children,
			}})
		},
	}
	showCmd.Flags().StringVar(&showLevel, "level", "", "Restrict lookup to one level (layer|bone|property)")

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func newSelectCmd(app *App) *cobra.Command {
	var (
		level   string
		track   int
		trackID string
		at      int
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "select <left|multiple|horizontal|vertical|selectAll|unselectAll>",
		Short: "Apply a selection gesture to the resident timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := selection.ParseSelectType(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			db, s, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			target := selection.Target{Time: at, AllTracks: all}
			switch {
			case all:
			case strings.TrimSpace(trackID) != "":
				t, err := resolveTrack(db.Timeline, level, trackID)
				if err != nil {
					return writeErr(cmd, err)
				}
				target.TrackType = t.Identifier.TrackType
				target.TrackNumber = t.Identifier.TrackNumber
			case cmd.Flags().Changed("track"):
				lvl, err := parseLevel(level)
				if err != nil {
					return writeErr(cmd, err)
				}
				target.TrackType = lvl
				target.TrackNumber = track
			default:
				return writeErr(cmd, fmt.Errorf("missing target: pass --track-id, --track or --all"))
			}

			tl, err := selection.SelectKeyframes(db.Timeline, st, target)
			if err != nil {
				return writeErr(cmd, err)
			}
			db.Timeline = tl
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			recordEvent(app, s, eventSelectionSet, db.ActiveLayerID, map[string]any{
				"mode":        string(st),
				"trackType":   string(target.TrackType),
				"trackNumber": target.TrackNumber,
				"time":        at,
				"all":         all,
			})
			return writeOut(cmd, app, map[string]any{"data": selectionSummary(tl)})
		},
	}
	cmd.Flags().StringVar(&level, "level", "", "Track level of the target (layer|bone|property)")
	cmd.Flags().IntVar(&track, "track", 0, "Target track number within --level")
	cmd.Flags().StringVar(&trackID, "track-id", "", "Target track id (e.g. hips or hips.position)")
	cmd.Flags().IntVar(&at, "time", 0, "Target time (frames)")
	cmd.Flags().BoolVar(&all, "all", false, "Apply selectAll/unselectAll to every track")
	return cmd
}

func selectionSummary(tl model.Timeline) map[string]any {
	nonNil := func(xs []model.SelectionCluster) []model.SelectionCluster {
		if xs == nil {
			return []model.SelectionCluster{}
		}
		return xs
	}
	return map[string]any{
		"count":      keyframe.Count(tl.SelectedProperties),
		"layers":     nonNil(tl.SelectedLayers),
		"bones":      nonNil(tl.SelectedBones),
		"properties": nonNil(tl.SelectedProperties),
	}
}

func newSelectionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selection",
		Short: "Inspect the current selection",
	}
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show selection clusters for every level",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": selectionSummary(db.Timeline)})
		},
	}
	cmd.AddCommand(showCmd)
	return cmd
}

func newShiftCmd(app *App) *cobra.Command {
	var (
		delta  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Move the selected keyframes by --delta frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delta") {
				return writeErr(cmd, fmt.Errorf("missing --delta"))
			}
			db, s, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if dryRun {
				res := keyframe.Commit(db.Timeline, delta)
				return writeOut(cmd, app, map[string]any{"data": shiftSummary(delta, res, true)})
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			opts := session.Options{AnimationID: db.Animation.ID, Logger: app.log}
			if app.cfg.RedisURL != "" {
				pub, err := remote.NewRedisPublisher(ctx, app.cfg.RedisURL)
				if err != nil {
					app.log.Warn().Err(err).Msg("redis unavailable; shift not published")
				} else {
					defer pub.Close()
					opts.Publisher = pub
				}
			}

			ed := session.New(db.Timeline, opts)
			res, err := ed.Shift(ctx, delta)
			if err != nil {
				return writeErr(cmd, err)
			}
			db.Timeline = ed.Timeline()
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			if delta != 0 {
				recordEvent(app, s, eventTimelineShift, db.ActiveLayerID, map[string]any{
					"delta":   delta,
					"moved":   res.Moved,
					"skipped": len(res.Skipped),
				})
			}
			return writeOut(cmd, app, map[string]any{"data": shiftSummary(delta, res, false)})
		},
	}
	cmd.Flags().IntVar(&delta, "delta", 0, "Frames to move the selection by (may be negative)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would move without saving")
	return cmd
}

func shiftSummary(delta int, res keyframe.CommitResult, dryRun bool) map[string]any {
	skipped := res.Skipped
	if skipped == nil {
		skipped = []keyframe.Skipped{}
	}
	return map[string]any{
		"delta":     delta,
		"moved":     res.Moved,
		"skipped":   skipped,
		"dryRun":    dryRun,
		"selection": selectionSummary(res.Timeline),
	}
}

func newCheckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify ordering, cascade and selection invariants of the resident timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			vs := keyframe.CheckTimeline(db.Timeline)
			if vs == nil {
				vs = []keyframe.Violation{}
			}
			if err := writeOut(cmd, app, map[string]any{"data": map[string]any{"ok": len(vs) == 0, "violations": vs}}); err != nil {
				return err
			}
			if len(vs) > 0 {
				return writeErr(cmd, fmt.Errorf("%d invariant violation(s); first: %s", len(vs), vs[0]))
			}
			return nil
		},
	}
	return cmd
}
