package cli

import (
	"os"
	"strings"

	"motionline/internal/animation"
	"motionline/internal/model"
	"motionline/internal/store"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var layerID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an animation document (replaces the current one)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := animation.Load(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			if strings.TrimSpace(layerID) == "" {
				layerID = a.DefaultLayerID()
			}
			db.Animation = &a
			db.ActiveLayerID = ""
			db.Timeline = emptyTimeline()
			if layerID != "" {
				tl, err := animation.BuildTimeline(a, layerID)
				if err != nil {
					return writeErr(cmd, err)
				}
				db.ActiveLayerID = layerID
				db.Timeline = tl
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			recordEvent(app, s, eventAnimationImport, a.ID, map[string]any{"file": args[0], "layers": len(a.Layers)})

			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"animationId":   a.ID,
				"name":          a.Name,
				"fps":           a.FPS,
				"layers":        len(a.Layers),
				"activeLayerId": db.ActiveLayerID,
				"properties":    len(db.Timeline.Properties),
			}})
		},
	}
	cmd.Flags().StringVar(&layerID, "layer", "", "Layer to make resident (default: first layer)")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the animation document with committed edits folded in",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := currentAnimation(db)
			if err != nil {
				return writeErr(cmd, err)
			}

			if out == "" {
				return writeOut(cmd, app, map[string]any{"data": a})
			}
			b, err := animation.Export(a)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := os.WriteFile(out, append(b, '\n'), 0o644); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": out, "bytes": len(b) + 1}})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the animation JSON to a file instead of the envelope")
	return cmd
}

func emptyTimeline() model.Timeline {
	return model.Timeline{
		Layers:             []model.Track{},
		Bones:              []model.Track{},
		Properties:         []model.Track{},
		SelectedLayers:     []model.SelectionCluster{},
		SelectedBones:      []model.SelectionCluster{},
		SelectedProperties: []model.SelectionCluster{},
	}
}

// currentAnimation returns the stored document with the resident layer's edits folded in.
func currentAnimation(db *store.DB) (animation.Animation, error) {
	if !db.HasAnimation() {
		return animation.Animation{}, errNoAnimation
	}
	if len(db.Timeline.Layers) == 0 {
		return *db.Animation, nil
	}
	return animation.WriteBack(*db.Animation, db.Timeline)
}

func newLayersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layers",
		Short: "List layers and switch the resident layer",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !db.HasAnimation() {
				return writeErr(cmd, errNoAnimation)
			}
			out := make([]map[string]any, 0, len(db.Animation.Layers))
			for _, l := range db.Animation.Layers {
				props := 0
				for _, b := range l.Bones {
					props += len(b.Properties)
				}
				out = append(out, map[string]any{
					"id":         l.ID,
					"name":       l.Name,
					"bones":      len(l.Bones),
					"properties": props,
					"active":     l.ID == db.ActiveLayerID,
				})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	useCmd := &cobra.Command{
		Use:   "use <layer-id>",
		Short: "Make a layer resident (folds the current layer's edits back first)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			a, err := currentAnimation(db)
			if err != nil {
				return writeErr(cmd, err)
			}
			tl, err := animation.BuildTimeline(a, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			prev := db.ActiveLayerID
			db.Animation = &a
			db.ActiveLayerID = args[0]
			db.Timeline = tl
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			recordEvent(app, s, eventLayerUse, a.ID, map[string]any{"from": prev, "to": args[0]})

			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"activeLayerId": args[0],
				"bones":         len(tl.Bones),
				"properties":    len(tl.Properties),
			}})
		},
	}

	cmd.AddCommand(listCmd, useCmd)
	return cmd
}
