package cli

import (
	"os"
	"path/filepath"

	"motionline/internal/keyframe"
	"motionline/internal/store"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a .motionline workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(db); err != nil {
				return writeErr(cmd, err)
			}
			wsID, err := s.WorkspaceID()
			if err != nil {
				return writeErr(cmd, err)
			}

			if use {
				abs, err := filepath.Abs(s.Dir)
				if err != nil {
					return writeErr(cmd, err)
				}
				app.global.CurrentWorkspace = abs
				if err := store.SaveConfig(app.global); err != nil {
					return writeErr(cmd, err)
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":         s.Dir,
					"sqlitePath":  s.IndexPath(),
					"workspaceId": wsID,
					"current":     use,
				},
			})
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Record this workspace as currentWorkspace in config.yaml")
	return cmd
}

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show workspace status",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			tail, err := s.ReadEventsTail(1)
			if err != nil {
				return writeErr(cmd, err)
			}
			lastEvent := ""
			if len(tail) == 1 {
				lastEvent = tail[0].Type + " " + humanize.Time(tail[0].TS)
			}
			size := ""
			if st, err := os.Stat(s.IndexPath()); err == nil {
				size = humanize.Bytes(uint64(st.Size()))
			}

			data := map[string]any{
				"dir":           s.Dir,
				"indexSize":     size,
				"lastEvent":     lastEvent,
				"activeLayerId": db.ActiveLayerID,
				"layers":        0,
				"bones":         len(db.Timeline.Bones),
				"properties":    len(db.Timeline.Properties),
				"selected":      keyframe.Count(db.Timeline.SelectedProperties),
				"remote":        app.cfg.RedisURL != "",
			}
			if db.HasAnimation() {
				data["animationId"] = db.Animation.ID
				data["animationName"] = db.Animation.Name
				data["fps"] = db.Animation.FPS
				data["layers"] = len(db.Animation.Layers)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	return cmd
}
