package cli

import (
	"context"
	"time"

	"motionline/internal/remote"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Publish committed keyframes to the remote store",
	}

	var timeout time.Duration
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Publish every property track of the resident layer to redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.RedisURL == "" {
				return writeErr(cmd, errNoRemote)
			}
			db, s, err := loadAnimationDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, cancel := context.WithTimeout(parent, timeout)
			defer cancel()

			pub, err := remote.NewRedisPublisher(ctx, app.cfg.RedisURL)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer pub.Close()

			p := remote.PayloadFor(db.Animation.ID, db.Timeline, nil)
			if err := pub.Publish(ctx, p); err != nil {
				return writeErr(cmd, err)
			}
			keys := make([]string, 0, len(p.Tracks))
			for _, t := range p.Tracks {
				keys = append(keys, remote.TrackKey(p.AnimationID, p.LayerID, t.TrackID))
			}
			recordEvent(app, s, eventSyncPush, db.ActiveLayerID, map[string]any{"tracks": len(p.Tracks)})

			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"animationId": p.AnimationID,
				"layerId":     p.LayerID,
				"tracks":      len(p.Tracks),
				"keys":        keys,
			}})
		},
	}
	pushCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Publish timeout")

	cmd.AddCommand(pushCmd)
	return cmd
}
