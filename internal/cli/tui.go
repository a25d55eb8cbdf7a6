package cli

import (
	"context"
	"time"

	"motionline/internal/remote"
	"motionline/internal/tui"

	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, app *App) error {
	db, s, err := loadDB(app)
	if err != nil {
		return writeErr(cmd, err)
	}

	opts := tui.Options{
		Store:    s,
		DB:       db,
		Debounce: app.cfg.SyncDebounce,
		Glyphs:   app.cfg.Glyphs,
		Logger:   app.log,
	}
	if app.global != nil && app.global.TUI != nil {
		opts.FrameWidth = app.global.TUI.FrameWidth
	}
	if app.cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		pub, err := remote.NewRedisPublisher(ctx, app.cfg.RedisURL)
		cancel()
		if err != nil {
			app.log.Warn().Err(err).Msg("redis unavailable; edits will not be published")
		} else {
			defer pub.Close()
			opts.Publisher = pub
		}
	}
	return tui.Run(opts)
}
