package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"motionline/internal/config"
	"motionline/internal/format"
	"motionline/internal/logging"
	"motionline/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string

	cfg    config.Config
	global *store.GlobalConfig
	log    zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "motionline",
		Short:        "motionline: keyframe timeline editor (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive timeline
  motionline

  # Import an animation and shift the selected keyframes
  motionline import walk.json
  motionline select horizontal --track-id hips.position
  motionline shift --delta 6

  # Direct track lookup (shortcut for: motionline tracks show hips.position)
  motionline @hips.position
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve(cmd.ErrOrStderr())
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Path to the .motionline workspace dir (default: MOTIONLINE_DIR, config.yaml, then discovery from cwd)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (json|edn|yaml)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newLayersCmd(app))
	cmd.AddCommand(newTracksCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newSelectionCmd(app))
	cmd.AddCommand(newShiftCmd(app))
	cmd.AddCommand(newCheckCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// resolve applies flag > env > config.yaml > default for every setting.
func (app *App) resolve(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	global, err := store.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config.yaml: %w", err)
	}

	if app.Format != "" {
		cfg.Format = strings.ToLower(strings.TrimSpace(app.Format))
	}
	if app.Dir != "" {
		cfg.Dir = app.Dir
	}
	if cfg.Dir == "" {
		cfg.Dir = strings.TrimSpace(global.CurrentWorkspace)
	}
	if global.TUI != nil && cfg.Glyphs == "" {
		cfg.Glyphs = global.TUI.Glyphs
	}
	if global.Remote != nil {
		if cfg.RedisURL == "" {
			cfg.RedisURL = global.Remote.RedisURL
		}
		if cfg.SyncDebounce == 0 && global.Remote.Debounce != "" {
			d, err := time.ParseDuration(global.Remote.Debounce)
			if err != nil {
				return fmt.Errorf("config.yaml remote.debounce: %w", err)
			}
			cfg.SyncDebounce = d
		}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}, stderr)
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.global = global
	app.log = log
	app.Format = cfg.Format
	app.Dir = cfg.Dir
	return nil
}

func loadDB(app *App) (*store.DB, store.Store, error) {
	dir := app.Dir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}

	s := store.Store{Dir: dir}
	db, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return db, s, nil
}

// loadAnimationDB is loadDB for commands that need an imported animation.
func loadAnimationDB(app *App) (*store.DB, store.Store, error) {
	db, s, err := loadDB(app)
	if err != nil {
		return nil, s, err
	}
	if !db.HasAnimation() {
		return nil, s, errNoAnimation
	}
	if strings.TrimSpace(db.ActiveLayerID) == "" || len(db.Timeline.Layers) == 0 {
		return nil, s, errNoActiveLayer
	}
	return db, s, nil
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// recordEvent appends to the workspace event log. Failures are logged, not returned:
// the snapshot is already saved.
func recordEvent(app *App, s store.Store, typ, entityID string, payload any) {
	if err := s.AppendEvent(typ, entityID, payload); err != nil {
		app.log.Warn().Err(err).Str("type", typ).Msg("append event failed")
	}
}
