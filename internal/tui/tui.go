// Package tui is the interactive timeline grid.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the grid and blocks until the user quits. Pending remote publishes are
// flushed before returning.
func Run(opts Options) error {
	applyColorProfilePreference()
	applyGlyphPreference(opts.Glyphs)

	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

	if m.sync != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if ferr := m.sync.Flush(ctx); ferr != nil {
			opts.Logger.Warn().Err(ferr).Msg("final publish failed")
		}
	}
	return err
}
