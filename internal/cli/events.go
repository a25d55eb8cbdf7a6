package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var (
		limit  int
		tail   bool
		entity string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the local event log",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (oldest-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, s, err := loadDB(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch {
			case entity != "":
				evs, err := s.ReadEventsForEntity(entity, limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			case tail:
				evs, err := s.ReadEventsTail(limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			default:
				evs, err := s.ReadEvents(limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": evs})
			}
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	listCmd.Flags().BoolVar(&tail, "tail", false, "Return the most recent --limit events")
	listCmd.Flags().StringVar(&entity, "entity", "", "Only events for this entity id (animation or layer id)")

	cmd.AddCommand(listCmd)
	return cmd
}
