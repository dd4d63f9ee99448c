package cmd

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/stagehand/internal/event"
)

var eventsCmd = &cobra.Command{
	Use:   "events [pattern]",
	Short: "List the event types published on the bus",
	Long: `List every event type with its payload fields.

An optional glob filters the listing the same way trace patterns do,
e.g. 'scene.*' or 'view.*_view'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	var match glob.Glob
	if len(args) == 1 {
		g, err := glob.Compile(args[0], '.')
		if err != nil {
			return fmt.Errorf("invalid pattern %q: %w", args[0], err)
		}
		match = g
	}

	out := cmd.OutOrStdout()
	shown := 0
	for _, d := range event.Catalog() {
		if match != nil && !match.Match(d.Type) {
			continue
		}
		fields := d.Fields
		if fields == "" {
			fields = "-"
		}
		fmt.Fprintf(out, "%-26s %-22s %s\n", d.Type, d.Name, d.Summary)
		fmt.Fprintf(out, "%-26s fields: %s\n", "", fields)
		shown++
	}

	if shown == 0 {
		fmt.Fprintln(out, "No matching event types.")
	}
	return nil
}
