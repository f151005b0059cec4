package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/state"
	"github.com/klauern/ctxsync/internal/ui"
)

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past synchronization runs, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "Maximum number of entries to show (0 for all)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit history as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			st := state.NewStore().Load(root)
			if st == nil || len(st.SyncHistory) == 0 {
				fmt.Println("No sync history recorded")
				return nil
			}

			// Newest first.
			entries := make([]state.HistoryEntry, len(st.SyncHistory))
			for i, e := range st.SyncHistory {
				entries[len(st.SyncHistory)-1-i] = e
			}
			if limit := int(cmd.Int("limit")); limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Println(ui.Header("Sync History"))
			for _, e := range entries {
				line := fmt.Sprintf("%s  %-14s %-15s %d propagated",
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					e.Source,
					e.Strategy,
					e.PropagatedCount,
				)
				if e.ErrorCount > 0 {
					fmt.Printf("  %s\n", ui.StatusError(fmt.Sprintf("%s, %d failed", line, e.ErrorCount)))
				} else {
					fmt.Printf("  %s\n", ui.StatusInSync(line))
				}
			}
			return nil
		},
	}
}
