package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/ui"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Report which tool contexts drifted since the last sync",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the status report as JSON",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}

			o := newOrchestrator()
			status, err := o.CheckSyncStatus(root)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}

			fmt.Println(ui.Header("Sync Status"))
			if status.LastSync != nil {
				fmt.Printf("  Last sync: %s\n", status.LastSync.Local().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Println("  Last sync: never")
			}
			fmt.Println()

			// Registry order keeps the report stable across runs.
			for _, a := range o.Registry().All() {
				ts := status.Tools[a.Name()]
				label := fmt.Sprintf("%-14s", a.DisplayName())
				switch {
				case !ts.Exists:
					fmt.Printf("  %s\n", ui.StatusMissing(label+" not generated"))
				case ts.HasChanges:
					fmt.Printf("  %s\n", ui.StatusDrift(label+" modified since last sync"))
				default:
					fmt.Printf("  %s\n", ui.StatusInSync(label+" in sync"))
				}
			}

			fmt.Println()
			if status.InSync {
				fmt.Println(ui.StatusInSync("all tool contexts are in sync"))
			} else {
				fmt.Println(ui.StatusDrift(fmt.Sprintf("%d tool(s) drifted; run 'ctxsync resolve' or 'ctxsync regenerate'", len(status.Changed))))
			}
			return nil
		},
	}
}
