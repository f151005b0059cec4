package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/backup"
	"github.com/klauern/ctxsync/internal/ui"
)

func backupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "backups",
		Usage: "Manage pre-propagation snapshots of tool context files",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List available snapshots, newest first",
				Action: func(_ context.Context, cmd *cli.Command) error {
					root, err := projectRoot(cmd)
					if err != nil {
						return err
					}
					snaps, err := backup.List(root)
					if err != nil {
						return err
					}
					if len(snaps) == 0 {
						fmt.Println("No snapshots found")
						return nil
					}

					fmt.Println(ui.Header("Snapshots"))
					for _, s := range snaps {
						fmt.Printf("  %s  %s  %d file(s)  %s\n",
							ui.Bold(s.ID),
							s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
							len(s.Files),
							ui.Dim(s.Reason),
						)
					}
					return nil
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore a snapshot's files into the project",
				UsageText: "ctxsync backups restore <snapshot-id>",
				Action: func(_ context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return errors.New("restore requires exactly 1 argument: <snapshot-id>")
					}
					root, err := projectRoot(cmd)
					if err != nil {
						return err
					}
					snap, err := backup.Restore(root, cmd.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(ui.StatusInSync(fmt.Sprintf("restored %d file(s) from %s", len(snap.Files), snap.ID)))
					fmt.Println(ui.Dim("restored files now count as drift; run 'ctxsync status' to review"))
					return nil
				},
			},
			{
				Name:  "prune",
				Usage: "Delete old snapshots beyond the retention limit",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "keep",
						Value: backup.DefaultKeep,
						Usage: "Number of snapshots to retain",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					root, err := projectRoot(cmd)
					if err != nil {
						return err
					}
					removed, err := backup.Prune(root, int(cmd.Int("keep")))
					if err != nil {
						return err
					}
					if len(removed) == 0 {
						fmt.Println("Nothing to prune")
						return nil
					}
					for _, id := range removed {
						fmt.Printf("  %s\n", ui.StatusMissing("removed "+id))
					}
					return nil
				},
			},
		},
	}
}
