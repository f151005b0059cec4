package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/model"
	ctxsync "github.com/klauern/ctxsync/internal/sync"
	"github.com/klauern/ctxsync/internal/ui"
	"github.com/klauern/ctxsync/internal/watch"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch tool contexts and propagate edits automatically",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval for re-hashing watched targets",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period after the last change before syncing",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a size-rotated file instead of stderr",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}
			if d := cmd.Duration("interval"); d > 0 {
				cfg.Sync.PollInterval = d
			}
			if d := cmd.Duration("debounce"); d > 0 {
				cfg.Sync.DebounceWindow = d
			}
			if f := cmd.String("log-file"); f != "" {
				cfg.Logging.File = f
			}

			if cfg.Logging.File != "" {
				opts := logging.DefaultOptions()
				opts.JSON = true
				opts.File = logging.FileOptions{
					Path:       cfg.Logging.File,
					MaxSizeMB:  cfg.Logging.MaxSizeMB,
					MaxBackups: cfg.Logging.MaxBackups,
					MaxAgeDays: cfg.Logging.MaxAgeDays,
				}
				logging.SetDefault(logging.New(opts))
			}

			o := newOrchestrator()
			svc := watch.NewService(root, cfg, o.Registry(), o)
			svc.OnSyncStart = func(tool model.Tool) {
				fmt.Printf("%s syncing from %s...\n", timestamp(), tool)
			}
			svc.OnSyncComplete = func(tool model.Tool, result *ctxsync.PropagationResult) {
				fmt.Printf("%s %s\n", timestamp(),
					ui.StatusInSync(fmt.Sprintf("propagated %s to %d tool(s)", tool, len(result.Propagated))))
			}
			svc.OnError = func(tool model.Tool, errs []error) {
				for _, e := range errs {
					fmt.Printf("%s %s\n", timestamp(), ui.StatusError(e.Error()))
				}
			}

			svc.Start()
			defer svc.Stop()

			fmt.Printf("Watching %s for context changes (poll %s, debounce %s). Ctrl-C to stop.\n",
				root, cfg.Sync.PollInterval, cfg.Sync.DebounceWindow)

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)

			select {
			case <-ctx.Done():
			case s := <-sig:
				fmt.Printf("\nReceived %s, shutting down\n", s)
			}
			return nil
		},
	}
}

func timestamp() string {
	return ui.Dim(time.Now().Format("15:04:05"))
}
