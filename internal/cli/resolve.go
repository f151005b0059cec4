package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
	ctxsync "github.com/klauern/ctxsync/internal/sync"
	"github.com/klauern/ctxsync/internal/ui"
	"github.com/klauern/ctxsync/internal/ui/tui"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve drifted tool contexts using a conflict strategy",
		Description: `Resolve a detected conflict between tool contexts.

   Strategies:
     source_wins     Propagate the preferred tool's content (requires --tool)
     regenerate_all  Regenerate every tool's context from the codebase
     newest          Use the most recently modified tool as the source
     manual          Report the conflict; interactively pick a source on a terminal`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Conflict resolution strategy",
			},
			&cli.StringFlag{
				Name:    "tool",
				Aliases: []string{"t"},
				Usage:   "Preferred source tool for source_wins",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}

			name := cmd.String("strategy")
			if name == "" {
				name = cfg.Sync.DefaultStrategy
			}
			strategy, err := ctxsync.ParseStrategy(name)
			if err != nil {
				return err
			}

			var preferred model.Tool
			if t := cmd.String("tool"); t != "" {
				preferred, err = model.ParseTool(t)
				if err != nil {
					return err
				}
			}

			o := newOrchestrator()
			res, err := o.ResolveConflict(root, cfg, strategy, preferred)
			if err != nil {
				return err
			}

			if !res.Resolved && strategy == ctxsync.StrategyManual && isTerminal(os.Stdin) {
				return resolveInteractively(o, root, cfg, res.Status)
			}

			printResolution(res)
			return nil
		},
	}
}

// resolveInteractively runs the source picker and propagates from the chosen
// tool. The picker choice turns the manual conflict into a source_wins run.
func resolveInteractively(o *ctxsync.Orchestrator, root string, cfg *config.Config, status *ctxsync.Status) error {
	choices := make([]tui.SourceChoice, 0, len(o.Registry().All()))
	for _, a := range o.Registry().All() {
		ts := status.Tools[a.Name()]
		if !ts.Exists {
			continue
		}
		choices = append(choices, tui.SourceChoice{
			Tool:        a.Name(),
			DisplayName: a.DisplayName(),
			Changed:     ts.HasChanges,
		})
	}

	picked, err := tui.RunSourcePicker(choices)
	if err != nil {
		return err
	}
	if !picked.Selected {
		fmt.Println(ui.StatusMissing("resolution cancelled, no changes made"))
		return nil
	}

	res, err := o.ResolveConflict(root, cfg, ctxsync.StrategySourceWins, picked.Source)
	if err != nil {
		return err
	}
	printResolution(res)
	return nil
}

func printResolution(res *ctxsync.Resolution) {
	if !res.Resolved {
		fmt.Println(ui.StatusDrift(res.Reason))
		if res.Status != nil {
			for _, c := range res.Status.Changed {
				fmt.Printf("  %s\n", ui.StatusDrift(fmt.Sprintf("%s modified since last sync", c.Tool)))
			}
		}
		return
	}

	if res.Result == nil {
		fmt.Println(ui.StatusInSync(res.Reason))
		return
	}

	fmt.Println(ui.StatusInSync(fmt.Sprintf("resolved with %s (source: %s)", res.Strategy, res.Source)))
	for _, p := range res.Result.Propagated {
		fmt.Printf("  %s\n", ui.StatusInSync(fmt.Sprintf("%-14s regenerated", p.Tool)))
	}
	for _, e := range res.Result.Errors {
		fmt.Printf("  %s\n", ui.StatusError(fmt.Sprintf("%-14s %s", e.Tool, e.Message)))
	}
}

// isTerminal reports whether f is attached to a character device.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
