package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/model"
	"github.com/klauern/ctxsync/internal/progress"
	"github.com/klauern/ctxsync/internal/ui"
)

func regenerateCommand() *cli.Command {
	return &cli.Command{
		Name:    "regenerate",
		Aliases: []string{"regen"},
		Usage:   "Regenerate every tool's context files from the codebase",
		Action: func(_ context.Context, cmd *cli.Command) error {
			root, err := projectRoot(cmd)
			if err != nil {
				return err
			}
			cfg, err := config.Load(root)
			if err != nil {
				return err
			}

			o := newOrchestrator()
			bar := progress.ForTools(len(o.Registry().All()), "Generating context files")
			o.OnAdapterDone = func(tool model.Tool, _ error) {
				bar.Describe(fmt.Sprintf("Generated %s", tool))
				_ = bar.Add(1)
			}

			result, err := o.SyncAllFromCodebase(root, cfg)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			for _, p := range result.Propagated {
				for _, f := range p.Files {
					fmt.Printf("  %s\n", ui.StatusInSync(fmt.Sprintf("%-14s %s", p.Tool, f)))
				}
			}
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", ui.StatusError(fmt.Sprintf("%-14s %s", e.Tool, e.Message)))
			}

			fmt.Println()
			if !result.Success() {
				return fmt.Errorf("%d generator(s) failed", len(result.Errors))
			}
			fmt.Println(ui.StatusInSync(fmt.Sprintf("regenerated %d tool context(s)", len(result.Propagated))))
			return nil
		},
	}
}
