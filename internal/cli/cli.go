// Package cli provides the command-line interface for ctxsync.
package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/ctxsync/internal/adapter"
	"github.com/klauern/ctxsync/internal/logging"
	"github.com/klauern/ctxsync/internal/state"
	ctxsync "github.com/klauern/ctxsync/internal/sync"
	"github.com/klauern/ctxsync/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	app := &cli.Command{
		Name:    "ctxsync",
		Usage:   "Keep AI tool context files in sync with your codebase",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"C"},
				Value:   ".",
				Usage:   "Project root directory",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			statusCommand(),
			regenerateCommand(),
			resolveCommand(),
			historyCommand(),
			backupsCommand(),
			watchCommand(),
			configCommand(),
			versionCommand(),
		},
	}
	return app.Run(ctx, args)
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	} else {
		opts.Level = slog.LevelWarn
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// projectRoot resolves the --root flag to an absolute path.
func projectRoot(cmd *cli.Command) (string, error) {
	return filepath.Abs(cmd.String("root"))
}

// newOrchestrator builds the orchestrator over the default tool registry.
func newOrchestrator() *ctxsync.Orchestrator {
	return ctxsync.NewOrchestrator(adapter.DefaultRegistry(), state.NewStore(), nil)
}
