package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/ctxsync/internal/config"
	"github.com/klauern/ctxsync/internal/ui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display the effective configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "init",
				Usage: "Write the effective configuration to the project config file",
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

			if cmd.Bool("init") {
				path := config.FilePath(root)
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists at %s", path)
				}
				if err := cfg.Save(root); err != nil {
					return err
				}
				fmt.Println(ui.StatusInSync("wrote " + path))
				return nil
			}

			fmt.Println(ui.Header("Configuration"))
			fmt.Printf("%s %s\n\n", ui.Dim("# file:"), config.FilePath(root))

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}
