package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/babushkian/OTBot/cmd"
)

const (
	version = "0.1.0"
)

func main() {
	app := &cli.App{
		Name:    "otbot",
		Usage:   "Safety violation reporting bot for Discord",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"OTBOT_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			cmd.RunCommand(),
			cmd.MigrateCommand(),
			cmd.ReportCommand(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
