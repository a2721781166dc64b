package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/babushkian/OTBot/bot"
	"github.com/urfave/cli/v2"
)

// RunCommand returns the CLI command that starts the bot
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Start the bot and, when configured, the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return bot.Start(ctx, cfg)
		},
	}
}
