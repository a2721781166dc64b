package cmd

import (
	"github.com/babushkian/OTBot/bot"
	"github.com/babushkian/OTBot/db"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// MigrateCommand returns the CLI command that prepares the database
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the database tables and seed the configured locations",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := bot.SeedLocations(c.Context, db.NewLocationRepository(conn), cfg.Locations); err != nil {
				return err
			}
			log.Info().Str("path", cfg.Storage.DBPath).Msg("database is up to date")
			return nil
		},
	}
}
