package cmd

import (
	"github.com/babushkian/OTBot/config"
	"github.com/babushkian/OTBot/logging"
	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// loadConfig reads the configuration named by the global --config flag and sets up logging.
func loadConfig(c *cli.Context) (*model.Config, error) {
	if err := config.LoadConfig(c.String("config")); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	logging.Setup(config.Cfg.Log)
	return &config.Cfg, nil
}
