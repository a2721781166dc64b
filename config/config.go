package config

import (
	"strings"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/spf13/viper"
)

// Cfg is the process-wide configuration, filled by LoadConfig.
var Cfg model.Config

// LoadConfig reads config.yaml from the working directory (or path, when given) into Cfg.
func LoadConfig(path string) (err error) {
	cfg, err := Load(path)
	if err != nil {
		return
	}
	Cfg = *cfg
	return
}

// Load reads the configuration without touching Cfg.
func Load(path string) (*model.Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("OTBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("token", "")
	v.SetDefault("storage.db_path", "./data/otbot.db")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("state.backend", "sqlite")
	v.SetDefault("state.redis_addr", "localhost:6379")
	v.SetDefault("state.redis_db", 0)
	v.SetDefault("state.ttl", 24*time.Hour)
	v.SetDefault("intake.quiet_period", 500*time.Millisecond)
	v.SetDefault("intake.max_photos", 4)
	v.SetDefault("intake.allow_empty_actions", false)
	v.SetDefault("intake.catalog_file", "")
	v.SetDefault("review.audience_channel_id", "")
	v.SetDefault("layout.target_ratio", 1.9)
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("http.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}
