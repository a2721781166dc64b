package model

import "time"

// Config mirrors config.yaml.
type Config struct {
	Token     string         `mapstructure:"token"`
	GuildIDs  []string       `mapstructure:"guild_ids"`
	Admins    []string       `mapstructure:"admins"`
	Reporters []string       `mapstructure:"reporters"`
	Locations []Location     `mapstructure:"locations"`
	Storage   StorageConfig  `mapstructure:"storage"`
	State     StateConfig    `mapstructure:"state"`
	Intake    IntakeConfig   `mapstructure:"intake"`
	Review    ReviewConfig   `mapstructure:"review"`
	Layout    LayoutConfig   `mapstructure:"layout"`
	RabbitMQ  RabbitMQConfig `mapstructure:"rabbitmq"`
	HTTP      HTTPConfig     `mapstructure:"http"`
	Log       LogConfig      `mapstructure:"log"`
}

type StorageConfig struct {
	DBPath  string `mapstructure:"db_path"`
	DataDir string `mapstructure:"data_dir"`
}

// StateConfig selects where conversation state lives: sqlite, redis or memory.
type StateConfig struct {
	Backend   string        `mapstructure:"backend"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type IntakeConfig struct {
	QuietPeriod       time.Duration `mapstructure:"quiet_period"`
	MaxPhotos         int           `mapstructure:"max_photos"`
	AllowEmptyActions bool          `mapstructure:"allow_empty_actions"`
	CatalogFile       string        `mapstructure:"catalog_file"`
}

type ReviewConfig struct {
	AudienceChannelID string `mapstructure:"audience_channel_id"`
}

type LayoutConfig struct {
	TargetRatio float64 `mapstructure:"target_ratio"`
}

type RabbitMQConfig struct {
	URL string `mapstructure:"url"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}
