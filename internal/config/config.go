package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// SchedulerConfig defines the organization timezone and the cron spec of the
// daily assignment sweep. Every "is this date past" decision in the system
// uses this timezone, never the server clock's zone.
type SchedulerConfig struct {
	Timezone      string `mapstructure:"timezone"`
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Env overrides, e.g. server.address -> SERVER_ADDRESS
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "hyperkids")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("scheduler.timezone", "UTC")
	// robfig/cron spec with seconds field: 03:10 every day.
	viper.SetDefault("scheduler.sweep_schedule", "0 10 3 * * *")

	err = viper.ReadInConfig()
	// Config file is optional; env vars and defaults may be enough.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}
