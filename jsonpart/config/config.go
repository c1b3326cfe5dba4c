package config

import (
	"fmt"
	"strings"

	internal "github.com/MajidSas/json-parser-spark/jsonpart"

	"github.com/spf13/viper"
)

// Config stores all configuration of the partitioning engine.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Filepath          string `mapstructure:"filepath"`
	Recursive         bool   `mapstructure:"recursive"`
	PathGlobFilter    string `mapstructure:"pathGlobFilter"`
	HDFSPath          string `mapstructure:"hdfsPath"`
	Encoding          string `mapstructure:"encoding"`
	Parallelism       int    `mapstructure:"parallelism"`
	MinPartitionBytes int64  `mapstructure:"minPartitionBytes"`
	MaxPartitionBytes int64  `mapstructure:"maxPartitionBytes"`
	Speculation       bool   `mapstructure:"speculation"`
	StatsSampleBytes  int64  `mapstructure:"statsSampleBytes"`
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Set default values
	viper.SetDefault("recursive", false)
	viper.SetDefault("pathGlobFilter", "")
	viper.SetDefault("hdfsPath", "")
	viper.SetDefault("encoding", internal.DefaultEncoding)
	viper.SetDefault("parallelism", internal.DefaultParallelism)
	viper.SetDefault("minPartitionBytes", internal.DefaultMinPartitionBytes)
	viper.SetDefault("maxPartitionBytes", internal.DefaultMaxPartitionBytes)
	viper.SetDefault("speculation", false)
	viper.SetDefault("statsSampleBytes", internal.DefaultStatsSampleBytes)

	viper.AutomaticEnv()                                   // Read in environment variables that match
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // e.g. minPartitionBytes becomes MINPARTITIONBYTES

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; defaults will be used.
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
