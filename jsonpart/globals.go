package jsonpart

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultConfigPath is the default path to the config file
	DefaultAppName    = "jsonpart"
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)

	// Default partitioning settings
	DefaultParallelism       = 8
	DefaultMinPartitionBytes = int64(32 * 1024 * 1024)       // 32 MiB
	DefaultMaxPartitionBytes = int64(1 * 1024 * 1024 * 1024) // 1 GiB
	DefaultEncoding          = "utf-8"
	DefaultStatsSampleBytes  = int64(4 * 1024 * 1024)

	// Speculation anchor qualification thresholds
	DefaultAnchorMinOccurrence = uint64(1000)
	DefaultAnchorMinKeys       = 10
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "/tmp"
		}
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
