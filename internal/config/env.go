package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvDataDir   = "SAILSIM_DATA_DIR"
	EnvLogLevel  = "SAILSIM_LOG_LEVEL"
	EnvWindSpeed = "SAILSIM_WIND_SPEED"
)

// LoadEnv reads dotenv files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays SAILSIM_* variables on the config.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWindSpeed); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Wind.Speed = speed
	}
	return nil
}
