package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const EnvPrefix = "HCAM_"

// LoadEnvFile loads path into the process environment without overriding
// variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides the configuration with the HCAM_* variables. It runs before
// flags are registered so flags keep the last word.
func ApplyEnv(cfg *Configuration) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("LOG_FORMAT", &cfg.LogFormat)
	str("LOG_LEVEL", &cfg.LogLevel)

	str("SERVER_MODE", &cfg.Server.ServerMode)
	str("LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	num("HTTP_PORT", &cfg.Server.HTTPPort)

	str("DATA_FOLDER", &cfg.Agent.DataFolder)
	num("NUM_WORKERS", &cfg.Agent.NumWorkers)
	dur("WATCH_INTERVAL", &cfg.Agent.WatchInterval)

	str("CAMERA_ADDRESS", &cfg.Camera.Address)
	dur("CAMERA_REQUEST_TIMEOUT", &cfg.Camera.RequestTimeout)
	dur("CAMERA_POLL_INTERVAL", &cfg.Camera.PollInterval)
	dur("CAMERA_SAVE_TIMEOUT", &cfg.Camera.SaveTimeout)

	return errors.Join(errs...)
}
