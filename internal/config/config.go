package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	portEnv     = "PORT"
	logLevelEnv = "LOG_LEVEL"
	envFileEnv  = "ENV_FILE"

	defaultPort    = "8080"
	defaultEnvFile = ".env"
)

type Config struct {
	Port     string
	LogLevel string
	Redis    *RedisConfig
	Database *DatabaseConfig
	Dispatch *DispatchConfig
	Notifier *NotifierConfig
}

// Load reads the configuration from the environment. A .env file (or the
// file named by ENV_FILE) is loaded first when present; variables already
// set in the environment win.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	port := os.Getenv(portEnv)
	if port == "" {
		port = defaultPort
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	dispatchConfig, err := LoadDispatchConfig()
	if err != nil {
		return nil, err
	}

	notifierConfig, err := LoadNotifierConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     port,
		LogLevel: os.Getenv(logLevelEnv),
		Redis:    redisConfig,
		Database: LoadDatabaseConfig(),
		Dispatch: dispatchConfig,
		Notifier: notifierConfig,
	}, nil
}

func loadEnvFile() error {
	path := os.Getenv(envFileEnv)
	if path == "" {
		path = defaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	slog.Info("loaded environment file", slog.String("path", path))
	return nil
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &EnvError{Key: key, Value: raw, Err: err}
	}

	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &EnvError{Key: key, Value: raw, Err: err}
	}

	return v, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &EnvError{Key: key, Value: raw, Err: err}
	}

	return v, nil
}
