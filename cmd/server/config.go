package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

const (
	cfgKeyPort            = "port"
	cfgKeyDB              = "db"
	cfgKeyCORSOrigins     = "cors_origins"
	cfgKeyDurationLetters = "duration_letters"

	defaultPort = 8080
	defaultDB   = "values.db"
)

// serverConfig is the process configuration after defaults, the config file
// and flags are merged.
type serverConfig struct {
	Port        int
	DB          string
	CORSOrigins []string

	// DurationLetters maps unit names ("weeks", "days", ...) to the
	// deployment's letters, e.g. {"weeks": "t"}.
	DurationLetters map[string]string
}

// loadConfig reads the YAML config file at path. An empty path or a missing
// file yields the defaults.
func loadConfig(path string) (serverConfig, error) {
	v := viper.New()
	v.SetDefault(cfgKeyPort, defaultPort)
	v.SetDefault(cfgKeyDB, defaultDB)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return serverConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := serverConfig{
		Port:            v.GetInt(cfgKeyPort),
		DB:              v.GetString(cfgKeyDB),
		CORSOrigins:     v.GetStringSlice(cfgKeyCORSOrigins),
		DurationLetters: v.GetStringMapString(cfgKeyDurationLetters),
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return serverConfig{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
