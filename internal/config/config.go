// Package config loads and validates the server's startup configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Storage backend names for the credential store
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config is the server's startup configuration.
// Port and UserDatabase are required; everything else is optional.
type Config struct {
	// Port is the TCP listen port for the game protocol (1024-65535)
	Port int
	// UserDatabase is the path to the credential store (file backend)
	UserDatabase string
	// Storage selects the credential store backend ("file" or "redis")
	Storage string
	// RedisURL is the Redis connection URL (required when Storage is "redis")
	RedisURL string
	// StatusPort, if non-zero, enables the HTTP status API on that port
	StatusPort int
}

type rawConfig struct {
	Port         *int    `json:"port"`
	UserDatabase *string `json:"userDatabase"`
	Storage      string  `json:"storage"`
	RedisURL     string  `json:"redisURL"`
	StatusPort   int     `json:"statusPort"`
}

// Load reads and validates the configuration file at path.
// All faults are reported before any socket is bound.
func Load(path string) (*Config, error) {
	expanded := ExpandHome(path)

	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s doesn't exist", path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s is not in a valid JSON format", path)
	}

	var missing []string
	if raw.Port == nil {
		missing = append(missing, "port")
	}
	if raw.UserDatabase == nil {
		missing = append(missing, "userDatabase")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s missing key(s): %s", path, strings.Join(missing, ", "))
	}

	cfg := &Config{
		Port:         *raw.Port,
		UserDatabase: ExpandHome(*raw.UserDatabase),
		Storage:      raw.Storage,
		RedisURL:     raw.RedisURL,
		StatusPort:   raw.StatusPort,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number out of range")
	}
	switch c.Storage {
	case "", StorageFile:
		c.Storage = StorageFile
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redisURL required when storage is %q", StorageRedis)
		}
	default:
		return fmt.Errorf("storage must be %q or %q", StorageFile, StorageRedis)
	}
	if c.StatusPort != 0 && (c.StatusPort < 1024 || c.StatusPort > 65535) {
		return fmt.Errorf("statusPort number out of range")
	}
	return nil
}

// ExpandHome resolves a leading ~ in a path to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
