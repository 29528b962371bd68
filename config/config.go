// Package config loads the persisted configuration document described by
// spec §6: storage provider selection, world border dimensions, network
// interface listen address, and logger selection. Grounds on
// shivamshaw23-Hintro's config.Load (github.com/spf13/viper, SetDefault +
// Get* pattern) for the mechanics, and original_source/src/Config.py's
// load_config for the "unknown key is an error" semantics viper itself
// doesn't enforce.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"transitcore/typedef"
)

// StorageProviderType selects the typedef.Storage backend.
type StorageProviderType string

const (
	StorageProviderJSON StorageProviderType = "json_storage"
)

// knownKeys mirrors original_source/src/Config.py's ConfigKeys enum: the
// exhaustive set of top-level keys a config document may use.
var knownKeys = map[string]bool{
	"storage_provider_type":   true,
	"storage_provider_config": true,
	"world_border_dimensions": true,
	"network_interface":       true,
	"logger_type":             true,
	"logger_config":           true,
}

// Config is the fully-resolved, defaulted configuration.
type Config struct {
	StorageProviderType   StorageProviderType
	StorageProviderConfig map[string]any

	WorldBorder typedef.Rect

	NetworkAddress string
	NetworkPort    int

	LoggerType   string
	LoggerConfig map[string]any
}

// Load reads the JSON config document at path, if it exists, over top of
// the same defaults original_source/src/Config.py's Config.__init__ seeds
// (a JSON file, not an env/.env source, per spec §6's "config document").
// A path that doesn't exist is not an error: Load simply returns the
// defaults, matching the Python original's `if os.path.exists(path)` guard.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("storage_provider_type", string(StorageProviderJSON))
	v.SetDefault("storage_provider_config", map[string]any{"path": "./data.json"})
	v.SetDefault("world_border_dimensions", map[string]any{
		"min_x": -10_000_000,
		"max_x": 10_000_000,
		"min_y": -10_000_000,
		"max_y": 10_000_000,
	})
	v.SetDefault("network_interface", map[string]any{
		"address": "127.0.0.1",
		"port":    28581,
	})
	v.SetDefault("logger_type", "sqlite")
	v.SetDefault("logger_config", map[string]any{"db_path": "./log.db"})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// SetConfigFile points viper at an explicit path, so a missing file
		// surfaces as a plain fs.PathError rather than viper's own
		// ConfigFileNotFoundError (that type is only produced by viper's
		// name/path search). Check both so a missing document still falls
		// back to defaults.
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		for _, k := range v.AllKeys() {
			top := topLevelKey(k)
			if !knownKeys[top] {
				return Config{}, typedef.NewRouteError(typedef.ErrInvalidRequest, fmt.Sprintf("unknown config key %q", top))
			}
		}
	}

	border := v.GetStringMap("world_border_dimensions")
	return Config{
		StorageProviderType:   StorageProviderType(v.GetString("storage_provider_type")),
		StorageProviderConfig: v.GetStringMap("storage_provider_config"),
		WorldBorder: typedef.Rect{
			MinX: intOf(border["min_x"], -10_000_000),
			MaxX: intOf(border["max_x"], 10_000_000),
			MinY: intOf(border["min_y"], -10_000_000),
			MaxY: intOf(border["max_y"], 10_000_000),
		},
		NetworkAddress: v.GetString("network_interface.address"),
		NetworkPort:    v.GetInt("network_interface.port"),
		LoggerType:     v.GetString("logger_type"),
		LoggerConfig:   v.GetStringMap("logger_config"),
	}, nil
}

// topLevelKey returns the first dotted segment of a viper key, since
// AllKeys() flattens nested maps (e.g. "network_interface.port").
func topLevelKey(key string) string {
	for i, r := range key {
		if r == '.' {
			return key[:i]
		}
	}
	return key
}

func intOf(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}
