// Package config loads sysstat's configuration file and environment
// overrides through viper.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Config is a nil-safe wrapper around a viper instance.
type Config struct {
	v *viper.Viper

	// pluginConfig is plugin_config as written in the file, keys unchanged.
	pluginConfig plugin.ConfigValue
}

// New wraps v. A nil v behaves as an empty configuration.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

func (c *Config) GetString(key string) string          { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Config) GetFloat64(key string) float64        { return c.v.GetFloat64(key) }
func (c *Config) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *Config) IsSet(key string) bool                { return c.v.IsSet(key) }
func (c *Config) Get(key string) any                   { return c.v.Get(key) }

// Sub returns the subtree at key. It never returns nil; a missing key yields
// an empty Config.
func (c *Config) Sub(key string) *Config {
	return New(c.v.Sub(key))
}

// Unmarshal decodes the whole configuration into target using mapstructure tags.
func (c *Config) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}

// AllSettings returns the merged configuration as nested maps.
func (c *Config) AllSettings() map[string]any {
	return c.v.AllSettings()
}
