package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// DefaultPath is read when no config file is named explicitly.
const DefaultPath = "./sysstat.yaml"

// EnvPrefix prefixes environment overrides, e.g. SYSSTAT_ADDR or
// SYSSTAT_SERVER_RATE_LIMIT.
const EnvPrefix = "SYSSTAT"

// Configuration keys.
const (
	KeyAddr         = "addr"
	KeyPluginConfig = "plugin_config"
	KeyReadTimeout  = "server.read_timeout"
	KeyWriteTimeout = "server.write_timeout"
	KeyIdleTimeout  = "server.idle_timeout"
	KeyRateLimit    = "server.rate_limit"
	KeyRateBurst    = "server.rate_burst"
	KeyMetrics      = "server.metrics"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

// Settings is the typed view of the configuration.
type Settings struct {
	Addr   string         `mapstructure:"addr" yaml:"addr"`
	Server ServerSettings `mapstructure:"server" yaml:"server"`
	Log    LogSettings    `mapstructure:"log" yaml:"log"`

	// PluginConfig is the plugin_config tree with keys as written.
	PluginConfig plugin.ConfigValue `mapstructure:"-" yaml:"plugin_config"`
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`

	// RateLimit is in requests per second; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst" yaml:"rate_burst"`
	Metrics   bool    `mapstructure:"metrics" yaml:"metrics"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAddr, "127.0.0.1:8080")
	v.SetDefault(KeyReadTimeout, "15s")
	v.SetDefault(KeyWriteTimeout, "15s")
	v.SetDefault(KeyIdleTimeout, "60s")
	v.SetDefault(KeyRateLimit, 0)
	v.SetDefault(KeyRateBurst, 10)
	v.SetDefault(KeyMetrics, true)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
}

// Load reads the file at path over the defaults and applies environment
// overrides. If path is empty DefaultPath is tried, and a missing default
// file is not an error. A named file must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return New(v), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	pc, err := readPluginConfig(v.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	c := New(v)
	c.pluginConfig = pc
	return c, nil
}

// readPluginConfig decodes the plugin_config subtree straight from the file.
// viper lowercases map keys, and collector sections are case sensitive.
func readPluginConfig(path string) (plugin.ConfigValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return plugin.None(), fmt.Errorf("read config %s: %w", path, err)
	}
	var doc struct {
		PluginConfig plugin.ConfigValue `yaml:"plugin_config"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return plugin.None(), fmt.Errorf("decode %s in %s: %w", KeyPluginConfig, path, err)
	}
	return doc.PluginConfig, nil
}

// Settings decodes the typed settings.
func (c *Config) Settings() (*Settings, error) {
	var s Settings
	if err := c.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	s.PluginConfig = c.PluginConfig()
	return &s, nil
}

// PluginConfig returns the plugin_config tree, or an empty map when unset.
// The tree read from the file keeps its key case; values set on viper
// directly are used when the file had none.
func (c *Config) PluginConfig() plugin.ConfigValue {
	v := c.pluginConfig
	if v.IsNone() {
		v = plugin.FromAny(c.Get(KeyPluginConfig))
	}
	if v.IsNone() {
		return plugin.MapValue(nil)
	}
	return v
}

// YAML renders the effective settings.
func (s *Settings) YAML() ([]byte, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
