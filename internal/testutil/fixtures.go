package testutil

import (
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// NewStatsConfig returns a StatsConfig with request defaults (epoch dates,
// raw byte counts, no query parameters, empty plugin config).
// Override individual fields with options.
func NewStatsConfig(opts ...func(*plugin.StatsConfig)) *plugin.StatsConfig {
	cfg := &plugin.StatsConfig{
		DateFormat:   plugin.DateEpoch,
		QueryOther:   map[string]string{},
		PluginConfig: plugin.MapValue(nil),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithDateFormat sets the date format.
func WithDateFormat(f plugin.DateFormat) func(*plugin.StatsConfig) {
	return func(c *plugin.StatsConfig) { c.DateFormat = f }
}

// WithHumanReadable enables MiB formatting of sizes.
func WithHumanReadable() func(*plugin.StatsConfig) {
	return func(c *plugin.StatsConfig) { c.HumanReadable = true }
}

// WithQuery adds a raw query parameter.
func WithQuery(key, value string) func(*plugin.StatsConfig) {
	return func(c *plugin.StatsConfig) { c.QueryOther[key] = value }
}

// WithPluginConfig sets the plugin configuration tree.
func WithPluginConfig(v plugin.ConfigValue) func(*plugin.StatsConfig) {
	return func(c *plugin.StatsConfig) { c.PluginConfig = v }
}

// PluginConfig parses a YAML document into a plugin configuration tree.
func PluginConfig(t *testing.T, src string) plugin.ConfigValue {
	t.Helper()
	var v plugin.ConfigValue
	if err := yaml.Unmarshal([]byte(src), &v); err != nil {
		t.Fatalf("testutil.PluginConfig: %v", err)
	}
	return v
}
