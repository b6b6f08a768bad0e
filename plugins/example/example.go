// Package example is a minimal out-of-tree collector. Importing it registers
// the "works" collector, which always reports "test".
package example

import (
	"context"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Name is the collector's response key.
const Name = "works"

func init() {
	plugin.Register(Factory())
}

// Factory returns the factory for the example collector.
func Factory() plugin.Factory {
	return plugin.Factory{
		Name: Name,
		New: func(plugin.Dependencies) (plugin.Collector, error) {
			return &Collector{}, nil
		},
	}
}

// Collector reports a fixed value, showing the smallest useful collector.
type Collector struct{}

func (c *Collector) Name() string        { return Name }
func (c *Collector) Description() string { return "example collector compiled in from a separate package" }

func (c *Collector) Collect(_ context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(Name) {
		return map[string]any{}, nil
	}
	return "test", nil
}
