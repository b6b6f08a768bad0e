package collectors

import (
	"context"
	"time"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Time reports the current time in the requested date format.
type Time struct {
	now func() time.Time
}

// NewTime creates a Time collector reading the clock through now.
func NewTime(now func() time.Time) *Time {
	return &Time{now: now}
}

func (c *Time) Name() string        { return NameTime }
func (c *Time) Description() string { return "current time" }

func (c *Time) Collect(_ context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameTime) {
		return empty(), nil
	}
	return cfg.Date(c.now()), nil
}
