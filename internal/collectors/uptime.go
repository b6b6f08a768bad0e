package collectors

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

type uptimeDoc struct {
	Uptime   *uint64      `json:"uptime"`
	BootTime *plugin.Date `json:"boot_time"`
}

// Uptime reports seconds since boot and the boot time.
type Uptime struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewUptime creates an Uptime collector.
func NewUptime(src sysinfo.Source, logger *zap.Logger) *Uptime {
	return &Uptime{src: src, logger: orNop(logger)}
}

func (c *Uptime) Name() string        { return NameUptime }
func (c *Uptime) Description() string { return "seconds since boot and boot time" }

func (c *Uptime) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameUptime) {
		return empty(), nil
	}

	var doc uptimeDoc
	if up, err := c.src.Uptime(ctx); err != nil {
		queryFailed(c.logger, NameUptime, err)
	} else {
		secs := uint64(up.Seconds())
		doc.Uptime = &secs
	}
	if boot, err := c.src.BootTime(ctx); err != nil {
		queryFailed(c.logger, NameUptime, err)
	} else {
		d := cfg.Date(boot)
		doc.BootTime = &d
	}
	return doc, nil
}
