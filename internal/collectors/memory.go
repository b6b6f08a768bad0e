package collectors

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

type memoryDoc struct {
	Total          plugin.Size `json:"total"`
	Free           plugin.Size `json:"free"`
	PercentageUsed float64     `json:"percentage_used"`
}

// Memory reports physical memory usage.
type Memory struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewMemory creates a Memory collector.
func NewMemory(src sysinfo.Source, logger *zap.Logger) *Memory {
	return &Memory{src: src, logger: orNop(logger)}
}

func (c *Memory) Name() string        { return NameMemory }
func (c *Memory) Description() string { return "physical memory total, free and percentage used" }

// Collect returns a null document when memory cannot be read.
func (c *Memory) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameMemory) {
		return empty(), nil
	}

	m, err := c.src.Memory(ctx)
	if err != nil {
		queryFailed(c.logger, NameMemory, err)
		return nil, nil
	}
	return &memoryDoc{
		Total:          cfg.Size(m.Total),
		Free:           cfg.Size(m.Free),
		PercentageUsed: m.UsedPercent(),
	}, nil
}
