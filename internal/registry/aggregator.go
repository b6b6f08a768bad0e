package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/metrics"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Response maps collector names to their serialized documents.
type Response map[string]json.RawMessage

// Aggregator fans a request out to every registered collector.
type Aggregator struct {
	reg     *Registry
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewAggregator creates an Aggregator over reg. m may be nil.
func NewAggregator(reg *Registry, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{reg: reg, logger: logger, metrics: m}
}

// Collect runs every registered collector with cfg and merges the results.
func (a *Aggregator) Collect(ctx context.Context, cfg *plugin.StatsConfig) Response {
	return a.Merge(ctx, cfg, a.reg.All())
}

// Merge runs collectors in order and keys each document by collector name.
// A collector that errors, panics or produces an unserializable document is
// left out; the others are unaffected. When two collectors share a name the
// later one wins.
func (a *Aggregator) Merge(ctx context.Context, cfg *plugin.StatsConfig, collectors []plugin.Collector) Response {
	resp := make(Response, len(collectors))
	for _, c := range collectors {
		name := c.Name()
		start := time.Now()
		raw, reason, err := a.collectOne(ctx, c, cfg)
		a.metrics.ObserveCollect(name, time.Since(start))
		if err != nil {
			a.metrics.CollectFailed(name, reason)
			a.logger.Error("collector omitted from response",
				zap.String("collector", name),
				zap.String("reason", reason),
				zap.Error(err),
			)
			continue
		}
		if _, dup := resp[name]; dup {
			a.logger.Warn("duplicate collector name, later document wins", zap.String("collector", name))
		}
		resp[name] = raw
	}
	return resp
}

func (a *Aggregator) collectOne(ctx context.Context, c plugin.Collector, cfg *plugin.StatsConfig) (raw json.RawMessage, reason string, err error) {
	defer func() {
		if r := recover(); r != nil {
			raw, reason, err = nil, metrics.ReasonPanic, fmt.Errorf("collector panicked: %v", r)
		}
	}()

	doc, err := c.Collect(ctx, cfg)
	if err != nil {
		return nil, metrics.ReasonError, err
	}
	raw, err = json.Marshal(doc)
	if err != nil {
		return nil, metrics.ReasonSerialize, fmt.Errorf("%w: %w", plugin.ErrSerialization, err)
	}
	return raw, "", nil
}
