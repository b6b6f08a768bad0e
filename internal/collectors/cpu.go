package collectors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sampler"
	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// DefaultCPULoadInterval is the time between CPU load samples.
const DefaultCPULoadInterval = 5000 * time.Millisecond

type cpuLoadDoc struct {
	User      float64 `json:"user"`
	Nice      float64 `json:"nice"`
	System    float64 `json:"system"`
	Interrupt float64 `json:"interrupt"`
	Idle      float64 `json:"idle"`
}

// CPULoad reports the share of CPU time per state, measured by a background
// sampler between two consecutive ticks.
type CPULoad struct {
	sampler *sampler.Sampler[sysinfo.CPUTimes, sysinfo.CPULoad]
	logger  *zap.Logger

	handle atomic.Pointer[sampler.Handle[sysinfo.CPULoad]]

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCPULoad creates an unstarted CPULoad collector. The sampling interval is
// read from plugin_config.cpu_load.interval_secs (1-255); anything else falls
// back to DefaultCPULoadInterval.
func NewCPULoad(src sysinfo.Source, deps plugin.Dependencies) *CPULoad {
	logger := orNop(deps.Logger)
	return newCPULoad(src, deps, cpuLoadInterval(deps.Config, logger))
}

func newCPULoad(src sysinfo.Source, deps plugin.Dependencies, interval time.Duration) *CPULoad {
	logger := orNop(deps.Logger)
	step := sampler.Step[sysinfo.CPUTimes, sysinfo.CPULoad]{
		Begin: src.CPUTimes,
		Finish: func(ctx context.Context, prev sysinfo.CPUTimes) (sysinfo.CPULoad, error) {
			cur, err := src.CPUTimes(ctx)
			if err != nil {
				return sysinfo.CPULoad{}, err
			}
			return cur.LoadSince(prev)
		},
	}

	opts := []sampler.Option{sampler.WithLogger(logger)}
	if deps.Observer != nil {
		opts = append(opts, sampler.WithObserver(deps.Observer))
	}
	return &CPULoad{
		sampler: sampler.New(NameCPULoad, interval, step, opts...),
		logger:  logger,
	}
}

func cpuLoadInterval(section plugin.ConfigValue, logger *zap.Logger) time.Duration {
	v := section.Get("interval_secs")
	if v.IsNone() {
		return DefaultCPULoadInterval
	}
	if err := v.Expect(plugin.KindNumber); err != nil {
		logger.Warn("ignoring interval_secs", zap.String("collector", NameCPULoad), zap.Error(err))
		return DefaultCPULoadInterval
	}
	n, _ := v.AsNumber()
	if n == 0 {
		logger.Warn("ignoring interval_secs of 0", zap.String("collector", NameCPULoad))
		return DefaultCPULoadInterval
	}
	return time.Duration(n) * time.Second
}

func (c *CPULoad) Name() string { return NameCPULoad }
func (c *CPULoad) Description() string {
	return "percentage of cpu time per state, sampled in the background"
}

// Interval returns the sampling interval.
func (c *CPULoad) Interval() time.Duration { return c.sampler.Interval() }

// Start launches the background sampler. It implements plugin.Starter.
func (c *CPULoad) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ctx, c.cancel = context.WithCancel(ctx)
	h := c.sampler.Start(ctx)
	c.handle.Store(h)
	c.logger.Info("cpu load sampler started",
		zap.String("sampler_id", h.ID()),
		zap.Duration("interval", c.sampler.Interval()),
	)
}

// Stop cancels the sampler and waits for it to exit. It implements plugin.Stopper.
func (c *CPULoad) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	if h := c.handle.Load(); h != nil {
		<-h.Done()
	}
}

// Collect returns null until the sampler has published its first value.
func (c *CPULoad) Collect(_ context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameCPULoad) {
		return empty(), nil
	}

	h := c.handle.Load()
	if h == nil {
		return nil, nil
	}
	load, ok := h.Read()
	if !ok {
		return nil, nil
	}
	return &cpuLoadDoc{
		User:      load.User,
		Nice:      load.Nice,
		System:    load.System,
		Interrupt: load.Interrupt,
		Idle:      load.Idle,
	}, nil
}

type cpuAverageDoc struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

// CPUAverage reports the 1, 5 and 15 minute load averages.
type CPUAverage struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewCPUAverage creates a CPUAverage collector.
func NewCPUAverage(src sysinfo.Source, logger *zap.Logger) *CPUAverage {
	return &CPUAverage{src: src, logger: orNop(logger)}
}

func (c *CPUAverage) Name() string        { return NameCPUAverage }
func (c *CPUAverage) Description() string { return "1, 5 and 15 minute load averages" }

func (c *CPUAverage) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameCPUAverage) {
		return empty(), nil
	}

	avg, err := c.src.LoadAverage(ctx)
	if err != nil {
		queryFailed(c.logger, NameCPUAverage, err)
		return nil, nil
	}
	return &cpuAverageDoc{One: avg.One, Five: avg.Five, Fifteen: avg.Fifteen}, nil
}
