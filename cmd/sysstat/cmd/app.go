package cmd

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	promcollectors "github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HerbHall/sysstat/internal/collectors"
	"github.com/HerbHall/sysstat/internal/config"
	"github.com/HerbHall/sysstat/internal/metrics"
	"github.com/HerbHall/sysstat/internal/registry"
	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// newLogger builds a zap logger: JSON for "json", human-readable for "console".
func newLogger(s config.LogSettings) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(s.Format) {
	case "", "json":
		zc = zap.NewProductionConfig()
	case "console":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("log format %q (want json or console)", s.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// app is the set of long-lived components shared by serve and collect.
type app struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// newApp builds the metrics registry and registers every built-in collector,
// then the modules in extra, each with its plugin_config section. A name
// claimed by two modules fails startup.
func newApp(s *config.Settings, src sysinfo.Source, logger *zap.Logger, extra []plugin.Factory) (*app, error) {
	preg := prometheus.NewRegistry()
	preg.MustRegister(
		promcollectors.NewGoCollector(),
		promcollectors.NewProcessCollector(promcollectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(preg)

	reg := registry.New(logger.Named("registry"))
	deps := func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Logger:   logger.Named(name),
			Config:   s.PluginConfig.Get(name),
			Observer: m,
		}
	}
	factories := append(collectors.Factories(src), extra...)
	if err := reg.RegisterFactories(factories, deps); err != nil {
		return nil, fmt.Errorf("register collectors: %w", err)
	}

	a := &app{registry: reg, metrics: m}
	if s.Server.Metrics {
		a.gatherer = preg
	}
	return a, nil
}
