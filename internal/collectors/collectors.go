// Package collectors implements the built-in host metric collectors.
package collectors

import (
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Collector names, which are also the response keys.
const (
	NameTime       = "time"
	NameUptime     = "uptime"
	NameMemory     = "mem_stats"
	NameCPULoad    = "cpu_load"
	NameCPUAverage = "cpu_avg"
	NameSockets    = "sock_stats"
	NameNetwork    = "net_stats"
	NameFilesystem = "fs_stats"
)

// empty is the document returned by a disabled collector.
func empty() map[string]any { return map[string]any{} }

// Factories returns the built-in collectors in registration order.
func Factories(src sysinfo.Source) []plugin.Factory {
	return []plugin.Factory{
		{Name: NameTime, New: func(plugin.Dependencies) (plugin.Collector, error) {
			return NewTime(time.Now), nil
		}},
		{Name: NameUptime, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewUptime(src, d.Logger), nil
		}},
		{Name: NameMemory, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewMemory(src, d.Logger), nil
		}},
		{Name: NameCPULoad, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewCPULoad(src, d), nil
		}},
		{Name: NameCPUAverage, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewCPUAverage(src, d.Logger), nil
		}},
		{Name: NameSockets, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewSockets(src, d.Logger), nil
		}},
		{Name: NameNetwork, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewNetwork(src, d.Logger), nil
		}},
		{Name: NameFilesystem, New: func(d plugin.Dependencies) (plugin.Collector, error) {
			return NewFilesystem(src, d.Logger), nil
		}},
	}
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// queryFailed logs an OS query failure; the caller leaves the field null.
func queryFailed(l *zap.Logger, collector string, err error) {
	l.Warn("os query failed", zap.String("collector", collector), zap.Error(err))
}
