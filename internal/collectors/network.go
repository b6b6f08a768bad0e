package collectors

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// InterfaceQuery is the query parameter that restricts net_stats to a
// comma-separated list of interface names.
const InterfaceQuery = "interface"

type netStatsDoc struct {
	RxBytes   plugin.Size `json:"rx_bytes"`
	TxBytes   plugin.Size `json:"tx_bytes"`
	RxPackets uint64      `json:"rx_packets"`
	TxPackets uint64      `json:"tx_packets"`
	RxErrors  uint64      `json:"rx_errors"`
	TxErrors  uint64      `json:"tx_errors"`
}

type netEntry struct {
	Name  string       `json:"name"`
	Stats *netStatsDoc `json:"stats"`
}

// Network reports per-interface traffic counters.
type Network struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewNetwork creates a Network collector.
func NewNetwork(src sysinfo.Source, logger *zap.Logger) *Network {
	return &Network{src: src, logger: orNop(logger)}
}

func (c *Network) Name() string        { return NameNetwork }
func (c *Network) Description() string { return "per-interface traffic counters" }

// Collect returns null if interfaces cannot be listed. An interface without
// counters has null stats.
func (c *Network) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameNetwork) {
		return empty(), nil
	}

	names, err := c.src.Networks(ctx)
	if err != nil {
		queryFailed(c.logger, NameNetwork, err)
		return nil, nil
	}
	names = filterInterfaces(names, cfg)

	counters, err := c.src.NetworkStats(ctx)
	if err != nil {
		queryFailed(c.logger, NameNetwork, err)
	}

	entries := make([]netEntry, 0, len(names))
	for _, name := range names {
		e := netEntry{Name: name}
		if s, ok := counters[name]; ok {
			e.Stats = &netStatsDoc{
				RxBytes:   cfg.Size(s.RxBytes),
				TxBytes:   cfg.Size(s.TxBytes),
				RxPackets: s.RxPackets,
				TxPackets: s.TxPackets,
				RxErrors:  s.RxErrors,
				TxErrors:  s.TxErrors,
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func filterInterfaces(names []string, cfg *plugin.StatsConfig) []string {
	raw, ok := cfg.Query(InterfaceQuery)
	if !ok || raw == "" {
		return names
	}
	want := make(map[string]bool)
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			want[n] = true
		}
	}
	out := names[:0:0]
	for _, n := range names {
		if want[n] {
			out = append(out, n)
		}
	}
	return out
}
