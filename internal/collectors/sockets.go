package collectors

import (
	"context"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

type socketsDoc struct {
	TCP         uint64 `json:"tcp_socks"`
	TCPOrphaned uint64 `json:"tcp_socks_orphaned"`
	UDP         uint64 `json:"udp_socks"`
	TCP6        uint64 `json:"tcp6_socks"`
	UDP6        uint64 `json:"udp6_socks"`
}

// Sockets reports socket counts per protocol.
type Sockets struct {
	src    sysinfo.Source
	logger *zap.Logger
}

// NewSockets creates a Sockets collector.
func NewSockets(src sysinfo.Source, logger *zap.Logger) *Sockets {
	return &Sockets{src: src, logger: orNop(logger)}
}

func (c *Sockets) Name() string        { return NameSockets }
func (c *Sockets) Description() string { return "sockets in use per protocol" }

func (c *Sockets) Collect(ctx context.Context, cfg *plugin.StatsConfig) (any, error) {
	if cfg.Disabled(NameSockets) {
		return empty(), nil
	}

	s, err := c.src.SocketStats(ctx)
	if err != nil {
		queryFailed(c.logger, NameSockets, err)
		return nil, nil
	}
	return &socketsDoc{
		TCP:         s.TCPInUse,
		TCPOrphaned: s.TCPOrphaned,
		UDP:         s.UDPInUse,
		TCP6:        s.TCP6InUse,
		UDP6:        s.UDP6InUse,
	}, nil
}
