//go:build linux

package sysinfo

import (
	"context"
	"errors"
	"io/fs"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

// SocketStats reads /proc/net/sockstat and /proc/net/sockstat6. Hosts without
// IPv6 report zero IPv6 sockets.
func (h *Host) SocketStats(_ context.Context) (SocketStats, error) {
	pfs, err := procfs.NewDefaultFS()
	if err != nil {
		return SocketStats{}, queryErr("sockstat", err)
	}

	var stats SocketStats
	v4, err := pfs.NetSockstat()
	if err != nil {
		return SocketStats{}, queryErr("sockstat", err)
	}
	for _, p := range v4.Protocols {
		switch p.Protocol {
		case "TCP":
			stats.TCPInUse = uint64(p.InUse)
			if p.Orphan != nil {
				stats.TCPOrphaned = uint64(*p.Orphan)
			}
		case "UDP":
			stats.UDPInUse = uint64(p.InUse)
		}
	}

	v6, err := pfs.NetSockstat6()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return stats, nil
	case err != nil:
		return SocketStats{}, queryErr("sockstat6", err)
	}
	for _, p := range v6.Protocols {
		switch p.Protocol {
		case "TCP6":
			stats.TCP6InUse = uint64(p.InUse)
		case "UDP6":
			stats.UDP6InUse = uint64(p.InUse)
		}
	}
	return stats, nil
}

// statMount fills in sizes with statfs(2), which distinguishes free blocks
// from blocks available to unprivileged users.
func statMount(_ context.Context, m *Mount) {
	var st unix.Statfs_t
	if err := unix.Statfs(m.On, &st); err != nil {
		return
	}
	bsize := uint64(st.Bsize)
	m.Total = st.Blocks * bsize
	m.Free = st.Bfree * bsize
	m.Avail = st.Bavail * bsize
}
