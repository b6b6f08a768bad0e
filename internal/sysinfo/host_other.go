//go:build !linux

package sysinfo

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/disk"
)

// SocketStats is only implemented on Linux.
func (h *Host) SocketStats(_ context.Context) (SocketStats, error) {
	return SocketStats{}, queryErr("sockstat", errors.ErrUnsupported)
}

// statMount uses gopsutil, which does not separate free from available space.
func statMount(ctx context.Context, m *Mount) {
	usage, err := disk.UsageWithContext(ctx, m.On)
	if err != nil {
		return
	}
	m.Total = usage.Total
	m.Free = usage.Free
	m.Avail = usage.Free
}
