package sysinfo

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// Host reads metrics from the local machine.
type Host struct{}

// Compile-time guard.
var _ Source = (*Host)(nil)

// NewHost returns a Source backed by the running host.
func NewHost() *Host {
	return &Host{}
}

func (h *Host) Uptime(ctx context.Context) (time.Duration, error) {
	secs, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, queryErr("uptime", err)
	}
	return time.Duration(secs) * time.Second, nil
}

func (h *Host) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, queryErr("boot time", err)
	}
	return time.Unix(int64(secs), 0), nil
}

// Memory reports available memory (reclaimable caches included) as free.
func (h *Host) Memory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, queryErr("memory", err)
	}
	return Memory{Total: vm.Total, Free: vm.Available}, nil
}

func (h *Host) CPUTimes(ctx context.Context) (CPUTimes, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTimes{}, queryErr("cpu times", err)
	}
	if len(times) == 0 {
		return CPUTimes{}, queryErr("cpu times", errors.New("no aggregate cpu entry"))
	}
	t := times[0]
	return CPUTimes{
		User:      t.User,
		Nice:      t.Nice,
		System:    t.System,
		Interrupt: t.Irq + t.Softirq,
		Idle:      t.Idle + t.Iowait,
	}, nil
}

func (h *Host) LoadAverage(ctx context.Context) (LoadAverage, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAverage{}, queryErr("load average", err)
	}
	return LoadAverage{One: avg.Load1, Five: avg.Load5, Fifteen: avg.Load15}, nil
}

// Networks returns interface names in sorted order.
func (h *Host) Networks(ctx context.Context) ([]string, error) {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return nil, queryErr("network interfaces", err)
	}
	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		names = append(names, iface.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (h *Host) NetworkStats(ctx context.Context) (map[string]NetworkStats, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, queryErr("network counters", err)
	}
	stats := make(map[string]NetworkStats, len(counters))
	for _, c := range counters {
		stats[c.Name] = NetworkStats{
			RxBytes:   c.BytesRecv,
			TxBytes:   c.BytesSent,
			RxPackets: c.PacketsRecv,
			TxPackets: c.PacketsSent,
			RxErrors:  c.Errin,
			TxErrors:  c.Errout,
		}
	}
	return stats, nil
}

// Mounts lists every mounted filesystem, virtual ones included. Filesystems
// that cannot be queried are reported with zero sizes.
func (h *Host) Mounts(ctx context.Context) ([]Mount, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, queryErr("mounts", err)
	}
	mounts := make([]Mount, 0, len(parts))
	for _, p := range parts {
		m := Mount{From: p.Device, Type: p.Fstype, On: p.Mountpoint}
		statMount(ctx, &m)
		mounts = append(mounts, m)
	}
	return mounts, nil
}
