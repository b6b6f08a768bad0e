// Package sysinfo is the boundary between collectors and the operating system.
// Collectors depend on the Source interface; Host implements it with
// gopsutil, procfs and statfs.
package sysinfo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Source answers OS metric queries. Every method returns an error wrapping
// plugin.ErrOSQuery when the metric is unavailable.
type Source interface {
	Uptime(ctx context.Context) (time.Duration, error)
	BootTime(ctx context.Context) (time.Time, error)
	Memory(ctx context.Context) (Memory, error)
	CPUTimes(ctx context.Context) (CPUTimes, error)
	LoadAverage(ctx context.Context) (LoadAverage, error)
	Networks(ctx context.Context) ([]string, error)
	NetworkStats(ctx context.Context) (map[string]NetworkStats, error)
	SocketStats(ctx context.Context) (SocketStats, error)
	Mounts(ctx context.Context) ([]Mount, error)
}

// Memory is physical memory in bytes.
type Memory struct {
	Total uint64
	Free  uint64
}

// UsedPercent returns the share of Total not Free, or 0 when Total is 0.
func (m Memory) UsedPercent() float64 {
	if m.Total == 0 || m.Free > m.Total {
		return 0
	}
	return float64(m.Total-m.Free) / float64(m.Total) * 100
}

// LoadAverage is the run-queue load average over 1, 5 and 15 minutes.
type LoadAverage struct {
	One     float64
	Five    float64
	Fifteen float64
}

// NetworkStats are cumulative counters for one interface.
type NetworkStats struct {
	RxBytes   uint64
	TxBytes   uint64
	RxPackets uint64
	TxPackets uint64
	RxErrors  uint64
	TxErrors  uint64
}

// SocketStats are the numbers of sockets in use per protocol.
type SocketStats struct {
	TCPInUse    uint64
	TCPOrphaned uint64
	UDPInUse    uint64
	TCP6InUse   uint64
	UDP6InUse   uint64
}

// Mount is one mounted filesystem. Sizes are in bytes; Avail is the space
// available to unprivileged users.
type Mount struct {
	From  string
	Type  string
	On    string
	Free  uint64
	Avail uint64
	Total uint64
}

// CPUTimes are cumulative aggregate CPU times in seconds, grouped the way
// CPU load is reported.
type CPUTimes struct {
	User      float64
	Nice      float64
	System    float64
	Interrupt float64 // irq + softirq
	Idle      float64 // idle + iowait
}

// CPULoad is the share of CPU time, in percent, spent in each state between
// two CPUTimes reads. The fields sum to 100.
type CPULoad struct {
	User      float64
	Nice      float64
	System    float64
	Interrupt float64
	Idle      float64
}

// ErrNoElapsedTime is returned by LoadSince when the counters did not advance.
var ErrNoElapsedTime = errors.New("cpu counters did not advance")

// LoadSince computes the CPU load between prev and t.
func (t CPUTimes) LoadSince(prev CPUTimes) (CPULoad, error) {
	d := CPUTimes{
		User:      t.User - prev.User,
		Nice:      t.Nice - prev.Nice,
		System:    t.System - prev.System,
		Interrupt: t.Interrupt - prev.Interrupt,
		Idle:      t.Idle - prev.Idle,
	}
	if d.User < 0 || d.Nice < 0 || d.System < 0 || d.Interrupt < 0 || d.Idle < 0 {
		return CPULoad{}, fmt.Errorf("cpu counters went backwards")
	}
	total := d.User + d.Nice + d.System + d.Interrupt + d.Idle
	if total <= 0 {
		return CPULoad{}, ErrNoElapsedTime
	}
	return CPULoad{
		User:      d.User / total * 100,
		Nice:      d.Nice / total * 100,
		System:    d.System / total * 100,
		Interrupt: d.Interrupt / total * 100,
		Idle:      d.Idle / total * 100,
	}, nil
}

// Sum returns the total of all fields.
func (l CPULoad) Sum() float64 {
	return l.User + l.Nice + l.System + l.Interrupt + l.Idle
}

func queryErr(metric string, err error) error {
	return fmt.Errorf("%w: %s: %w", plugin.ErrOSQuery, metric, err)
}
