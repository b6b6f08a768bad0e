package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/HerbHall/sysstat/internal/sysinfo"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Metric names accepted by FakeSource.Fail and FakeSource.Calls.
const (
	MetricUptime       = "uptime"
	MetricBootTime     = "boot_time"
	MetricMemory       = "memory"
	MetricCPUTimes     = "cpu_times"
	MetricLoadAverage  = "load_average"
	MetricNetworks     = "networks"
	MetricNetworkStats = "network_stats"
	MetricSocketStats  = "socket_stats"
	MetricMounts       = "mounts"
)

// Compile-time interface check.
var _ sysinfo.Source = (*FakeSource)(nil)

// FakeSource is a thread-safe in-memory sysinfo.Source. Set the exported
// fields before handing it to a collector; use Fail to inject errors.
type FakeSource struct {
	mu    sync.Mutex
	errs  map[string]error
	calls map[string]int

	Up          time.Duration
	Boot        time.Time
	Mem         sysinfo.Memory
	CPU         sysinfo.CPUTimes // returned by the next CPUTimes call
	CPUStep     sysinfo.CPUTimes // added to CPU after every call
	Load        sysinfo.LoadAverage
	Ifaces      []string
	NetCounters map[string]sysinfo.NetworkStats
	Sockets     sysinfo.SocketStats
	MountList   []sysinfo.Mount
}

// NewFakeSource returns a FakeSource describing a small, healthy host.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		errs:    make(map[string]error),
		calls:   make(map[string]int),
		Up:      3 * time.Hour,
		Boot:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Mem:     sysinfo.Memory{Total: 8 << 30, Free: 2 << 30},
		CPUStep: sysinfo.CPUTimes{User: 2, Nice: 0.5, System: 1, Interrupt: 0.5, Idle: 6},
		Load:    sysinfo.LoadAverage{One: 0.5, Five: 0.25, Fifteen: 0.125},
		Ifaces:  []string{"eth0", "lo"},
		NetCounters: map[string]sysinfo.NetworkStats{
			"eth0": {RxBytes: 3221225472, TxBytes: 1048576, RxPackets: 10, TxPackets: 20, RxErrors: 1, TxErrors: 2},
			"lo":   {RxBytes: 4096, TxBytes: 4096, RxPackets: 4, TxPackets: 4},
		},
		Sockets: sysinfo.SocketStats{TCPInUse: 12, TCPOrphaned: 1, UDPInUse: 3, TCP6InUse: 4, UDP6InUse: 2},
		MountList: []sysinfo.Mount{
			{From: "/dev/sda1", Type: "ext4", On: "/", Free: 20 << 30, Avail: 18 << 30, Total: 100 << 30},
			{From: "proc", Type: "proc", On: "/proc"},
		},
	}
}

// Fail makes every later query of metric return err (wrapped in
// plugin.ErrOSQuery). A nil err clears the failure.
func (s *FakeSource) Fail(metric string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, metric)
		return
	}
	s.errs[metric] = fmt.Errorf("%w: %s: %w", plugin.ErrOSQuery, metric, err)
}

// Calls returns how often metric has been queried.
func (s *FakeSource) Calls(metric string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[metric]
}

func (s *FakeSource) record(metric string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[metric]++
	return s.errs[metric]
}

func (s *FakeSource) Uptime(_ context.Context) (time.Duration, error) {
	if err := s.record(MetricUptime); err != nil {
		return 0, err
	}
	return s.Up, nil
}

func (s *FakeSource) BootTime(_ context.Context) (time.Time, error) {
	if err := s.record(MetricBootTime); err != nil {
		return time.Time{}, err
	}
	return s.Boot, nil
}

func (s *FakeSource) Memory(_ context.Context) (sysinfo.Memory, error) {
	if err := s.record(MetricMemory); err != nil {
		return sysinfo.Memory{}, err
	}
	return s.Mem, nil
}

func (s *FakeSource) CPUTimes(_ context.Context) (sysinfo.CPUTimes, error) {
	if err := s.record(MetricCPUTimes); err != nil {
		return sysinfo.CPUTimes{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.CPU
	s.CPU = sysinfo.CPUTimes{
		User:      cur.User + s.CPUStep.User,
		Nice:      cur.Nice + s.CPUStep.Nice,
		System:    cur.System + s.CPUStep.System,
		Interrupt: cur.Interrupt + s.CPUStep.Interrupt,
		Idle:      cur.Idle + s.CPUStep.Idle,
	}
	return cur, nil
}

func (s *FakeSource) LoadAverage(_ context.Context) (sysinfo.LoadAverage, error) {
	if err := s.record(MetricLoadAverage); err != nil {
		return sysinfo.LoadAverage{}, err
	}
	return s.Load, nil
}

func (s *FakeSource) Networks(_ context.Context) ([]string, error) {
	if err := s.record(MetricNetworks); err != nil {
		return nil, err
	}
	return append([]string(nil), s.Ifaces...), nil
}

func (s *FakeSource) NetworkStats(_ context.Context) (map[string]sysinfo.NetworkStats, error) {
	if err := s.record(MetricNetworkStats); err != nil {
		return nil, err
	}
	out := make(map[string]sysinfo.NetworkStats, len(s.NetCounters))
	for k, v := range s.NetCounters {
		out[k] = v
	}
	return out, nil
}

func (s *FakeSource) SocketStats(_ context.Context) (sysinfo.SocketStats, error) {
	if err := s.record(MetricSocketStats); err != nil {
		return sysinfo.SocketStats{}, err
	}
	return s.Sockets, nil
}

func (s *FakeSource) Mounts(_ context.Context) ([]sysinfo.Mount, error) {
	if err := s.record(MetricMounts); err != nil {
		return nil, err
	}
	return append([]sysinfo.Mount(nil), s.MountList...), nil
}
