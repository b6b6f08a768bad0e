package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/HerbHall/sysstat/internal/metrics"
	"github.com/HerbHall/sysstat/internal/testutil"
	"github.com/HerbHall/sysstat/pkg/plugin"
)

// panicCollector panics on every Collect.
type panicCollector struct{ name string }

func (c *panicCollector) Name() string { return c.name }
func (c *panicCollector) Collect(_ context.Context, _ *plugin.StatsConfig) (any, error) {
	panic("collector exploded")
}

// configEcho returns the plugin_config section it was given.
type configEcho struct{ name string }

func (c *configEcho) Name() string { return c.name }
func (c *configEcho) Collect(_ context.Context, cfg *plugin.StatsConfig) (any, error) {
	return cfg.Section(c.name), nil
}

func newAggregator(t *testing.T, collectors ...plugin.Collector) *Aggregator {
	t.Helper()
	reg := New(testutil.Logger())
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			t.Fatalf("Register(%q) error = %v", c.Name(), err)
		}
	}
	return NewAggregator(reg, testutil.Logger(), nil)
}

func decode(t *testing.T, raw json.RawMessage) any {
	t.Helper()
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("document %s is not JSON: %v", raw, err)
	}
	return v
}

func assertDocument(t *testing.T, resp Response, name string, want any) {
	t.Helper()
	raw, ok := resp[name]
	if !ok {
		t.Errorf("response missing %q", name)
		return
	}
	if got := decode(t, raw); !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %s, want %#v", name, raw, want)
	}
}

func TestCollectKeysEveryCollector(t *testing.T) {
	agg := newAggregator(t, newTestCollector("a"), newTestCollector("b"), &testCollector{name: "null"})

	resp := agg.Collect(context.Background(), testutil.NewStatsConfig())

	if len(resp) != 3 {
		t.Fatalf("response has %d keys, want 3", len(resp))
	}
	assertDocument(t, resp, "a", map[string]any{"from": "a"})
	assertDocument(t, resp, "b", map[string]any{"from": "b"})
	assertDocument(t, resp, "null", nil)
}

func TestCollectEmptyRegistry(t *testing.T) {
	agg := newAggregator(t)

	resp := agg.Collect(context.Background(), testutil.NewStatsConfig())

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("empty registry response = %s, want {}", data)
	}
}

func TestCollectOmitsFailingCollectors(t *testing.T) {
	tests := []struct {
		name   string
		bad    plugin.Collector
		reason string
	}{
		{"error", &testCollector{name: "bad", err: errors.New("unrecoverable")}, metrics.ReasonError},
		{"panic", &panicCollector{name: "bad"}, metrics.ReasonPanic},
		{"unserializable", &testCollector{name: "bad", doc: make(chan int)}, metrics.ReasonSerialize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(testutil.Logger())
			for _, c := range []plugin.Collector{newTestCollector("before"), tt.bad, newTestCollector("after")} {
				if err := reg.Register(c); err != nil {
					t.Fatalf("Register(%q) error = %v", c.Name(), err)
				}
			}

			preg := prometheus.NewRegistry()
			agg := NewAggregator(reg, testutil.Logger(), metrics.New(preg))

			resp := agg.Collect(context.Background(), testutil.NewStatsConfig())

			if len(resp) != 2 {
				t.Errorf("response has %d keys, want 2", len(resp))
			}
			for _, name := range []string{"before", "after"} {
				if _, ok := resp[name]; !ok {
					t.Errorf("response missing %q", name)
				}
			}
			if _, ok := resp["bad"]; ok {
				t.Errorf("failing collector present in response: %s", resp["bad"])
			}

			want := fmt.Sprintf(`
# HELP sysstat_collect_failures_total Collector documents dropped from a response.
# TYPE sysstat_collect_failures_total counter
sysstat_collect_failures_total{collector="bad",reason=%q} 1
`, tt.reason)
			if err := promtest.GatherAndCompare(preg, strings.NewReader(want), "sysstat_collect_failures_total"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestMergeLaterDuplicateWins(t *testing.T) {
	agg := newAggregator(t)
	first := &testCollector{name: "dup", doc: "first"}
	second := &testCollector{name: "dup", doc: "second"}

	resp := agg.Merge(context.Background(), testutil.NewStatsConfig(), []plugin.Collector{first, second})

	if len(resp) != 1 {
		t.Fatalf("response has %d keys, want 1", len(resp))
	}
	assertDocument(t, resp, "dup", "second")

	// A failing duplicate does not erase the earlier document.
	failing := &testCollector{name: "dup", err: errors.New("nope")}
	resp = agg.Merge(context.Background(), testutil.NewStatsConfig(), []plugin.Collector{first, failing})
	assertDocument(t, resp, "dup", "first")
}

func TestCollectScopesPluginConfig(t *testing.T) {
	agg := newAggregator(t, &configEcho{name: "x"}, &configEcho{name: "y"})
	cfg := testutil.NewStatsConfig(testutil.WithPluginConfig(testutil.PluginConfig(t, `
x:
  disabled: true
`)))

	resp := agg.Collect(context.Background(), cfg)

	assertDocument(t, resp, "x", map[string]any{"disabled": true})
	assertDocument(t, resp, "y", nil)
}

func TestCollectConcurrentRequests(t *testing.T) {
	counter := &countingCollector{name: "n"}
	agg := newAggregator(t, counter, newTestCollector("static"))
	cfg := testutil.NewStatsConfig()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if resp := agg.Collect(context.Background(), cfg); len(resp) != 2 {
				t.Errorf("response has %d keys, want 2", len(resp))
			}
		}()
	}
	wg.Wait()

	if n := counter.calls.Load(); n != 16 {
		t.Errorf("collector called %d times, want 16", n)
	}
}
