package sampler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counterStep begins with an increasing sequence number and finishes by
// returning the number it began with, so every published value identifies
// the tick that started it.
type counterStep struct {
	n         atomic.Int64
	failAfter int64 // Finish fails for pending >= failAfter when > 0
}

func (c *counterStep) step() Step[int64, int64] {
	return Step[int64, int64]{
		Begin: func(context.Context) (int64, error) {
			return c.n.Add(1), nil
		},
		Finish: func(_ context.Context, pending int64) (int64, error) {
			if c.failAfter > 0 && pending >= c.failAfter {
				return 0, errors.New("read failed")
			}
			return pending, nil
		},
	}
}

func startSampler[M, T any](t *testing.T, s *Sampler[M, T]) *Handle[T] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := s.Start(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func TestSnapshotLoadStore(t *testing.T) {
	var s Snapshot[string]
	if _, ok := s.Load(); ok {
		t.Fatal("Load() on an empty snapshot reported a value")
	}

	s.Store("a")
	if v, ok := s.Load(); !ok || v != "a" {
		t.Errorf("Load() = %q/%v, want a", v, ok)
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	c := &counterStep{}
	s := New("test", 0, c.step())
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", s.Interval(), DefaultInterval)
	}
}

func TestReadBeforeSecondTickHasNoValue(t *testing.T) {
	c := &counterStep{}
	h := startSampler(t, New("test", time.Hour, c.step()))

	if _, ok := h.Read(); ok {
		t.Error("read immediately after start reported a value")
	}

	testutil.Eventually(t, time.Second, "first tick", func() bool { return h.Ticks() >= 1 })
	if _, ok := h.Read(); ok {
		t.Error("first tick only seeds the pending measurement, want no value")
	}
}

func TestPublishesMeasurementBegunOnPreviousTick(t *testing.T) {
	c := &counterStep{}
	h := startSampler(t, New("test", 5*time.Millisecond, c.step()))

	testutil.Eventually(t, 2*time.Second, "first published value", func() bool {
		_, ok := h.Read()
		return ok
	})

	v, _ := h.Read()
	if v < 1 {
		t.Errorf("published %d, want >= 1", v)
	}
	if newest := c.n.Load(); v >= newest {
		t.Errorf("published %d, want it to lag the newest pending measurement %d", v, newest)
	}
}

func TestFailedTickKeepsPreviousValue(t *testing.T) {
	c := &counterStep{failAfter: 2}
	h := startSampler(t, New("test", 2*time.Millisecond, c.step()))

	testutil.Eventually(t, 2*time.Second, "six ticks", func() bool { return h.Ticks() >= 6 })

	v, ok := h.Read()
	if !ok {
		t.Fatal("Read() has no value after a successful tick")
	}
	if v != 1 {
		t.Errorf("Read() = %d, want 1 since only the first measurement succeeded", v)
	}
}

func TestNeverSucceedingSamplerHasNoValue(t *testing.T) {
	c := &counterStep{failAfter: 1}
	h := startSampler(t, New("test", time.Millisecond, c.step()))

	testutil.Eventually(t, 2*time.Second, "five ticks", func() bool { return h.Ticks() >= 5 })
	if v, ok := h.Read(); ok {
		t.Errorf("Read() = %d, want no value when every tick failed", v)
	}
}

func TestBeginFailureReseedsOnNextTick(t *testing.T) {
	var calls atomic.Int64
	step := Step[int64, int64]{
		Begin: func(context.Context) (int64, error) {
			n := calls.Add(1)
			if n == 1 {
				return 0, errors.New("first read failed")
			}
			return n, nil
		},
		Finish: func(_ context.Context, pending int64) (int64, error) { return pending, nil },
	}
	h := startSampler(t, New("test", time.Millisecond, step))

	testutil.Eventually(t, 2*time.Second, "value after reseed", func() bool {
		_, ok := h.Read()
		return ok
	})
	if v, _ := h.Read(); v < 2 {
		t.Errorf("Read() = %d, want >= 2", v)
	}
}

func TestPanickingStepIsRecovered(t *testing.T) {
	var calls atomic.Int64
	step := Step[int, int]{
		Begin: func(context.Context) (int, error) { return int(calls.Add(1)), nil },
		Finish: func(_ context.Context, pending int) (int, error) {
			if pending == 2 {
				panic("boom")
			}
			return pending, nil
		},
	}
	h := startSampler(t, New("test", time.Millisecond, step, WithLogger(zap.NewNop())))

	testutil.Eventually(t, 2*time.Second, "value after the panicking tick", func() bool {
		v, ok := h.Read()
		return ok && v >= 3
	})
}

func TestStartTwicePanics(t *testing.T) {
	c := &counterStep{}
	s := New("test", time.Hour, c.step())
	startSampler(t, s)

	defer func() {
		if recover() == nil {
			t.Error("second Start() did not panic")
		}
	}()
	s.Start(context.Background())
}

func TestHandleID(t *testing.T) {
	a := startSampler(t, New("a", time.Hour, (&counterStep{}).step()))
	b := startSampler(t, New("b", time.Hour, (&counterStep{}).step()))

	if a.ID() == "" {
		t.Error("ID() is empty")
	}
	if a.ID() == b.ID() {
		t.Errorf("two handles share ID %q", a.ID())
	}
}

func TestStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New("test", time.Hour, (&counterStep{}).step()).Start(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("sampler did not stop after cancel")
	}
}

type pair struct {
	A, B int
}

func TestConcurrentReadsNeverTorn(t *testing.T) {
	var n atomic.Int64
	step := Step[int, pair]{
		Begin: func(context.Context) (int, error) { return int(n.Add(1)), nil },
		Finish: func(_ context.Context, pending int) (pair, error) {
			a := pending % 100
			return pair{A: a, B: 100 - a}, nil
		},
	}
	h := startSampler(t, New("test", time.Microsecond, step))

	var wg sync.WaitGroup
	var torn atomic.Int64
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				if v, ok := h.Read(); ok && v.A+v.B != 100 {
					torn.Add(1)
				}
			}
		}()
	}
	wg.Wait()
	if n := torn.Load(); n != 0 {
		t.Errorf("%d torn reads", n)
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	published int
	failed    int
}

func (r *recordingObserver) ObserveTick(_ string, published bool, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if published {
		r.published++
	} else {
		r.failed++
	}
}

func (r *recordingObserver) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published, r.failed
}

func TestObserverSeesTicks(t *testing.T) {
	obs := &recordingObserver{}
	c := &counterStep{failAfter: 3}
	h := startSampler(t, New("test", time.Millisecond, c.step(), WithObserver(obs)))

	testutil.Eventually(t, 2*time.Second, "five ticks", func() bool { return h.Ticks() >= 5 })
	published, failed := obs.counts()
	if published != 2 {
		t.Errorf("published = %d, want 2", published)
	}
	if failed == 0 {
		t.Error("observer saw no failed ticks")
	}
}
