package sampler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// DefaultInterval is the tick interval used when New is given a non-positive one.
const DefaultInterval = 5 * time.Second

// Step is a measurement that needs two reads separated in time. Begin takes
// the first read; Finish takes the second and turns the pair into a value.
type Step[M, T any] struct {
	Begin  func(ctx context.Context) (M, error)
	Finish func(ctx context.Context, pending M) (T, error)
}

// Sampler is an unstarted periodic sampler.
type Sampler[M, T any] struct {
	name     string
	interval time.Duration
	step     Step[M, T]
	logger   *zap.Logger
	observer plugin.TickObserver
	started  atomic.Bool
}

// Option configures a Sampler.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	observer plugin.TickObserver
}

// WithLogger sets the logger used for failed ticks.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver reports every tick to obs.
func WithObserver(obs plugin.TickObserver) Option {
	return func(o *options) { o.observer = obs }
}

// New configures a sampler. Nothing runs until Start.
func New[M, T any](name string, interval time.Duration, step Step[M, T], opts ...Option) *Sampler[M, T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler[M, T]{
		name:     name,
		interval: interval,
		step:     step,
		logger:   o.logger,
		observer: o.observer,
	}
}

// Interval returns the pause between the end of one tick and the start of the next.
func (s *Sampler[M, T]) Interval() time.Duration { return s.interval }

// Handle is the reader side of a started sampler.
type Handle[T any] struct {
	id    string
	snap  Snapshot[T]
	ticks atomic.Uint64
	done  chan struct{}
}

// Read returns the latest published value without blocking the sampler.
// ok is false until a tick has published.
func (h *Handle[T]) Read() (T, bool) { return h.snap.Load() }

// ID identifies the background goroutine in logs.
func (h *Handle[T]) ID() string { return h.id }

// Done is closed once the background goroutine has exited.
func (h *Handle[T]) Done() <-chan struct{} { return h.done }

// Ticks returns the number of completed ticks.
func (h *Handle[T]) Ticks() uint64 { return h.ticks.Load() }

// Start launches the background goroutine. It runs until ctx is cancelled.
// A Sampler can be started once.
func (s *Sampler[M, T]) Start(ctx context.Context) *Handle[T] {
	if !s.started.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("sampler %q started twice", s.name))
	}

	h := &Handle[T]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
	s.logger.Debug("sampler starting",
		zap.String("sampler", s.name),
		zap.String("id", h.id),
		zap.Duration("interval", s.interval),
	)
	go s.run(ctx, h)
	return h
}

func (s *Sampler[M, T]) run(ctx context.Context, h *Handle[T]) {
	defer close(h.done)

	// pending is owned by this goroutine; readers only ever see h.snap.
	var pending *M

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("sampler stopped", zap.String("sampler", s.name), zap.String("id", h.id))
			return
		case <-timer.C:
		}

		pending = s.tick(ctx, h, pending)
		h.ticks.Add(1)
		timer.Reset(s.interval)
	}
}

// tick finishes the measurement begun on the previous tick, publishing it on
// success, then begins the next one.
func (s *Sampler[M, T]) tick(ctx context.Context, h *Handle[T], pending *M) *M {
	if pending != nil {
		v, err := s.finish(ctx, *pending)
		if err != nil {
			s.logger.Warn("sampler tick failed, keeping previous value",
				zap.String("sampler", s.name), zap.Error(err))
		} else {
			h.snap.Store(v)
		}
		s.observe(err == nil, err)
	}

	m, err := s.begin(ctx)
	if err != nil {
		s.logger.Warn("sampler could not start measurement",
			zap.String("sampler", s.name), zap.Error(err))
		if pending == nil {
			s.observe(false, err)
		}
		return nil
	}
	return &m
}

func (s *Sampler[M, T]) observe(published bool, err error) {
	if s.observer != nil {
		s.observer.ObserveTick(s.name, published, err)
	}
}

func (s *Sampler[M, T]) begin(ctx context.Context) (m M, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("sampler begin panicked: %v\n%s", v, debug.Stack())
		}
	}()
	return s.step.Begin(ctx)
}

func (s *Sampler[M, T]) finish(ctx context.Context, pending M) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sampler finish panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return s.step.Finish(ctx, pending)
}
