// Package registry holds the collectors built at startup and aggregates
// their documents for each request.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/HerbHall/sysstat/pkg/plugin"
)

// Info describes a registered collector.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Registry manages the set and lifecycle of registered collectors.
type Registry struct {
	mu         sync.RWMutex
	collectors map[string]plugin.Collector
	order      []string
	started    []string
	logger     *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make(map[string]plugin.Collector),
		logger:     logger,
	}
}

// Register adds a collector. Names must be non-empty and unique.
func (r *Registry) Register(c plugin.Collector) error {
	if c == nil {
		return errors.New("register: nil collector")
	}
	name := c.Name()
	if name == "" {
		return errors.New("register: collector name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.collectors[name]; exists {
		return fmt.Errorf("collector %q already registered", name)
	}
	r.collectors[name] = c
	r.order = append(r.order, name)
	r.logger.Info("collector registered", zap.String("name", name))
	return nil
}

// RegisterFactories builds and registers a collector from every factory, in
// order. deps supplies each factory's dependencies by collector name.
func (r *Registry) RegisterFactories(factories []plugin.Factory, deps func(name string) plugin.Dependencies) error {
	for _, f := range factories {
		var d plugin.Dependencies
		if deps != nil {
			d = deps(f.Name)
		}
		c, err := f.New(d)
		if err != nil {
			return fmt.Errorf("build collector %q: %w", f.Name, err)
		}
		if c.Name() != f.Name {
			return fmt.Errorf("factory %q built collector named %q", f.Name, c.Name())
		}
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a collector by name.
func (r *Registry) Get(name string) (plugin.Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[name]
	return c, ok
}

// All returns all registered collectors in registration order.
func (r *Registry) All() []plugin.Collector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]plugin.Collector, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.collectors[name])
	}
	return result
}

// Names returns the registered collector names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Infos describes every registered collector in registration order.
func (r *Registry) Infos() []Info {
	all := r.All()
	infos := make([]Info, 0, len(all))
	for _, c := range all {
		info := Info{Name: c.Name()}
		if d, ok := c.(plugin.Describer); ok {
			info.Description = d.Description()
		}
		infos = append(infos, info)
	}
	return infos
}

// StartAll starts every collector that runs background work.
func (r *Registry) StartAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		s, ok := r.collectors[name].(plugin.Starter)
		if !ok {
			continue
		}
		r.logger.Info("starting collector", zap.String("name", name))
		s.Start(ctx)
		r.started = append(r.started, name)
	}
}

// StopAll stops started collectors in reverse order.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.started) - 1; i >= 0; i-- {
		name := r.started[i]
		if s, ok := r.collectors[name].(plugin.Stopper); ok {
			r.logger.Info("stopping collector", zap.String("name", name))
			s.Stop()
		}
	}
	r.started = nil
}
