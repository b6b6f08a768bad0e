// Package sampler runs a measurement on a fixed cadence in one background
// goroutine and publishes the latest completed result for concurrent readers.
package sampler

import "sync/atomic"

// Snapshot holds the last published value of a sampler. It has a single
// writer and any number of readers; a reader sees either the previous or the
// next value, never a partial one.
type Snapshot[T any] struct {
	p atomic.Pointer[T]
}

// Load returns the published value, or ok=false if nothing was published yet.
func (s *Snapshot[T]) Load() (v T, ok bool) {
	p := s.p.Load()
	if p == nil {
		return v, false
	}
	return *p, true
}

// Store publishes v. The caller must not modify v afterwards.
func (s *Snapshot[T]) Store(v T) {
	s.p.Store(&v)
}
