// Package plugin defines the contract every sysstat collector implements.
//
// A collector is a named source of one JSON document. The server builds a
// StatsConfig for each request, hands it to every registered collector and
// merges the documents under the collectors' names.
package plugin

import (
	"context"

	"go.uber.org/zap"
)

// Collector produces one JSON-serializable document describing a metric family.
type Collector interface {
	// Name returns the collector's unique identifier (e.g., "mem_stats").
	// It is used as the key of the collector's document in the response.
	Name() string

	// Collect builds the collector's document for one request. It must be
	// safe for concurrent use. OS query failures should surface as null or
	// absent fields in the document; an error return drops the whole document.
	Collect(ctx context.Context, cfg *StatsConfig) (any, error)
}

// TickObserver receives the outcome of every background sampling tick.
type TickObserver interface {
	ObserveTick(name string, published bool, err error)
}

// Dependencies carries what a Factory needs to construct a collector.
type Dependencies struct {
	Logger *zap.Logger

	// Config is the collector's own section of plugin_config (None if absent).
	Config ConfigValue

	// Observer may be nil.
	Observer TickObserver
}

// Factory constructs a collector at startup.
type Factory struct {
	Name string
	New  func(deps Dependencies) (Collector, error)
}
