package plugin

import (
	"fmt"
	"sync"
)

var (
	factoriesMu sync.Mutex
	factories   []Factory
	factoryIdx  = make(map[string]bool)
)

// Register makes a collector factory available to the server. Collector
// modules call it from init; importing the module is what compiles it in.
// Register panics if the name is empty, New is nil, or the name is already
// registered.
func Register(f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if f.Name == "" {
		panic("plugin: Register with empty collector name")
	}
	if f.New == nil {
		panic(fmt.Sprintf("plugin: Register %q with nil constructor", f.Name))
	}
	if factoryIdx[f.Name] {
		panic(fmt.Sprintf("plugin: Register called twice for collector %q", f.Name))
	}
	factoryIdx[f.Name] = true
	factories = append(factories, f)
}

// Factories returns the registered factories in registration order.
func Factories() []Factory {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	return append([]Factory(nil), factories...)
}
