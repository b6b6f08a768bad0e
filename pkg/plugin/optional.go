package plugin

import "context"

// Starter is implemented by collectors that own background work, such as a
// periodic sampler. Start must not block.
type Starter interface {
	Start(ctx context.Context)
}

// Stopper is implemented by collectors that need to release background work.
// Stop blocks until the work has exited.
type Stopper interface {
	Stop()
}

// Describer is implemented by collectors that provide a human-readable summary.
type Describer interface {
	Description() string
}
