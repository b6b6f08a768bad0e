package plugin

import "errors"

// Error kinds shared by collectors and the aggregator. Wrap them with %w and
// test with errors.Is.
var (
	// ErrOSQuery means one metric could not be read from the operating system.
	ErrOSQuery = errors.New("os query failed")

	// ErrSerialization means a collector's document could not be encoded.
	ErrSerialization = errors.New("serialization failed")

	// ErrConfigShape means a plugin_config entry did not have the expected shape.
	ErrConfigShape = errors.New("unexpected config shape")
)
