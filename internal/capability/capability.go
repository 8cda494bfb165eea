// Package capability describes what a fiscal device model accepts: value
// ranges, digit counts, text lengths, units and payment methods.
package capability

import (
	"context"
)

// Source reports the capability set of a device. Drivers implement it.
type Source interface {
	// Capabilities returns the capability set of the connected device.
	Capabilities(ctx context.Context) (Set, error)
}

// Loader defines the interface for loading capability profiles.
type Loader interface {
	// Load reads a JSON capability profile (gzipped when the name ends in
	// .gz) and returns the validated Set.
	Load(ctx context.Context, path string) (Set, error)
}
