package capability

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Registry holds the capability set of one device session. The set is
// queried from the device once, at construction. Only the charset may be
// pinned afterwards, before the session starts using it.
type Registry struct {
	set    Set
	logger zerolog.Logger
}

// NewRegistry queries src for its capabilities and caches them for the
// session. A device that cannot report its capabilities cannot be used.
func NewRegistry(ctx context.Context, src Source, logger zerolog.Logger) (*Registry, error) {
	logger = logger.With().Str("component", "capability-registry").Logger()

	set, err := src.Capabilities(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("device did not report its capabilities")
		return nil, fmt.Errorf("failed to query device capabilities: %w", err)
	}

	if err := set.Validate(); err != nil {
		logger.Error().Err(err).Str("model", set.Model).Msg("device reported an unusable capability set")
		return nil, fmt.Errorf("invalid device capabilities: %w", err)
	}

	logger.Info().
		Str("model", set.Model).
		Str("charset", set.Charset).
		Int("units", len(set.Units)).
		Int("payment_methods", len(set.PaymentMethods)).
		Int("arguments", len(set.Arguments)).
		Msg("device capabilities cached")

	return &Registry{
		set:    set.Clone(),
		logger: logger,
	}, nil
}

// Capabilities returns a copy of the cached capability set.
func (r *Registry) Capabilities() Set {
	return r.set.Clone()
}

// OverrideCharset replaces the reported charset with the code page the
// driver actually encodes with. An empty name keeps the reported one.
func (r *Registry) OverrideCharset(name string) {
	if name == "" || name == r.set.Charset {
		return
	}
	r.logger.Info().
		Str("reported", r.set.Charset).
		Str("charset", name).
		Msg("device charset overridden")
	r.set.Charset = name
}
