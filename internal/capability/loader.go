package capability

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for capability profiles on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based capability profile loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "capability-loader").Logger(),
	}
}

// Load reads a capability profile from the local file system.
func (l *fileLoader) Load(ctx context.Context, path string) (Set, error) {
	l.logger.Info().Str("file", path).Msg("loading capability profile")

	if err := ctx.Err(); err != nil {
		return Set{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open capability profile")
		return Set{}, fmt.Errorf("failed to open capability profile %s: %w", path, err)
	}
	defer file.Close()

	set, err := decodeProfile(file, path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("invalid capability profile")
		return Set{}, err
	}

	l.logger.Info().
		Str("file", path).
		Str("model", set.Model).
		Int("arguments", len(set.Arguments)).
		Msg("capability profile loaded successfully")

	return set, nil
}

// decodeProfile decodes and validates a JSON profile, transparently
// decompressing it when name ends in .gz.
func decodeProfile(r io.Reader, name string) (Set, error) {
	if strings.HasSuffix(name, ".gz") {
		gzipReader, err := gzip.NewReader(r)
		if err != nil {
			return Set{}, fmt.Errorf("failed to create gzip reader for %s: %w", name, err)
		}
		defer gzipReader.Close()
		r = gzipReader
	}

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var set Set
	if err := decoder.Decode(&set); err != nil {
		return Set{}, fmt.Errorf("failed to decode capability profile %s: %w", name, err)
	}

	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("invalid capability profile %s: %w", name, err)
	}

	return set, nil
}
