// Package importer loads catalogue CSV files from disk or S3 and parses
// them into product rows ready for creation.
package importer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Loader fetches a catalogue file by path and returns its contents.
type Loader interface {
	// Load opens the file at the given path. The caller closes the reader.
	Load(ctx context.Context, path string) (io.ReadCloser, error)
}

// fileLoader implements Loader for reading catalogue files from disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalogue-loader").Logger(),
	}
}

// Load opens a catalogue file from the local filesystem.
func (l *fileLoader) Load(ctx context.Context, path string) (io.ReadCloser, error) {
	l.logger.Info().Str("file", path).Msg("loading catalogue file")

	file, err := os.Open(path)
	if err != nil {
		l.logger.Error().Err(err).Str("file", path).Msg("failed to open catalogue file")
		return nil, fmt.Errorf("failed to open catalogue file %s: %w", path, err)
	}
	return file, nil
}
