package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"fvc-catalog/internal/model"

	"github.com/rs/zerolog"
)

// fileRepository implements ProductRepository on a single JSON file.
type fileRepository struct {
	path   string
	logger zerolog.Logger
}

// NewFileRepository creates a new JSON-file-backed product repository.
func NewFileRepository(path string, logger zerolog.Logger) ProductRepository {
	return &fileRepository{
		path:   path,
		logger: logger.With().Str("repository", "file").Str("file", path).Logger(),
	}
}

// Initialize creates the data directory and seeds the file when it does not exist.
func (r *fileRepository) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		r.logger.Error().Err(err).Msg("failed to create data directory")
		return fmt.Errorf("%w: create data directory: %w", model.ErrStorageWrite, err)
	}

	_, err := os.Stat(r.path)
	if err == nil {
		r.logger.Debug().Msg("data file already exists")
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		r.logger.Error().Err(err).Msg("failed to stat data file")
		return fmt.Errorf("%w: stat %s: %w", model.ErrStorageRead, r.path, err)
	}

	seed := SeedProducts()
	if err := r.SaveAll(ctx, seed); err != nil {
		return err
	}

	r.logger.Info().Int("count", len(seed)).Msg("data file created with seed products")
	return nil
}

// LoadAll reads and parses the whole file.
func (r *fileRepository) LoadAll(ctx context.Context) ([]model.Product, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read data file")
		return nil, fmt.Errorf("%w: read %s: %w", model.ErrStorageRead, r.path, err)
	}

	products, err := decodeProducts(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to parse data file")
		return nil, fmt.Errorf("%w: parse %s: %w", model.ErrStorageRead, r.path, err)
	}

	return products, nil
}

// SaveAll writes the collection to a temporary file in the same directory and
// renames it over the data file, so readers never observe a partial write.
func (r *fileRepository) SaveAll(ctx context.Context, products []model.Product) error {
	data, err := encodeProducts(products)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrStorageWrite, err)
	}

	if err := r.writeAtomic(data); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to write data file")
		return fmt.Errorf("%w: write %s: %w", model.ErrStorageWrite, r.path, err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("data file written")
	return nil
}

func (r *fileRepository) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Remove the temporary file on any failure path; after a successful
	// rename it no longer exists.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}

	return os.Rename(tmpName, r.path)
}
