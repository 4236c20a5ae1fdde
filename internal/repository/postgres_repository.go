package repository

import (
	"context"
	"errors"
	"fmt"

	"fvc-catalog/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productsTable = "catalog_products"

const createProductsTable = `
	CREATE TABLE IF NOT EXISTS catalog_products (
		id       TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		category TEXT NOT NULL,
		name     TEXT NOT NULL,
		brand    TEXT NOT NULL DEFAULT '',
		model    TEXT NOT NULL DEFAULT '',
		price    DOUBLE PRECISION NOT NULL DEFAULT 0
	)
`

var productColumns = []string{"id", "position", "category", "name", "brand", "model", "price"}

// postgresRepository implements ProductRepository using PostgreSQL.
// The collection is replaced inside a single transaction on every save.
type postgresRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgresRepository creates a new PostgreSQL-backed product repository.
func NewPostgresRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &postgresRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "postgres").Logger(),
	}
}

// Initialize creates the products table and seeds it when the table did not exist.
func (r *postgresRepository) Initialize(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("%w: begin transaction: %w", model.ErrStorageWrite, err)
	}
	defer rollback(ctx, tx, r.logger)

	var exists bool
	if err := tx.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", productsTable).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Msg("failed to check products table")
		return fmt.Errorf("%w: check products table: %w", model.ErrStorageRead, err)
	}
	if exists {
		r.logger.Debug().Msg("products table already exists")
		return nil
	}

	if _, err := tx.Exec(ctx, createProductsTable); err != nil {
		r.logger.Error().Err(err).Msg("failed to create products table")
		return fmt.Errorf("%w: create products table: %w", model.ErrStorageWrite, err)
	}

	seed := SeedProducts()
	if err := r.insertAll(ctx, tx, seed); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("%w: commit: %w", model.ErrStorageWrite, err)
	}

	r.logger.Info().Int("count", len(seed)).Msg("products table created with seed products")
	return nil
}

// LoadAll retrieves every product ordered by its stored position.
func (r *postgresRepository) LoadAll(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT id, category, name, brand, model, price
		FROM catalog_products
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("%w: query products: %w", model.ErrStorageRead, err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.Brand, &p.Model, &p.Price); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("%w: scan product: %w", model.ErrStorageRead, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("%w: iterate products: %w", model.ErrStorageRead, err)
	}

	return products, nil
}

// SaveAll replaces the table contents with the collection in one transaction.
func (r *postgresRepository) SaveAll(ctx context.Context, products []model.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("%w: begin transaction: %w", model.ErrStorageWrite, err)
	}
	defer rollback(ctx, tx, r.logger)

	if _, err := tx.Exec(ctx, "DELETE FROM catalog_products"); err != nil {
		r.logger.Error().Err(err).Msg("failed to clear products")
		return fmt.Errorf("%w: clear products: %w", model.ErrStorageWrite, err)
	}

	if err := r.insertAll(ctx, tx, products); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("%w: commit: %w", model.ErrStorageWrite, err)
	}

	r.logger.Debug().Int("count", len(products)).Msg("products saved")
	return nil
}

func (r *postgresRepository) insertAll(ctx context.Context, tx pgx.Tx, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	source := pgx.CopyFromSlice(len(products), func(i int) ([]any, error) {
		p := products[i]
		return []any{p.ID, i, p.Category, p.Name, p.Brand, p.Model, p.Price}, nil
	})

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{productsTable}, productColumns, source); err != nil {
		r.logger.Error().Err(err).Int("count", len(products)).Msg("failed to insert products")
		return fmt.Errorf("%w: insert products: %w", model.ErrStorageWrite, err)
	}
	return nil
}

func rollback(ctx context.Context, tx pgx.Tx, logger zerolog.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.Warn().Err(err).Msg("failed to roll back transaction")
	}
}
