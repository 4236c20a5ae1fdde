package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"fvc-catalog/internal/config"
	"fvc-catalog/internal/model"
	"fvc-catalog/internal/query"
	"fvc-catalog/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	repo       repository.ProductRepository
	categories []string
	writer     *serialWriter // nil when writes are not serialized
	closed     atomic.Bool
	logger     zerolog.Logger
}

// NewCatalogService creates a new catalogue service.
//
// With cfg.SerializeWrites set, every create, update and delete runs its
// load-modify-save cycle on a single writer goroutine, so concurrent
// mutations cannot overwrite each other. Without it, concurrent mutations
// race and the last save wins.
func NewCatalogService(repo repository.ProductRepository, cfg config.CatalogConfig, logger zerolog.Logger) CatalogService {
	s := &catalogService{
		repo:       repo,
		categories: append([]string(nil), cfg.Categories...),
		logger:     logger.With().Str("service", "catalog").Logger(),
	}

	if cfg.SerializeWrites {
		s.writer = newSerialWriter()
	} else {
		s.logger.Warn().Msg("write serialization disabled, concurrent mutations are last-write-wins")
	}

	return s
}

// ListCategories returns a copy of the configured categories.
func (s *catalogService) ListCategories() []string {
	return append([]string(nil), s.categories...)
}

// ListProducts loads all products and filters them by the trimmed criteria.
func (s *catalogService) ListProducts(ctx context.Context, criteria query.Criteria) ([]model.Product, error) {
	criteria = query.Criteria{
		Category: strings.TrimSpace(criteria.Category),
		Q:        strings.TrimSpace(criteria.Q),
	}

	products, err := s.repo.LoadAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	filtered := query.Filter(products, criteria)

	s.logger.Debug().
		Str("category", criteria.Category).
		Str("q", criteria.Q).
		Int("total", len(products)).
		Int("matched", len(filtered)).
		Msg("listed products")

	return filtered, nil
}

// CreateProduct validates the input and appends a new product to the collection.
func (s *catalogService) CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error) {
	category := trimmed(input.Category)
	name := trimmed(input.Name)
	if category == "" || name == "" {
		s.logger.Warn().Msg("create rejected: category and name required")
		return nil, model.ErrCategoryAndNameRequired
	}

	var created model.Product
	err := s.mutate(ctx, func(ctx context.Context) error {
		products, err := s.repo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get products: %w", err)
		}

		created = model.Product{
			ID:       uuid.NewString(),
			Category: category,
			Name:     name,
			Brand:    valueOrEmpty(input.Brand),
			Model:    valueOrEmpty(input.Model),
			Price:    input.Price.Float64(),
		}

		if err := s.repo.SaveAll(ctx, append(products, created)); err != nil {
			return fmt.Errorf("failed to save products: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	s.logger.Info().Str("product_id", created.ID).Msg("product created")
	return &created, nil
}

// UpdateProduct merges the present input fields into the stored product.
func (s *catalogService) UpdateProduct(ctx context.Context, id string, input model.ProductInput) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}
	if (input.Category != nil && trimmed(input.Category) == "") ||
		(input.Name != nil && trimmed(input.Name) == "") {
		s.logger.Warn().Str("product_id", id).Msg("update rejected: blank category or name")
		return nil, model.ErrCategoryAndNameRequired
	}

	var updated model.Product
	err := s.mutate(ctx, func(ctx context.Context) error {
		products, err := s.repo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get products: %w", err)
		}

		idx := indexOf(products, id)
		if idx < 0 {
			return model.ErrProductNotFound
		}

		updated = applyInput(products[idx], input)
		products[idx] = updated

		if err := s.repo.SaveAll(ctx, products); err != nil {
			return fmt.Errorf("failed to save products: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("product_id", id).Msg("product not found")
		} else {
			s.logger.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		}
		return nil, err
	}

	s.logger.Info().Str("product_id", id).Msg("product updated")
	return &updated, nil
}

// DeleteProduct removes the product, keeping the order of the others.
func (s *catalogService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return model.ErrProductNotFound
	}

	err := s.mutate(ctx, func(ctx context.Context) error {
		products, err := s.repo.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to get products: %w", err)
		}

		idx := indexOf(products, id)
		if idx < 0 {
			return model.ErrProductNotFound
		}

		remaining := make([]model.Product, 0, len(products)-1)
		remaining = append(remaining, products[:idx]...)
		remaining = append(remaining, products[idx+1:]...)

		if err := s.repo.SaveAll(ctx, remaining); err != nil {
			return fmt.Errorf("failed to save products: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Debug().Str("product_id", id).Msg("product not found")
		} else {
			s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		}
		return err
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

// Close stops accepting mutations.
func (s *catalogService) Close() {
	s.closed.Store(true)
	if s.writer != nil {
		s.writer.Close()
	}
}

// mutate runs fn on the single writer, or directly when writes are not serialized.
func (s *catalogService) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.closed.Load() {
		return model.ErrServiceClosed
	}
	if s.writer == nil {
		return fn(ctx)
	}
	return s.writer.Do(ctx, fn)
}

func applyInput(p model.Product, input model.ProductInput) model.Product {
	if input.Category != nil {
		p.Category = strings.TrimSpace(*input.Category)
	}
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		p.Brand = *input.Brand
	}
	if input.Model != nil {
		p.Model = *input.Model
	}
	if input.Price != nil {
		p.Price = input.Price.Float64()
	}
	return p
}

func indexOf(products []model.Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func valueOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
