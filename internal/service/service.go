package service

import (
	"context"

	"fvc-catalog/internal/model"
	"fvc-catalog/internal/query"
)

// CatalogService defines operations for catalogue management.
type CatalogService interface {
	// ListCategories returns the configured category names.
	ListCategories() []string

	// ListProducts returns the stored products matching the criteria, in stored order.
	ListProducts(ctx context.Context, criteria query.Criteria) ([]model.Product, error)

	// CreateProduct validates the input, assigns a new id and appends the product.
	CreateProduct(ctx context.Context, input model.ProductInput) (*model.Product, error)

	// UpdateProduct replaces the fields present in the input, keeping the others.
	UpdateProduct(ctx context.Context, id string, input model.ProductInput) (*model.Product, error)

	// DeleteProduct removes the product with the given id.
	DeleteProduct(ctx context.Context, id string) error

	// Close stops accepting mutations and waits for the one in progress.
	Close()
}
