package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"fvc-catalog/internal/model"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for persisting the product collection.
// The collection is always read and written as a whole, in order.
type ProductRepository interface {
	// Initialize ensures the backing document exists, creating it with the
	// seed products when absent. An existing document is left untouched.
	Initialize(ctx context.Context) error

	// LoadAll reads the whole collection in stored order.
	// Failures wrap model.ErrStorageRead.
	LoadAll(ctx context.Context) ([]model.Product, error)

	// SaveAll replaces the whole collection.
	// Failures wrap model.ErrStorageWrite.
	SaveAll(ctx context.Context, products []model.Product) error
}

// SeedProducts returns the sample products written to a fresh store.
// Each call generates new ids.
func SeedProducts() []model.Product {
	return []model.Product{
		{
			ID:       uuid.NewString(),
			Category: "ไฟฟ้า",
			Name:     "ตู้ไฟ MDB 400A",
			Brand:    "FVC",
			Model:    "MDB-400A",
			Price:    185000,
		},
		{
			ID:       uuid.NewString(),
			Category: "เครื่องกล",
			Name:     "ปั๊มน้ำหอยโข่ง 5HP",
			Brand:    "Mitsubishi",
			Model:    "ECO-5HP",
			Price:    42000,
		},
		{
			ID:       uuid.NewString(),
			Category: "โยธา",
			Name:     "คอนกรีตผสมเสร็จ 240 KSC",
			Brand:    "CPAC",
			Model:    "CP240",
			Price:    1900,
		},
	}
}

// encodeProducts renders the collection as an indented JSON array.
func encodeProducts(products []model.Product) ([]byte, error) {
	if products == nil {
		products = []model.Product{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("failed to encode products: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeProducts parses a JSON array of products. A JSON null decodes to an empty collection.
func decodeProducts(data []byte) ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}
