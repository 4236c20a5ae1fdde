// Package query filters product collections in memory.
package query

import (
	"strings"

	"fvc-catalog/internal/model"
)

// Criteria holds the filters applied to a product list. Empty fields are ignored.
type Criteria struct {
	// Category keeps only products whose category equals it exactly.
	Category string
	// Q keeps only products whose name, brand or model contains it, ignoring case.
	Q string
}

// IsEmpty reports whether the criteria filter nothing.
func (c Criteria) IsEmpty() bool {
	return c.Category == "" && c.Q == ""
}

// Filter returns the products matching all non-empty criteria, in input order.
// The input slice is not modified.
func Filter(products []model.Product, c Criteria) []model.Product {
	q := strings.ToLower(c.Q)

	filtered := make([]model.Product, 0, len(products))
	for _, p := range products {
		if matches(p, c.Category, q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matches(p model.Product, category, lowerQ string) bool {
	if category != "" && p.Category != category {
		return false
	}
	if lowerQ == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), lowerQ) ||
		strings.Contains(strings.ToLower(p.Brand), lowerQ) ||
		strings.Contains(strings.ToLower(p.Model), lowerQ)
}
