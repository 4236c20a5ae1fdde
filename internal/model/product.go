package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Product represents a single entry in the catalogue.
type Product struct {
	ID       string  `json:"id" db:"id"`
	Category string  `json:"category" db:"category"`
	Name     string  `json:"name" db:"name"`
	Brand    string  `json:"brand" db:"brand"`
	Model    string  `json:"model" db:"model"`
	Price    float64 `json:"price" db:"price"`
}

// ProductInput represents the request payload for creating or updating a product.
// A nil field means the attribute was absent (or null) in the request.
type ProductInput struct {
	Category *string `json:"category,omitempty"`
	Name     *string `json:"name,omitempty"`
	Brand    *string `json:"brand,omitempty"`
	Model    *string `json:"model,omitempty"`
	Price    *Price  `json:"price,omitempty"`
}

// Price is a loosely typed numeric value. It decodes from a JSON number,
// a numeric string or a boolean; anything else decodes to zero.
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch val := v.(type) {
	case float64:
		*p = Price(finiteOrZero(val))
	case string:
		*p = ParsePrice(val)
	case bool:
		if val {
			*p = 1
		} else {
			*p = 0
		}
	default:
		*p = 0
	}
	return nil
}

// ParsePrice coerces a string to a price. Blank strings and strings that are
// not valid finite numbers yield zero.
func ParsePrice(s string) Price {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return Price(finiteOrZero(f))
}

// Float64 returns the price as a float64.
func (p *Price) Float64() float64 {
	if p == nil {
		return 0
	}
	return float64(*p)
}

func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// PricePtr returns a pointer to a Price holding f.
func PricePtr(f float64) *Price {
	p := Price(f)
	return &p
}
