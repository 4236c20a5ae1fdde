package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"fvc-catalog/internal/model"
	"fvc-catalog/internal/query"
	"fvc-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.CatalogService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Categories handles GET /api/categories requests.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.ListCategories())
}

// List handles GET /api/products requests with optional q and category filters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria := query.Criteria{
		Category: r.URL.Query().Get("category"),
		Q:        r.URL.Query().Get("q"),
	}

	products, err := h.service.ListProducts(r.Context(), criteria)
	if err != nil {
		writeServiceError(w, err, "failed to read products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, err := decodeProductInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		writeServiceError(w, err, "failed to create product", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	input, err := decodeProductInput(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, err, "failed to update product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err, "failed to delete product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeProductInput reads a JSON or form-encoded product payload.
// An empty body decodes to an input with every field absent.
func decodeProductInput(w http.ResponseWriter, r *http.Request) (model.ProductInput, error) {
	var input model.ProductInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return input, fmt.Errorf("invalid form body: %w", err)
		}
		input.Category = formValue(r, "category")
		input.Name = formValue(r, "name")
		input.Brand = formValue(r, "brand")
		input.Model = formValue(r, "model")
		if price := formValue(r, "price"); price != nil {
			p := model.ParsePrice(*price)
			input.Price = &p
		}
		return input, nil
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return model.ProductInput{}, nil
		}
		return model.ProductInput{}, fmt.Errorf("invalid request body: %w", err)
	}
	return input, nil
}

func formValue(r *http.Request, key string) *string {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
