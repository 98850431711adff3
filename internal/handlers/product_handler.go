package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/Valency12/el-xolito-storefront/internal/view"
	"github.com/go-chi/chi/v5"
)

// ProductHandler serves the product grid and single-product lookups out of
// the catalog cache.
type ProductHandler struct {
	cache  *catalog.Cache
	logger *slog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(cache *catalog.Cache, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{cache: cache, logger: logger}
}

// ListProducts handles GET /api/products
// Optional ?category=<slug> narrows the grid. Served entirely from cache; an
// empty grid is a valid response, never an error.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.cache.Products()

	if slug := r.URL.Query().Get("category"); slug != "" {
		filtered := products[:0]
		for _, p := range products {
			if p.Category == slug {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	writeJSON(w, http.StatusOK, view.BuildGrid(products), h.logger)
}

// GetProduct handles GET /api/products/{productId}
// Resolves through the cache, falling back to the backend for uncached ids.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	p, ok := h.cache.Get(r.Context(), productID)
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found", h.logger)
		return
	}

	items := view.BuildGrid([]catalog.Product{p})
	writeJSON(w, http.StatusOK, items[0], h.logger)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.BuildCategoryTabs(h.cache.Categories()), h.logger)
}
