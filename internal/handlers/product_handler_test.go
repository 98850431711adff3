package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Valency12/el-xolito-storefront/internal/backend"
	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/Valency12/el-xolito-storefront/internal/view"
	"github.com/Valency12/el-xolito-storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// fakeFetcher serves canned backend records.
type fakeFetcher struct {
	products   map[string]backend.ProductDTO
	categories []backend.CategoryDTO
}

func (f *fakeFetcher) Product(ctx context.Context, id string) (backend.ProductDTO, error) {
	dto, ok := f.products[id]
	if !ok {
		return backend.ProductDTO{}, backend.ErrNotFound
	}
	return dto, nil
}

func (f *fakeFetcher) Products(ctx context.Context, filter backend.ProductFilter) ([]backend.ProductDTO, error) {
	out := make([]backend.ProductDTO, 0, len(f.products))
	for _, dto := range f.products {
		out = append(out, dto)
	}
	return out, nil
}

func (f *fakeFetcher) Categories(ctx context.Context) ([]backend.CategoryDTO, error) {
	return f.categories, nil
}

func newProductRouter(t *testing.T) *chi.Mux {
	t.Helper()

	fetcher := &fakeFetcher{
		products: map[string]backend.ProductDTO{
			"p1": {ID: "p1", Nombre: "Alebrije Tote", Precio: json.Number("150.00"), Categoria: "bolsas"},
			"p2": {ID: "p2", Nombre: "Talavera Mug", Precio: json.Number("80.00"), Categoria: "cocina"},
		},
		categories: []backend.CategoryDTO{
			{Slug: "bolsas", Nombre: "Bolsas", Orden: 1},
			{Slug: "cocina", Nombre: "Cocina", Orden: 2},
		},
	}
	cache := catalog.NewCache(fetcher, logger.New("error"))
	if err := cache.LoadAll(context.Background(), backend.ProductFilter{}); err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	handler := NewProductHandler(cache, logger.New("error"))
	r := chi.NewRouter()
	r.Get("/api/products", handler.ListProducts)
	r.Get("/api/products/{productId}", handler.GetProduct)
	r.Get("/api/categories", handler.ListCategories)
	return r
}

func TestProductHandler_ListProducts(t *testing.T) {
	router := newProductRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var items []view.GridItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 products, got %d", len(items))
	}
}

func TestProductHandler_ListProducts_CategoryFilter(t *testing.T) {
	router := newProductRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=bolsas", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var items []view.GridItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 product in bolsas, got %d", len(items))
	}
	if items[0].Name != "Alebrije Tote" {
		t.Errorf("expected Alebrije Tote, got %s", items[0].Name)
	}
}

func TestProductHandler_GetProduct(t *testing.T) {
	router := newProductRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/p2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var item view.GridItem
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if item.Name != "Talavera Mug" {
		t.Errorf("expected Talavera Mug, got %s", item.Name)
	}
	if item.Price != "$80.00" {
		t.Errorf("expected formatted price $80.00, got %s", item.Price)
	}
}

func TestProductHandler_GetProduct_NotFound(t *testing.T) {
	router := newProductRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/ghost", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestProductHandler_ListCategories(t *testing.T) {
	router := newProductRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var tabs []view.CategoryTab
	if err := json.NewDecoder(w.Body).Decode(&tabs); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(tabs))
	}
	if tabs[0].Slug != "bolsas" {
		t.Errorf("expected bolsas first by sort order, got %s", tabs[0].Slug)
	}
}
