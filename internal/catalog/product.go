// Package catalog resolves product identifiers to displayable records. It
// owns the canonical Product/Category shapes and the single adapter that maps
// backend-schema records into them; nothing outside this package sees backend
// field names.
package catalog

import (
	"errors"
	"fmt"

	"github.com/Valency12/el-xolito-storefront/internal/backend"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRecord is returned when a backend record fails adaptation.
	ErrInvalidRecord = errors.New("invalid catalog record")
)

// Product is the canonical, display-ready product record.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Material    string          `json:"material,omitempty"`
	Color       string          `json:"color,omitempty"`
	// ImageURL may be empty; the view layer substitutes a placeholder.
	ImageURL string `json:"imageUrl,omitempty"`
	Featured bool   `json:"featured"`
}

// Category is the canonical category record.
type Category struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	SortOrder   int    `json:"sortOrder"`
}

// FromBackend maps a backend-shaped product record into the canonical shape.
// This is the only place backend product fields are interpreted. The record
// is validated: a missing id or name, or a price that is not a non-negative
// decimal, rejects the whole record.
func FromBackend(dto backend.ProductDTO) (Product, error) {
	if dto.ID == "" {
		return Product{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if dto.Nombre == "" {
		return Product{}, fmt.Errorf("%w: product %s has no name", ErrInvalidRecord, dto.ID)
	}

	price, err := decimal.NewFromString(dto.Precio.String())
	if err != nil {
		return Product{}, fmt.Errorf("%w: product %s has unparseable price %q", ErrInvalidRecord, dto.ID, dto.Precio)
	}
	if price.IsNegative() {
		return Product{}, fmt.Errorf("%w: product %s has negative price %s", ErrInvalidRecord, dto.ID, price)
	}

	return Product{
		ID:          dto.ID,
		Name:        dto.Nombre,
		Description: dto.Descripcion,
		Price:       price,
		Category:    dto.Categoria,
		Material:    dto.Material,
		Color:       dto.Color,
		ImageURL:    dto.ImagenURL,
		Featured:    dto.Destacado == 1,
	}, nil
}

// CategoryFromBackend maps a backend-shaped category record.
func CategoryFromBackend(dto backend.CategoryDTO) (Category, error) {
	if dto.Slug == "" {
		return Category{}, fmt.Errorf("%w: missing category slug", ErrInvalidRecord)
	}
	if dto.Nombre == "" {
		return Category{}, fmt.Errorf("%w: category %s has no name", ErrInvalidRecord, dto.Slug)
	}

	return Category{
		Slug:        dto.Slug,
		Name:        dto.Nombre,
		Description: dto.Descripcion,
		ImageURL:    dto.ImagenURL,
		SortOrder:   dto.Orden,
	}, nil
}
