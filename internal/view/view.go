// Package view projects ledger and cache state into renderable models. The
// projection is pure: it reads, formats and groups, and never mutates or
// fetches. It is re-run by the ledger's change hook after every mutation.
package view

import (
	"fmt"
	"net/url"

	"github.com/Valency12/el-xolito-storefront/internal/cart"
	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// CartLine is one rendered cart row.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Subtotal  string `json:"subtotal"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

// Cart is the rendered cart.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	Total     string     `json:"total"`
	ItemCount int        `json:"itemCount"`
	Empty     bool       `json:"empty"`
}

// GridItem is one rendered product card.
type GridItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Category  string `json:"category"`
	Material  string `json:"material,omitempty"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image"`
	Featured  bool   `json:"featured"`
}

// CategoryTab is one rendered category filter entry, in sort order.
type CategoryTab struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// BuildCart projects the ledger into its rendered form.
func BuildCart(ledger *cart.Ledger) Cart {
	lines := ledger.Lines()

	out := Cart{
		Lines:     make([]CartLine, 0, len(lines)),
		Total:     FormatPrice(ledger.Total()),
		ItemCount: ledger.ItemCount(),
		Empty:     len(lines) == 0,
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, CartLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     FormatPrice(l.Price),
			Subtotal:  FormatPrice(l.Subtotal()),
			Image:     imageOrPlaceholder(l.Image, l.Name),
			Quantity:  l.Quantity,
		})
	}
	return out
}

// BuildGrid projects a product set into product cards.
func BuildGrid(products []catalog.Product) []GridItem {
	out := make([]GridItem, 0, len(products))
	for _, p := range products {
		out = append(out, GridItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     FormatPrice(p.Price),
			Category:  p.Category,
			Material:  p.Material,
			Color:     p.Color,
			Image:     imageOrPlaceholder(p.ImageURL, p.Name),
			Featured:  p.Featured,
		})
	}
	return out
}

// BuildCategoryTabs projects the category list, which the cache already
// holds in sort order.
func BuildCategoryTabs(categories []catalog.Category) []CategoryTab {
	out := make([]CategoryTab, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryTab{Slug: c.Slug, Name: c.Name})
	}
	return out
}

// FormatPrice renders a money amount with currency sign and two decimals.
func FormatPrice(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// imageOrPlaceholder substitutes a generated placeholder for products that
// ship without an image.
func imageOrPlaceholder(image, name string) string {
	if image != "" {
		return image
	}
	return fmt.Sprintf("https://placehold.co/400x400?text=%s", url.QueryEscape(name))
}
