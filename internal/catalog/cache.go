package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/Valency12/el-xolito-storefront/internal/backend"
	"github.com/bits-and-blooms/bloom/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Expected scale of the id space the negative filter tracks. False positives
// only suppress a refetch after a cache miss, so the rate can be generous.
const (
	missingFilterCapacity = 10000
	missingFilterFPRate   = 0.001
)

// Fetcher is the slice of the backend client the cache needs.
type Fetcher interface {
	Product(ctx context.Context, id string) (backend.ProductDTO, error)
	Products(ctx context.Context, filter backend.ProductFilter) ([]backend.ProductDTO, error)
	Categories(ctx context.Context) ([]backend.CategoryDTO, error)
}

// Cache is an in-memory view of the remote catalog, lazily populated.
// Lookups prefer the cache; misses fall through to the backend with in-flight
// deduplication, so concurrent lookups of the same uncached id issue a single
// fetch. Ids the backend has reported as unknown are remembered in a bloom
// filter and not refetched.
//
// Remote failures degrade to "absent": callers cannot distinguish a network
// error from an unknown id, which is deliberate — both render the same
// placeholder state. The logs tell them apart.
type Cache struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu         sync.RWMutex
	products   map[string]Product
	categories []Category
	missing    *bloom.BloomFilter

	flight singleflight.Group
}

// NewCache creates an empty cache over the given fetcher.
func NewCache(fetcher Fetcher, logger *slog.Logger) *Cache {
	return &Cache{
		fetcher:  fetcher,
		logger:   logger,
		products: make(map[string]Product),
		missing:  bloom.NewWithEstimates(missingFilterCapacity, missingFilterFPRate),
	}
}

// Get resolves a product id to its display record. The boolean is false when
// the id is unknown or the backend is unreachable; the caller renders the
// same empty state either way.
func (c *Cache) Get(ctx context.Context, id string) (Product, bool) {
	if id == "" {
		return Product{}, false
	}

	c.mu.RLock()
	p, hit := c.products[id]
	dead := c.missing.TestString(id)
	c.mu.RUnlock()

	if hit {
		return p, true
	}
	if dead {
		c.logger.Debug("product known missing, skipping fetch", "product_id", id)
		return Product{}, false
	}

	// Concurrent misses for the same id share one backend call.
	v, err, _ := c.flight.Do(id, func() (any, error) {
		dto, err := c.fetcher.Product(ctx, id)
		if err != nil {
			return nil, err
		}
		return FromBackend(dto)
	})
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			c.logger.Debug("product not found in catalog", "product_id", id)
			c.mu.Lock()
			c.missing.AddString(id)
			c.mu.Unlock()
		} else {
			c.logger.Warn("product lookup failed", "product_id", id, "error", err)
		}
		return Product{}, false
	}

	p = v.(Product)
	c.mu.Lock()
	c.products[p.ID] = p
	c.mu.Unlock()
	return p, true
}

// LoadAll bulk-loads the active product set and the category list, priming
// the cache so the visible catalog resolves without further remote calls.
// Products and categories load concurrently; a failure of either leaves the
// cache usable (lazy Get still works) and is reported for logging.
func (c *Cache) LoadAll(ctx context.Context, filter backend.ProductFilter) error {
	var (
		dtos []backend.ProductDTO
		cats []backend.CategoryDTO
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dtos, err = c.fetcher.Products(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = c.fetcher.Categories(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	products := make(map[string]Product, len(dtos))
	for _, dto := range dtos {
		p, err := FromBackend(dto)
		if err != nil {
			c.logger.Warn("skipping malformed product record", "error", err)
			continue
		}
		products[p.ID] = p
	}

	categories := make([]Category, 0, len(cats))
	for _, dto := range cats {
		cat, err := CategoryFromBackend(dto)
		if err != nil {
			c.logger.Warn("skipping malformed category record", "error", err)
			continue
		}
		categories = append(categories, cat)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})

	c.mu.Lock()
	for id, p := range products {
		c.products[id] = p
	}
	c.categories = categories
	c.mu.Unlock()

	c.logger.Info("catalog loaded", "products", len(products), "categories", len(categories))
	return nil
}

// Products returns a snapshot of all cached products, sorted by name for a
// stable grid order.
func (c *Cache) Products() []Product {
	c.mu.RLock()
	out := make([]Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Categories returns the cached category list in sort order.
func (c *Cache) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Size returns the number of cached products, for logging.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
