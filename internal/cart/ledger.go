// Package cart implements the cart ledger: the local, durable list of
// purchase-intent lines. The ledger is the only durable state the storefront
// owns; it survives catalog outages because every line carries a snapshot of
// the product fields it needs to render.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/Valency12/el-xolito-storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxQuantity caps a single line when no cap is configured.
const DefaultMaxQuantity = 10

// Resolver maps a product id to its display record. The boolean is false for
// unknown ids and for backend failures alike.
type Resolver interface {
	Get(ctx context.Context, id string) (catalog.Product, bool)
}

// Line is one cart entry. Name, Price and Image are snapshots captured when
// the line was created and are never re-synced with the catalog: a price
// change server-side does not reprice a line already in the cart. That is a
// product decision, not an oversight.
//
// The JSON field names match the storefront's established persisted format
// so an existing stored cart round-trips exactly.
type Line struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price × quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Options configures a Ledger.
type Options struct {
	// MaxQuantity caps each line's quantity; adds and updates clamp to it.
	// Zero means DefaultMaxQuantity.
	MaxQuantity int
	// OnChange is invoked exactly once after each committed mutation, after
	// the new state has been persisted. Used to re-project the view.
	OnChange func()
}

// Ledger is an ordered list of lines, unique by product id, flushed to the
// store synchronously after every mutation.
//
// Mutations resolve product metadata before touching ledger state, so a
// concurrent read during an in-flight AddItem sees only committed lines.
// Each ledger carries an instance id; Retire marks an instance dead so a
// resolution that completes after the ledger has been replaced by a fresh
// load cannot commit into stale state.
type Ledger struct {
	id       string
	resolver Resolver
	store    storage.Store
	logger   *slog.Logger
	onChange func()
	maxQty   int

	mu      sync.Mutex
	lines   []Line
	retired bool
}

// NewLedger creates a ledger bound to the store and resolver, restoring any
// persisted line list. A corrupt stored cart is discarded with a warning
// rather than poisoning every later mutation.
func NewLedger(store storage.Store, resolver Resolver, logger *slog.Logger, opts Options) *Ledger {
	maxQty := opts.MaxQuantity
	if maxQty <= 0 {
		maxQty = DefaultMaxQuantity
	}
	onChange := opts.OnChange
	if onChange == nil {
		onChange = func() {}
	}

	l := &Ledger{
		id:       uuid.New().String(),
		resolver: resolver,
		store:    store,
		logger:   logger,
		onChange: onChange,
		maxQty:   maxQty,
	}

	if raw, ok := store.Get(storage.KeyCart); ok && raw != "" {
		var lines []Line
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			logger.Warn("discarding unreadable persisted cart", "error", err)
		} else {
			l.lines = lines
		}
	}

	return l
}

// ID returns the ledger instance id.
func (l *Ledger) ID() string {
	return l.id
}

// AddItem resolves productID and upserts a line for it: a new line with
// snapshot fields if absent, otherwise an increment of the existing line's
// quantity. Quantities below 1 are treated as 1. If the product cannot be
// resolved the cart is left untouched; transient backend trouble must not
// surface as a hard error on an add-to-cart click.
func (l *Ledger) AddItem(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	p, ok := l.resolver.Get(ctx, productID)
	if !ok {
		l.logger.Warn("add to cart skipped, product not resolvable", "product_id", productID)
		return nil
	}

	l.mu.Lock()
	if l.retired {
		l.mu.Unlock()
		l.logger.Warn("add to cart dropped, ledger retired", "product_id", productID, "ledger_id", l.id)
		return nil
	}

	if i := l.indexLocked(productID); i >= 0 {
		l.lines[i].Quantity = l.clamp(l.lines[i].Quantity + quantity)
	} else {
		l.lines = append(l.lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.ImageURL,
			Quantity:  l.clamp(quantity),
		})
	}

	return l.commitLocked("add", productID)
}

// RemoveItem removes the line for productID. Removing an absent line is not
// an error; the operation is idempotent.
func (l *Ledger) RemoveItem(productID string) error {
	l.mu.Lock()
	if i := l.indexLocked(productID); i >= 0 {
		l.lines = append(l.lines[:i], l.lines[i+1:]...)
	}
	return l.commitLocked("remove", productID)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or below
// removes the line. Setting the quantity of an absent line is a no-op.
func (l *Ledger) UpdateQuantity(productID string, quantity int) error {
	if quantity <= 0 {
		return l.RemoveItem(productID)
	}

	l.mu.Lock()
	if i := l.indexLocked(productID); i >= 0 {
		l.lines[i].Quantity = l.clamp(quantity)
	}
	return l.commitLocked("update", productID)
}

// Clear empties the cart.
func (l *Ledger) Clear() error {
	l.mu.Lock()
	l.lines = nil
	return l.commitLocked("clear", "")
}

// Total returns the sum of snapshot price × quantity over all lines. Pure:
// no persistence, no refetching.
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := decimal.Zero
	for _, line := range l.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities over all lines.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the current line list, in insertion order.
func (l *Ledger) Lines() []Line {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

// Retire marks the ledger dead. A mutation whose resolution completes after
// Retire is dropped, so an abandoned lookup cannot write into a ledger that
// a fresh page load has since replaced.
func (l *Ledger) Retire() {
	l.mu.Lock()
	l.retired = true
	l.mu.Unlock()
}

// commitLocked persists the line list, releases the lock and fires the
// change hook exactly once. The hook runs unlocked so it may read the ledger.
// Callers must hold l.mu on entry.
func (l *Ledger) commitLocked(op, productID string) error {
	data, err := json.Marshal(l.lines)
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := l.store.Set(storage.KeyCart, string(data)); err != nil {
		l.mu.Unlock()
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	lineCount := len(l.lines)
	l.mu.Unlock()

	l.logger.Debug("cart mutated", "op", op, "product_id", productID, "lines", lineCount)
	l.onChange()
	return nil
}

// indexLocked returns the position of productID's line, or -1.
func (l *Ledger) indexLocked(productID string) int {
	for i, line := range l.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (l *Ledger) clamp(quantity int) int {
	if quantity > l.maxQty {
		return l.maxQty
	}
	return quantity
}
