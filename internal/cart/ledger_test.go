package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Valency12/el-xolito-storefront/internal/catalog"
	"github.com/Valency12/el-xolito-storefront/internal/storage"
	"github.com/Valency12/el-xolito-storefront/pkg/logger"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory storage.Store for tests that don't need a file.
type memStore struct {
	values map[string]string
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *memStore) Set(key, value string) error {
	s.values[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	delete(s.values, key)
	return nil
}

// fakeResolver resolves from a fixed map.
type fakeResolver struct {
	products map[string]catalog.Product
}

func (r *fakeResolver) Get(ctx context.Context, id string) (catalog.Product, bool) {
	p, ok := r.products[id]
	return p, ok
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testResolver() *fakeResolver {
	return &fakeResolver{products: map[string]catalog.Product{
		"sku-1": {ID: "sku-1", Name: "Alebrije Tote", Price: price("100.00"), ImageURL: "/img/tote.jpg"},
		"sku-2": {ID: "sku-2", Name: "Talavera Mug", Price: price("50.00")},
	}}
}

func newTestLedger(t *testing.T, opts Options) *Ledger {
	t.Helper()
	return NewLedger(newMemStore(), testResolver(), logger.New("error"), opts)
}

func TestLedger_AddItem_Upsert(t *testing.T) {
	ledger := newTestLedger(t, Options{})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := ledger.AddItem(ctx, "sku-1", 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	lines := ledger.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", lines[0].Quantity)
	}
	if lines[0].ProductID != "sku-1" {
		t.Errorf("expected product sku-1, got %s", lines[0].ProductID)
	}
}

func TestLedger_TotalAndItemCount(t *testing.T) {
	ledger := newTestLedger(t, Options{})
	ctx := context.Background()

	if got := ledger.Total(); !got.Equal(decimal.Zero) {
		t.Errorf("expected zero total on empty cart, got %s", got)
	}
	if got := ledger.ItemCount(); got != 0 {
		t.Errorf("expected zero count on empty cart, got %d", got)
	}

	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := ledger.AddItem(ctx, "sku-2", 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if got := ledger.Total(); !got.Equal(price("200.00")) {
		t.Errorf("expected total 200.00, got %s", got)
	}
	if got := ledger.ItemCount(); got != 3 {
		t.Errorf("expected item count 3, got %d", got)
	}
}

func TestLedger_RemoveItem_Idempotent(t *testing.T) {
	ledger := newTestLedger(t, Options{})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if err := ledger.RemoveItem("sku-1"); err != nil {
		t.Fatalf("first RemoveItem failed: %v", err)
	}
	if err := ledger.RemoveItem("sku-1"); err != nil {
		t.Fatalf("second RemoveItem failed: %v", err)
	}

	if got := len(ledger.Lines()); got != 0 {
		t.Errorf("expected empty cart, got %d lines", got)
	}
}

func TestLedger_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		wantLines int
		wantQty   int
	}{
		{name: "positive quantity sets", quantity: 7, wantLines: 1, wantQty: 7},
		{name: "zero removes the line", quantity: 0, wantLines: 0},
		{name: "negative removes the line", quantity: -5, wantLines: 0},
		{name: "above cap clamps to cap", quantity: 99, wantLines: 1, wantQty: DefaultMaxQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			ledger := newTestLedger(t, Options{})
			ctx := context.Background()
			if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
				t.Fatalf("AddItem failed: %v", err)
			}

			// Execute
			if err := ledger.UpdateQuantity("sku-1", tt.quantity); err != nil {
				t.Fatalf("UpdateQuantity failed: %v", err)
			}

			// Assert
			lines := ledger.Lines()
			if len(lines) != tt.wantLines {
				t.Fatalf("expected %d lines, got %d", tt.wantLines, len(lines))
			}
			if tt.wantLines > 0 && lines[0].Quantity != tt.wantQty {
				t.Errorf("expected quantity %d, got %d", tt.wantQty, lines[0].Quantity)
			}
		})
	}
}

func TestLedger_UpdateQuantity_AbsentLine(t *testing.T) {
	ledger := newTestLedger(t, Options{})

	if err := ledger.UpdateQuantity("sku-1", 3); err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if got := len(ledger.Lines()); got != 0 {
		t.Errorf("expected no lines for absent product, got %d", got)
	}
}

func TestLedger_AddItem_UnresolvableProduct(t *testing.T) {
	ledger := newTestLedger(t, Options{})

	// "ghost" is not in the resolver: the add must be a silent no-op
	if err := ledger.AddItem(context.Background(), "ghost", 1); err != nil {
		t.Fatalf("expected no error for unresolvable product, got %v", err)
	}

	if got := len(ledger.Lines()); got != 0 {
		t.Errorf("expected cart unchanged, got %d lines", got)
	}
	if got := ledger.ItemCount(); got != 0 {
		t.Errorf("expected item count 0, got %d", got)
	}
}

func TestLedger_QuantityCap_OnAdd(t *testing.T) {
	ledger := newTestLedger(t, Options{MaxQuantity: 4})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := ledger.AddItem(ctx, "sku-1", 3); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if got := ledger.Lines()[0].Quantity; got != 4 {
		t.Errorf("expected quantity clamped to 4, got %d", got)
	}
}

func TestLedger_SnapshotPriceIsStable(t *testing.T) {
	// Setup: add a line, then change the catalog price
	resolver := testResolver()
	ledger := NewLedger(newMemStore(), resolver, logger.New("error"), Options{})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	p := resolver.products["sku-1"]
	p.Price = price("999.99")
	resolver.products["sku-1"] = p

	// A further add of the same product increments quantity but keeps the
	// snapshot captured at line creation
	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	line := ledger.Lines()[0]
	if !line.Price.Equal(price("100.00")) {
		t.Errorf("expected snapshot price 100.00, got %s", line.Price)
	}
	if !ledger.Total().Equal(price("200.00")) {
		t.Errorf("expected total 200.00 from snapshot price, got %s", ledger.Total())
	}
}

func TestLedger_PersistRoundTrip(t *testing.T) {
	// Setup: a file-backed store that survives the "reload"
	path := filepath.Join(t.TempDir(), "storefront.json")
	store, err := storage.Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	resolver := testResolver()
	log := logger.New("error")
	ctx := context.Background()

	ledger := NewLedger(store, resolver, log, Options{})
	if err := ledger.AddItem(ctx, "sku-2", 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Execute: simulate a page reload by reopening the file and building a
	// fresh ledger
	reopened, err := storage.Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	restored := NewLedger(reopened, resolver, log, Options{})

	// Assert: same ids, quantities and order
	want := ledger.Lines()
	got := restored.Lines()
	if len(got) != len(want) {
		t.Fatalf("expected %d lines after reload, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ProductID != want[i].ProductID {
			t.Errorf("line %d: expected product %s, got %s", i, want[i].ProductID, got[i].ProductID)
		}
		if got[i].Quantity != want[i].Quantity {
			t.Errorf("line %d: expected quantity %d, got %d", i, want[i].Quantity, got[i].Quantity)
		}
		if !got[i].Price.Equal(want[i].Price) {
			t.Errorf("line %d: expected price %s, got %s", i, want[i].Price, got[i].Price)
		}
	}
	if !restored.Total().Equal(ledger.Total()) {
		t.Errorf("expected total %s after reload, got %s", ledger.Total(), restored.Total())
	}
}

func TestLedger_RenderExactlyOncePerMutation(t *testing.T) {
	renders := 0
	store := newMemStore()
	ledger := NewLedger(store, testResolver(), logger.New("error"), Options{
		OnChange: func() { renders++ },
	})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if renders != 1 {
		t.Errorf("expected 1 render after add, got %d", renders)
	}

	if err := ledger.UpdateQuantity("sku-1", 3); err != nil {
		t.Fatalf("UpdateQuantity failed: %v", err)
	}
	if renders != 2 {
		t.Errorf("expected 2 renders after update, got %d", renders)
	}

	if err := ledger.RemoveItem("sku-1"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if renders != 3 {
		t.Errorf("expected 3 renders after remove, got %d", renders)
	}

	// A failed resolution commits nothing and must not render
	if err := ledger.AddItem(ctx, "ghost", 1); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if renders != 3 {
		t.Errorf("expected no render for a no-op add, got %d", renders)
	}
}

func TestLedger_PersistsAfterEveryMutation(t *testing.T) {
	store := newMemStore()
	ledger := NewLedger(store, testResolver(), logger.New("error"), Options{})
	ctx := context.Background()

	if err := ledger.AddItem(ctx, "sku-1", 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	raw, ok := store.Get(storage.KeyCart)
	if !ok {
		t.Fatal("expected cart key to be persisted after add")
	}
	if raw == "" || raw == "[]" || raw == "null" {
		t.Fatalf("expected persisted lines, got %q", raw)
	}

	if err := ledger.RemoveItem("sku-1"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	raw, _ = store.Get(storage.KeyCart)
	if raw != "[]" && raw != "null" {
		t.Errorf("expected persisted empty cart, got %q", raw)
	}
}

func TestLedger_Retire_DropsLateCommit(t *testing.T) {
	ledger := newTestLedger(t, Options{})

	// Simulates a resolution that completes after the ledger was replaced
	// by a fresh page load
	ledger.Retire()

	if err := ledger.AddItem(context.Background(), "sku-1", 1); err != nil {
		t.Fatalf("AddItem on retired ledger should not error, got %v", err)
	}
	if got := len(ledger.Lines()); got != 0 {
		t.Errorf("expected retired ledger unchanged, got %d lines", got)
	}
}

func TestLedger_RestoresCorruptCartAsEmpty(t *testing.T) {
	store := newMemStore()
	store.values[storage.KeyCart] = "{not json"

	ledger := NewLedger(store, testResolver(), logger.New("error"), Options{})

	if got := len(ledger.Lines()); got != 0 {
		t.Errorf("expected empty cart from corrupt state, got %d lines", got)
	}
}
