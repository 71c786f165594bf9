package service

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"nectix/internal/domain"
	"nectix/internal/storage"
)

func setupCart(t *testing.T) (*CartStore, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewCartStore(store, DefaultCartSlot, zap.NewNop()), store
}

func product(id int64, price float64) domain.Product {
	return domain.Product{ID: id, Name: "P", Price: price}
}

func TestCartStore_AddAccumulatesSameKey(t *testing.T) {
	cart, _ := setupCart(t)

	cart.Add(product(5, 99.90), 1, "Azul", "M")
	cart.Add(product(5, 99.90), 1, "Azul", "M")

	lines := cart.Snapshot()
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if got := lines[0].Key().String(); got != "5-Azul-M" {
		t.Fatalf("expected composite key 5-Azul-M, got %s", got)
	}
	// the product's own id is untouched
	if lines[0].Product.ID != 5 {
		t.Fatalf("product id mutated: %d", lines[0].Product.ID)
	}
}

func TestCartStore_VariantLinesAreDistinct(t *testing.T) {
	cart, _ := setupCart(t)

	cart.Add(product(5, 10), 1, "", "")
	cart.Add(product(5, 10), 1, "Red", "")
	cart.Add(product(5, 10), 1, "Red", "M")

	if n := len(cart.Snapshot()); n != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", n)
	}
	// a single variant attribute is enough to switch to composite identity
	k := domain.NewLineKey(5, "Red", "")
	if k.String() != "5-Red-" {
		t.Fatalf("key form: %s", k.String())
	}
}

func TestCartStore_UpdateQuantityZeroEqualsRemove(t *testing.T) {
	cart, _ := setupCart(t)
	k := cart.Add(product(1, 10), 2, "", "")

	if !cart.UpdateQuantity(k, 0) {
		t.Fatalf("update to zero must succeed for existing line")
	}
	if len(cart.Snapshot()) != 0 {
		t.Fatalf("line survived zero quantity")
	}

	// same outcome as explicit removal
	k = cart.Add(product(1, 10), 2, "", "")
	if !cart.Remove(k) {
		t.Fatalf("remove must succeed")
	}
	if len(cart.Snapshot()) != 0 {
		t.Fatalf("line survived removal")
	}

	if cart.Remove(k) {
		t.Fatalf("removing a missing line must report false")
	}
}

func TestCartStore_TotalAndCountRecomputed(t *testing.T) {
	cart, _ := setupCart(t)
	cart.Add(product(1, 10.50), 2, "", "")
	k := cart.Add(product(2, 5), 3, "", "")

	if got := cart.Total(); got != 10.50*2+5*3 {
		t.Fatalf("total: %v", got)
	}
	if got := cart.ItemCount(); got != 5 {
		t.Fatalf("count: %v", got)
	}

	cart.UpdateQuantity(k, 1)
	if got := cart.Total(); got != 10.50*2+5 {
		t.Fatalf("total after update: %v", got)
	}
	if got := cart.ItemCount(); got != 3 {
		t.Fatalf("count after update: %v", got)
	}
}

func TestCartStore_PersistenceRoundTrip(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cart := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	cart.Add(product(5, 99.90), 2, "Azul", "M")
	cart.Add(product(1, 10), 1, "", "")

	// a fresh store over the same slot sees the same ordered lines
	reloaded := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	lines := reloaded.Snapshot()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after reload, got %d", len(lines))
	}
	if lines[0].Key().String() != "5-Azul-M" || lines[1].Key().String() != "1" {
		t.Fatalf("order lost: %v %v", lines[0].Key(), lines[1].Key())
	}
	if reloaded.Total() != cart.Total() {
		t.Fatalf("total mismatch after reload")
	}
}

func TestCartStore_CorruptSlotYieldsEmptyCart(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DefaultCartSlot+".json"), []byte("][ broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	cart := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	if len(cart.Snapshot()) != 0 || cart.Total() != 0 {
		t.Fatalf("corrupt slot must yield an empty cart")
	}
}

func TestCartStore_ClearEmptiesAndPersists(t *testing.T) {
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cart := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	cart.Add(product(1, 10), 1, "", "")
	cart.Clear()

	if cart.ItemCount() != 0 {
		t.Fatalf("cart not empty after clear")
	}
	reloaded := NewCartStore(store, DefaultCartSlot, zap.NewNop())
	if len(reloaded.Snapshot()) != 0 {
		t.Fatalf("clear not persisted")
	}
}
