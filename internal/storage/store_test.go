package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_RoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	type item struct {
		Name string `json:"name"`
		Qty  int    `json:"qty"`
	}
	in := []item{{Name: "A", Qty: 2}, {Name: "B", Qty: 1}}
	if err := s.Put("cart", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out []item
	if !s.Get("cart", &out) {
		t.Fatalf("expected slot")
	}
	if len(out) != 2 || out[0].Name != "A" || out[1].Qty != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestStore_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var out []string
	if s.Get("missing", &out) {
		t.Fatalf("missing slot must read as absent")
	}

	// corrupt slot degrades to absent, never errors
	if err := os.WriteFile(filepath.Join(dir, "cart.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s.Get("cart", &out) {
		t.Fatalf("corrupt slot must read as absent")
	}
}

func TestStore_Delete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Delete("missing"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
	if err := s.Put("k", "v"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var out string
	if s.Get("k", &out) {
		t.Fatalf("slot survived delete")
	}
}
