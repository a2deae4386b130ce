package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
	if err := SetJSON(ctx, s, "flags", map[string]bool{"game_mode": true}); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := SetJSON(ctx, s, "xp:a", 10); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	if err := SetJSON(ctx, s, "xp:b", 20); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var flags map[string]bool
	ok, err := GetJSON(ctx, s, "flags", &flags)
	if err != nil || !ok || !flags["game_mode"] {
		t.Fatalf("GetJSON = %v, %v, %v", flags, ok, err)
	}

	list, err := s.List(ctx, "xp:")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("List returned %d entries, want 2", len(list))
	}

	if err := s.Delete(ctx, "xp:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var n int
	if ok, _ := GetJSON(ctx, s, "xp:a", &n); ok {
		t.Errorf("xp:a still present after Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "kv.json")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	exerciseStore(t, f)

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var n int
	ok, err := GetJSON(context.Background(), reopened, "xp:b", &n)
	if err != nil || !ok || n != 20 {
		t.Errorf("after reopen xp:b = %d, %v, %v", n, ok, err)
	}
}

func TestFileStoreRejectsNonJSON(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "kv.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := f.Set(context.Background(), "k", []byte("not json")); err == nil {
		t.Error("expected error for non-json value")
	}
}
