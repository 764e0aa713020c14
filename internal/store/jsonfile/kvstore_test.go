package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/calcam/internal/core/kv"
)

func TestKVStore_SetAndGet(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	err := store.Set(ctx, "foo", "bar")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "foo")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if entry.Key != "foo" {
		t.Errorf("Key = %q, want %q", entry.Key, "foo")
	}
	if entry.Value != "bar" {
		t.Errorf("Value = %q, want %q", entry.Value, "bar")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt should not be zero")
	}
	if entry.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should not be zero")
	}
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry1, _ := store.Get(ctx, "key")
	time.Sleep(10 * time.Millisecond)

	if err := store.Set(ctx, "key", "value2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry2, _ := store.Get(ctx, "key")

	if entry2.Value != "value2" {
		t.Errorf("Value = %q, want %q", entry2.Value, "value2")
	}
	if !entry2.CreatedAt.Equal(entry1.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", entry1.CreatedAt, entry2.CreatedAt)
	}
	if !entry2.UpdatedAt.After(entry1.UpdatedAt) {
		t.Errorf("UpdatedAt should be after original: %v <= %v", entry2.UpdatedAt, entry1.UpdatedAt)
	}
}

func TestKVStore_List(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "calcam.session", "value1")
	_ = store.Set(ctx, "calcam.prefs", "value2")
	_ = store.Set(ctx, "calorieCamHistory", "value3")

	entries, err := store.List(ctx, "calcam.")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Key != "calcam.prefs" {
		t.Errorf("List not sorted: first key = %q", entries[0].Key)
	}

	all, _ := store.List(ctx, "")
	if len(all) != 3 {
		t.Errorf("List all returned %d entries, want 3", len(all))
	}
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "key", "value")

	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := store.Get(ctx, "key")
	if !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_DeleteNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	err := store.Delete(ctx, "nonexistent")
	if !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_Quota(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json")).WithQuota(20)
	ctx := context.Background()

	if err := store.Set(ctx, "a", strings.Repeat("x", 10)); err != nil {
		t.Fatalf("Set within quota failed: %v", err)
	}

	err := store.Set(ctx, "b", strings.Repeat("y", 10))
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("Set over quota error = %v, want ErrQuotaExceeded", err)
	}

	// The rejected write must not be visible.
	if _, err := store.Get(ctx, "b"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get rejected key error = %v, want ErrKeyNotFound", err)
	}

	// Replacing an existing value only counts the new value.
	if err := store.Set(ctx, "a", strings.Repeat("z", 19)); err != nil {
		t.Errorf("Replace within quota failed: %v", err)
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "kv.json"))
	ctx := context.Background()

	const goroutines = 10
	const iterations = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := range goroutines {
		go func(id int) {
			defer wg.Done()
			for j := range iterations {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, "value"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	entries, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("Final List failed: %v", err)
	}
	if len(entries) != goroutines*iterations {
		t.Errorf("Expected %d entries, got %d", goroutines*iterations, len(entries))
	}
}

func TestKVStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.json")

	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	store := NewKVStore(path)
	ctx := context.Background()

	if _, err := store.Get(ctx, "any"); err == nil {
		t.Error("Expected error for corrupted JSON, got nil")
	}

	if err := store.Set(ctx, "key", "value"); err == nil {
		t.Error("Expected error for Set with corrupted file, got nil")
	}
}
