package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCache(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "diskcache-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			t.Logf("Error removing temp dir: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	cache, err := OpenDiskCache(dbPath)
	if err != nil {
		t.Fatalf("Failed to open DiskCache: %v", err)
	}

	testDiskCacheBasic(t, cache)
	testDiskCacheBatch(t, cache)

	if err := cache.Close(); err != nil {
		t.Fatalf("Failed to close cache: %v", err)
	}

	testDiskCachePersistence(t, dbPath)
}

func testDiskCacheBasic(t *testing.T, cache *DiskCache) {
	val := []byte("test-value")
	if err := cache.PutTTL("borders/world", val, 0); err != nil {
		t.Errorf("PutTTL failed: %v", err)
	}

	res, err := cache.Get("borders/world")
	if err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if !bytes.Equal(res, val) {
		t.Errorf("Get mismatch: got %s, want %s", res, val)
	}

	res, err = cache.Get("missing")
	if err != nil || res != nil {
		t.Errorf("Get(missing) = (%s, %v), want (nil, nil)", res, err)
	}

	if err := cache.Delete("borders/world"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if res, _ := cache.Get("borders/world"); res != nil {
		t.Errorf("Get after Delete = %s, want nil", res)
	}
}

func testDiskCacheBatch(t *testing.T, cache *DiskCache) {
	entries := make(map[string][]byte)
	for i := 0; i < 10; i++ {
		entries[fmt.Sprintf("point/p%02d", i)] = []byte(fmt.Sprintf("v%d", i))
	}
	entries["other/x"] = []byte("ignored")
	if err := cache.BatchPut(entries); err != nil {
		t.Fatalf("BatchPut failed: %v", err)
	}

	var keys []string
	err := cache.ForEach("point/", func(k string, v []byte) error {
		keys = append(keys, k)
		if !bytes.Equal(v, entries[k]) {
			t.Errorf("ForEach value for %s = %s, want %s", k, v, entries[k])
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if len(keys) != 10 || keys[0] != "point/p00" || keys[9] != "point/p09" {
		t.Errorf("ForEach keys = %v, want point/p00..point/p09 in order", keys)
	}

	stop := fmt.Errorf("stop")
	calls := 0
	err = cache.ForEach("point/", func(string, []byte) error {
		calls++
		return stop
	})
	if err != stop || calls != 1 {
		t.Errorf("ForEach should stop on error, got err=%v calls=%d", err, calls)
	}
}

func testDiskCachePersistence(t *testing.T, dbPath string) {
	cache, err := OpenDiskCache(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen cache: %v", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			t.Logf("Error closing cache: %v", err)
		}
	}()

	res, err := cache.Get("point/p03")
	if err != nil {
		t.Errorf("Get after reopen failed: %v", err)
	}
	if string(res) != "v3" {
		t.Errorf("Get after reopen = %s, want v3", res)
	}
}

func TestDiskCacheInMemory(t *testing.T) {
	cache, err := OpenDiskCache("")
	if err != nil {
		t.Fatalf("Failed to open in-memory cache: %v", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			t.Logf("Error closing cache: %v", err)
		}
	}()

	if err := cache.PutTTL("k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}
	if res, err := cache.Get("k"); err != nil || string(res) != "v" {
		t.Errorf("Get = (%s, %v), want (v, nil)", res, err)
	}

	if err := cache.PutTTL("short", []byte("v"), time.Second); err != nil {
		t.Fatalf("PutTTL failed: %v", err)
	}
	time.Sleep(2100 * time.Millisecond)
	if res, err := cache.Get("short"); err != nil || res != nil {
		t.Errorf("Get after expiry = (%s, %v), want (nil, nil)", res, err)
	}
	if res, _ := cache.Get("k"); string(res) != "v" {
		t.Errorf("long-lived key expired early: %q", res)
	}
}
