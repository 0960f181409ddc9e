package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	key := Key("artifact", "fingerprint", "dot")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("cold cache: ok=%v err=%v, want miss", ok, err)
	}

	want := []byte("digraph stratum {}")
	if err := c.Set(ctx, key, want, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v, want hit", ok, err)
	}
	if string(got) != string(want) {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("expired entry: ok=%v err=%v, want miss", ok, err)
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("entry survived Delete")
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("artifact", []int{3, 2}, "center", 6.0)
	b := Key("artifact", []int{3, 2}, "center", 6.0)
	if a != b {
		t.Error("identical inputs must produce identical keys")
	}

	c := Key("artifact", []int{3, 2}, "justified", 6.0)
	if a == c {
		t.Error("different inputs must produce different keys")
	}

	if !strings.HasPrefix(a, "artifact:") {
		t.Errorf("key %q missing prefix", a)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("stratum"))
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("stratum")) {
		t.Error("hash must be deterministic")
	}
	if h == Hash([]byte("stratun")) {
		t.Error("distinct inputs must not collide")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("null cache must never hit: ok=%v err=%v", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
