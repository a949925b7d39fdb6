package driver

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"mermaidviz/internal/diagram"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	c, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	content := Digest(sha256.Sum256([]byte("doc")))
	key := CacheKey("/docs/a.md", content)

	var miss DiskPayload
	if ok, err := c.Get(key, &miss); ok || err != nil {
		t.Fatalf("expected clean miss, got %v, %v", ok, err)
	}

	in := &DiskPayload{
		SourceFile:  "/docs/a.md",
		ContentHash: content,
		Records: []diagram.Record{{
			Content: "graph TD", SourceFile: "/docs/a.md", StartLine: 2, EndLine: 3,
			DiagramType: "graph", PrecedingHeader: "Flow",
		}},
	}
	if err := c.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out DiskPayload
	ok, err := c.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if out.SourceFile != in.SourceFile || out.ContentHash != content || len(out.Records) != 1 || out.Records[0] != in.Records[0] {
		t.Errorf("round trip mismatch: %+v", out)
	}

	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, _ := c.Get(key, &out); ok {
		t.Error("entry survived DropAll")
	}
}

func TestNilDiskCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Digest{}, &DiskPayload{}); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.Get(Digest{}, &DiskPayload{}); ok || err != nil {
		t.Fatalf("nil cache Get = %v, %v", ok, err)
	}
}

func TestCacheKeyDependsOnPath(t *testing.T) {
	content := Digest(sha256.Sum256([]byte("x")))
	if CacheKey("/a.md", content) == CacheKey("/b.md", content) {
		t.Error("keys for different paths collide")
	}
	if CacheKey("/a.md", content).IsZero() {
		t.Error("zero key")
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(1)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	h1 := Digest(sha256.Sum256([]byte("1")))
	h2 := Digest(sha256.Sum256([]byte("2")))
	recs := []diagram.Record{{Content: "pie"}}

	c.Put("/a.md", h1, recs)
	if got, ok := c.Get("/a.md", h1); !ok || len(got) != 1 {
		t.Errorf("expected hit, got %v %v", got, ok)
	}
	if _, ok := c.Get("/a.md", h2); ok {
		t.Error("stale content should miss")
	}
	c.Put("/b.md", h2, nil)
	if _, ok := c.Get("/a.md", h1); ok {
		t.Error("expected eviction with size 1")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestOpenDiskCacheUsesXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	c, err := OpenDiskCache("mermaidviz")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	if c.Dir() != filepath.Join(base, "mermaidviz") {
		t.Errorf("Dir = %q", c.Dir())
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir not created: %v", err)
	}
}
