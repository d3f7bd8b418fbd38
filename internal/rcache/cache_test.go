package rcache

import (
	"path/filepath"
	"testing"
)

func TestStoreLoadRoundTrip(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}

	type payload struct {
		Name    string
		Version string
	}
	in := payload{Name: "dplyr", Version: "1.1.4"}
	if err := c.Store(in, "cran", "dplyr.json"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	var out payload
	hit, err := c.Load(&out, "cran", "dplyr.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !hit {
		t.Fatalf("expected a cache hit after Store")
	}
	if out != in {
		t.Errorf("Load = %+v, want %+v", out, in)
	}
}

func TestLoadMissingEntry(t *testing.T) {
	c := New(t.TempDir())
	var out map[string]interface{}
	hit, err := c.Load(&out, "cran", "missing.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if hit {
		t.Fatalf("expected no hit for an entry that was never stored")
	}
}

func TestExists(t *testing.T) {
	c := New(t.TempDir())
	if c.Exists("bioc", "x.json") {
		t.Fatalf("expected Exists to be false before Store")
	}
	if err := c.Store(map[string]int{"a": 1}, "bioc", "x.json"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if !c.Exists("bioc", "x.json") {
		t.Fatalf("expected Exists to be true after Store")
	}
}

func TestSegmentSanitization(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Store("value", "github", "tidyverse/dplyr.json"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	path := c.path("github", "tidyverse/dplyr.json")
	if filepath.Base(path) != "tidyverse__dplyr.json" {
		t.Errorf("sanitized path = %q, want segment with / replaced by __", path)
	}
}

func TestDrop(t *testing.T) {
	c := New(t.TempDir())
	if err := c.Store("value", "cran", "x.json"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Drop("cran", "x.json"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if c.Exists("cran", "x.json") {
		t.Fatalf("expected entry to be gone after Drop")
	}
	if err := c.Drop("cran", "x.json"); err != nil {
		t.Fatalf("Drop on missing entry should be a no-op, got: %v", err)
	}
}
