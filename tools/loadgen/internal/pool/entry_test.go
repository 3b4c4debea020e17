package pool

import (
	"testing"
	"time"
)

func TestNewEntryTTL(t *testing.T) {
	forever := NewEntry("v", SemanticTypeSKU, 0)
	if !forever.ExpiresAt.IsZero() {
		t.Error("zero TTL should leave ExpiresAt unset")
	}
	if forever.Expired() {
		t.Error("entry without TTL reported expired")
	}

	short := NewEntry("v", SemanticTypeSKU, time.Nanosecond)
	time.Sleep(2 * time.Millisecond)
	if !short.Expired() {
		t.Error("entry past its TTL not reported expired")
	}
}

func TestEntryFromEndpoint(t *testing.T) {
	e := NewEntry("prod-1", SemanticTypeProductID, 0).
		FromEndpoint("GET /products", "$.data[*].id")

	if e.Endpoint != "GET /products" {
		t.Errorf("Endpoint = %q", e.Endpoint)
	}
	if e.Path != "$.data[*].id" {
		t.Errorf("Path = %q", e.Path)
	}
}

func TestEntryHits(t *testing.T) {
	e := NewEntry("v", SemanticTypeBarcode, 0)
	if e.Hits() != 0 {
		t.Fatalf("Hits = %d, want 0", e.Hits())
	}
	e.touch()
	e.touch()
	if e.Hits() != 2 {
		t.Errorf("Hits = %d, want 2", e.Hits())
	}
}
