// Package pool keeps identifiers harvested from API responses so load
// workers can reuse them in later requests. Entries are grouped by
// semantic type (product ID, store ID, ...) and stored in fixed-size
// FIFO rings, so a long run neither grows without bound nor keeps
// serving IDs the server has long forgotten.
package pool

import (
	"sync/atomic"
	"time"
)

// SemanticType classifies what an entry's value means in the API.
type SemanticType string

const (
	SemanticTypeCustomerID SemanticType = "entity.customer.id"
	SemanticTypeProductID  SemanticType = "entity.product.id"
	SemanticTypeStoreID    SemanticType = "entity.store.id"
	SemanticTypeUserID     SemanticType = "entity.user.id"

	SemanticTypeSaleID     SemanticType = "register.sale.id"
	SemanticTypeProformaID SemanticType = "register.proforma.id"
	SemanticTypeSessionID  SemanticType = "register.session.id"

	SemanticTypeEmail     SemanticType = "common.email"
	SemanticTypePhone     SemanticType = "common.phone"
	SemanticTypeAddress   SemanticType = "common.address"
	SemanticTypeSKU       SemanticType = "common.sku"
	SemanticTypeBarcode   SemanticType = "common.barcode"
	SemanticTypeTimestamp SemanticType = "common.timestamp"
	SemanticTypeUUID      SemanticType = "common.uuid"
)

// Entry is a single pooled value plus provenance and expiry metadata.
// The value itself is treated as immutable once added.
type Entry struct {
	Value any
	Type  SemanticType

	// Endpoint and Path record where the value came from,
	// e.g. "GET /products" and "$.data[*].id".
	Endpoint string
	Path     string

	AddedAt   time.Time
	ExpiresAt time.Time // zero means the entry never expires

	hits atomic.Int64
}

// NewEntry builds an entry with the given TTL. A TTL of zero means the
// entry stays valid for the lifetime of the pool.
func NewEntry(value any, t SemanticType, ttl time.Duration) *Entry {
	e := &Entry{
		Value:   value,
		Type:    t,
		AddedAt: time.Now(),
	}
	if ttl > 0 {
		e.ExpiresAt = e.AddedAt.Add(ttl)
	}
	return e
}

// FromEndpoint records which response the value was extracted from.
func (e *Entry) FromEndpoint(endpoint, path string) *Entry {
	e.Endpoint = endpoint
	e.Path = path
	return e
}

// Expired reports whether the entry's TTL has elapsed.
func (e *Entry) Expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// Hits returns how many times the entry has been handed to a worker.
func (e *Entry) Hits() int64 {
	return e.hits.Load()
}

func (e *Entry) touch() {
	e.hits.Add(1)
}
