package pool

import "math/rand"

// ring is a fixed-capacity FIFO over *Entry. When full, pushing evicts
// the oldest entry. It is not safe for concurrent use; the owning
// shard serializes access.
type ring struct {
	buf   []*Entry
	head  int // index of the oldest entry
	count int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{buf: make([]*Entry, capacity)}
}

// push appends an entry, evicting the oldest one if the ring is full.
// It reports whether an eviction happened.
func (r *ring) push(e *Entry) bool {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = e
		r.count++
		return false
	}
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	return true
}

func (r *ring) len() int {
	return r.count
}

// random returns a uniformly chosen live entry, skipping over expired
// ones. It returns nil if every entry has expired or the ring is empty.
func (r *ring) random(rng *rand.Rand) *Entry {
	if r.count == 0 {
		return nil
	}
	// Try a few random probes before falling back to a scan, so the
	// common case (few expirations) stays O(1).
	for range 4 {
		e := r.buf[(r.head+rng.Intn(r.count))%len(r.buf)]
		if e != nil && !e.Expired() {
			return e
		}
	}
	live := r.live()
	if len(live) == 0 {
		return nil
	}
	return live[rng.Intn(len(live))]
}

// live returns the unexpired entries in FIFO order.
func (r *ring) live() []*Entry {
	out := make([]*Entry, 0, r.count)
	for i := range r.count {
		e := r.buf[(r.head+i)%len(r.buf)]
		if e != nil && !e.Expired() {
			out = append(out, e)
		}
	}
	return out
}

// remove drops the entry holding the given value. It reports whether
// anything was removed.
func (r *ring) remove(value any) bool {
	kept := make([]*Entry, 0, r.count)
	removed := false
	for i := range r.count {
		e := r.buf[(r.head+i)%len(r.buf)]
		if e == nil {
			continue
		}
		if !removed && e.Value == value {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if removed {
		r.reset(kept)
	}
	return removed
}

// sweep drops expired entries and returns how many were dropped.
func (r *ring) sweep() int {
	live := r.live()
	dropped := r.count - len(live)
	if dropped > 0 {
		r.reset(live)
	}
	return dropped
}

func (r *ring) reset(entries []*Entry) {
	clear(r.buf)
	r.head = 0
	r.count = copy(r.buf, entries)
}
