package pool

import (
	"errors"
	"hash/fnv"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("pool: closed")

// Config tunes a Pool. The zero value is usable; New fills in defaults.
type Config struct {
	// TTL applied to entries added without their own expiry. Zero
	// means entries never expire.
	TTL time.Duration

	// Capacity is the maximum number of entries kept per semantic
	// type; the oldest entry is evicted when a full ring grows.
	Capacity int

	// Shards spreads semantic types over independent locks. Rounded
	// up to a power of two.
	Shards int

	// SweepInterval is how often expired entries are purged in the
	// background. Zero disables the sweeper.
	SweepInterval time.Duration
}

// DefaultConfig returns the settings the load generator runs with.
func DefaultConfig() Config {
	return Config{
		TTL:           5 * time.Minute,
		Capacity:      1000,
		Shards:        16,
		SweepInterval: time.Minute,
	}
}

// Stats is a point-in-time snapshot of pool activity.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
	Evicted int64
	Swept   int64
}

// HitRate returns the fraction of lookups that found a live entry.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type shard struct {
	mu    sync.Mutex
	rings map[SemanticType]*ring
	rng   *rand.Rand
}

// Pool stores entries per semantic type across a set of shards. All
// methods are safe for concurrent use.
type Pool struct {
	cfg    Config
	shards []*shard
	closed atomic.Bool
	stop   chan struct{}
	done   sync.WaitGroup

	hits    atomic.Int64
	misses  atomic.Int64
	evicted atomic.Int64
	swept   atomic.Int64
}

// New builds a pool from cfg and starts the background sweeper if
// SweepInterval is set. Callers must Close the pool when done.
func New(cfg Config) *Pool {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	n := 1
	for n < cfg.Shards {
		n <<= 1
	}
	p := &Pool{
		cfg:    cfg,
		shards: make([]*shard, n),
		stop:   make(chan struct{}),
	}
	for i := range p.shards {
		p.shards[i] = &shard{
			rings: make(map[SemanticType]*ring),
			rng:   rand.New(rand.NewSource(time.Now().UnixNano() + int64(i))),
		}
	}
	if cfg.SweepInterval > 0 {
		p.done.Add(1)
		go p.sweepLoop()
	}
	return p
}

func (p *Pool) shardFor(t SemanticType) *shard {
	h := fnv.New32a()
	h.Write([]byte(t))
	return p.shards[h.Sum32()&uint32(len(p.shards)-1)]
}

// Add stores an entry, applying the pool's default TTL when the entry
// has none of its own.
func (p *Pool) Add(e *Entry) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if e.ExpiresAt.IsZero() && p.cfg.TTL > 0 {
		e.ExpiresAt = e.AddedAt.Add(p.cfg.TTL)
	}
	s := p.shardFor(e.Type)
	s.mu.Lock()
	r, ok := s.rings[e.Type]
	if !ok {
		r = newRing(p.cfg.Capacity)
		s.rings[e.Type] = r
	}
	if r.push(e) {
		p.evicted.Add(1)
	}
	s.mu.Unlock()
	return nil
}

// Random returns a uniformly chosen live entry of the given type, or
// nil when none is available.
func (p *Pool) Random(t SemanticType) (*Entry, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	s := p.shardFor(t)
	s.mu.Lock()
	var e *Entry
	if r, ok := s.rings[t]; ok {
		e = r.random(s.rng)
	}
	s.mu.Unlock()
	if e == nil {
		p.misses.Add(1)
		return nil, nil
	}
	e.touch()
	p.hits.Add(1)
	return e, nil
}

// All returns the live entries of the given type in insertion order.
func (p *Pool) All(t SemanticType) ([]*Entry, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	s := p.shardFor(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rings[t]; ok {
		return r.live(), nil
	}
	return nil, nil
}

// Count returns the number of live entries of the given type.
func (p *Pool) Count(t SemanticType) (int, error) {
	entries, err := p.All(t)
	return len(entries), err
}

// Remove drops the first entry of the given type holding value.
func (p *Pool) Remove(t SemanticType, value any) (bool, error) {
	if p.closed.Load() {
		return false, ErrClosed
	}
	s := p.shardFor(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rings[t]; ok {
		return r.remove(value), nil
	}
	return false, nil
}

// Clear drops every entry of the given type.
func (p *Pool) Clear(t SemanticType) error {
	if p.closed.Load() {
		return ErrClosed
	}
	s := p.shardFor(t)
	s.mu.Lock()
	delete(s.rings, t)
	s.mu.Unlock()
	return nil
}

// Reset drops every entry of every type.
func (p *Pool) Reset() error {
	if p.closed.Load() {
		return ErrClosed
	}
	for _, s := range p.shards {
		s.mu.Lock()
		s.rings = make(map[SemanticType]*ring)
		s.mu.Unlock()
	}
	return nil
}

// Sweep purges expired entries immediately and returns how many were
// dropped.
func (p *Pool) Sweep() int {
	total := 0
	for _, s := range p.shards {
		s.mu.Lock()
		for t, r := range s.rings {
			n := r.sweep()
			total += n
			if r.len() == 0 {
				delete(s.rings, t)
			}
		}
		s.mu.Unlock()
	}
	p.swept.Add(int64(total))
	return total
}

// Types returns the semantic types that currently hold entries, sorted.
func (p *Pool) Types() []SemanticType {
	var types []SemanticType
	for _, s := range p.shards {
		s.mu.Lock()
		for t, r := range s.rings {
			if r.len() > 0 {
				types = append(types, t)
			}
		}
		s.mu.Unlock()
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Stats snapshots counters across all shards.
func (p *Pool) Stats() Stats {
	entries := 0
	for _, s := range p.shards {
		s.mu.Lock()
		for _, r := range s.rings {
			entries += r.len()
		}
		s.mu.Unlock()
	}
	return Stats{
		Entries: entries,
		Hits:    p.hits.Load(),
		Misses:  p.misses.Load(),
		Evicted: p.evicted.Load(),
		Swept:   p.swept.Load(),
	}
}

// Close stops the sweeper and rejects further operations.
func (p *Pool) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	close(p.stop)
	p.done.Wait()
	return nil
}

func (p *Pool) sweepLoop() {
	defer p.done.Done()
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.Sweep()
		case <-p.stop:
			return
		}
	}
}
