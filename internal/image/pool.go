package image

import "sync"

// Pool is a thread-safe pool for reusing Plane instances.
//
// Pool groups planes by interior extent and border so that a run over many
// same-sized images reuses its scratch buffers instead of reallocating them.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*Plane
	maxSize int // max planes per bucket
}

// poolKey identifies a bucket of identically laid out planes.
type poolKey struct {
	height int
	width  int
	border int
}

// NewPool creates a plane pool retaining at most maxPerBucket planes of each
// layout. A maxPerBucket of 0 means unlimited.
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*Plane),
		maxSize: maxPerBucket,
	}
}

// Get returns a plane with the requested layout, reusing a pooled one when
// available. Reused planes keep their previous samples; callers must
// overwrite every sample they read.
func (p *Pool) Get(height, width, border int) (*Plane, error) {
	key := poolKey{height: height, width: width, border: border}

	p.mu.Lock()
	bucket := p.buckets[key]
	if n := len(bucket); n > 0 {
		pl := bucket[n-1]
		bucket[n-1] = nil
		p.buckets[key] = bucket[:n-1]
		p.mu.Unlock()
		return pl, nil
	}
	p.mu.Unlock()

	return NewPlane(height, width, border)
}

// Put returns a plane to the pool. Planes with a custom stride, nil planes
// and planes arriving at a full bucket are dropped.
func (p *Pool) Put(pl *Plane) {
	if pl == nil || pl.stride != pl.width+2*pl.border {
		return
	}
	key := poolKey{height: pl.height, width: pl.width, border: pl.border}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, pl)
}

// Len returns the number of planes currently held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
