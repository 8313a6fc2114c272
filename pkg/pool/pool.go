package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool with type safety. It wraps sync.Pool with
// statistics tracking and an optional reset hook, and is safe for
// concurrent use.
//
// Pointer types are recommended for T so Get and Put avoid boxing
// allocations.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
		misses    int64
	}
}

// New creates a typed pool. The new function runs when the pool is empty;
// the reset function, if non-nil, runs on every Put before the object is
// stored for reuse.
//
// Example:
//
//	bufs := pool.New(
//	    func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
func New[T any](newFunc func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   newFunc,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		atomic.AddInt64(&p.stats.misses, 1)
		return newFunc()
	}
	return p
}

// Get retrieves an object from the pool, allocating one through the factory
// when the pool is empty. Return it with Put when done.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.hits, 1)
	obj := p.pool.Get().(T)
	return obj
}

// Put returns an object to the pool for reuse, running the reset hook first
// when one was configured.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats reports pool counters: total objects created, objects currently
// checked out, Get calls served, and Get calls that had to allocate.
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits),
		atomic.LoadInt64(&p.stats.misses)
}

// BufferPool manages byte buffer pooling with size-based buckets. It keeps
// one pool per bucket and serves each request from the smallest bucket that
// fits, which keeps I/O scratch buffers out of the garbage collector.
type BufferPool struct {
	pools []*Pool[[]byte]
	sizes []int
}

// NewBufferPool creates a buffer pool with power-of-two buckets from 512
// bytes to 16MB. Requests larger than the top bucket fall back to plain
// allocation.
func NewBufferPool() *BufferPool {
	sizes := []int{
		512,
		1 << 10, // 1KB
		4 << 10,
		16 << 10,
		64 << 10,
		256 << 10,
		1 << 20, // 1MB
		4 << 20,
		16 << 20,
	}

	pools := make([]*Pool[[]byte], len(sizes))
	for i, size := range sizes {
		size := size
		pools[i] = New(
			func() []byte {
				return make([]byte, size)
			},
			nil,
		)
	}

	return &BufferPool{
		pools: pools,
		sizes: sizes,
	}
}

// Get returns a buffer of at least size bytes, sliced to exactly size. The
// capacity may be larger; Put matches the buffer back to its bucket by
// capacity.
func (p *BufferPool) Get(size int) []byte {
	for i, s := range p.sizes {
		if s >= size {
			buf := p.pools[i].Get()
			return buf[:size]
		}
	}

	// Larger than the top bucket; the GC owns it
	return make([]byte, size)
}

// Put returns a buffer to its bucket. Buffers whose capacity matches no
// bucket are dropped for the garbage collector. Contents are not cleared.
func (p *BufferPool) Put(buf []byte) {
	size := cap(buf)

	for i, s := range p.sizes {
		if s == size {
			p.pools[i].Put(buf[:s])
			return
		}
	}
}

// Stats aggregates counters across all buckets.
func (p *BufferPool) Stats() Stats {
	var total Stats
	for _, bucket := range p.pools {
		allocated, inUse, hits, misses := bucket.Stats()
		total.Allocated += allocated
		total.InUse += inUse
		total.Hits += hits
		total.Misses += misses
	}
	return total
}

// Stats represents pool counters for monitoring.
type Stats struct {
	// Allocated is the total number of objects created by the pool
	Allocated int64
	// InUse is the current number of objects checked out from the pool
	InUse int64
	// Hits is the number of Get calls served
	Hits int64
	// Misses is the number of Get calls that had to allocate
	Misses int64
}

// GlobalBufferPool provides size-based byte buffer pooling for I/O scratch
// space. Stream copies in pkg/compression draw from it.
var GlobalBufferPool = NewBufferPool()
