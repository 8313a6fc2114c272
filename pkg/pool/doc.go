// Package pool implements type-safe object pooling for Quasar's scratch
// allocations. It builds on sync.Pool with statistics and an optional reset
// hook, keeping short-lived I/O buffers out of the garbage collector while
// columns hold the long-lived memory.
//
// # Core Types
//
//   - Pool[T]: generic pool for any type T
//   - BufferPool: byte buffers in power-of-two buckets (512B to 16MB)
//   - GlobalBufferPool: the shared BufferPool for I/O scratch space
//
// # Usage
//
// Creating a custom pool:
//
//	bufs := pool.New(
//	    func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
//	b := bufs.Get()
//	defer bufs.Put(b)
//
// Borrowing I/O scratch space:
//
//	buf := pool.GlobalBufferPool.Get(64 * 1024)
//	defer pool.GlobalBufferPool.Put(buf)
//	io.CopyBuffer(dst, src, buf)
//
// # Statistics
//
// Every pool tracks allocations, checkouts, hits and misses:
//
//	allocated, inUse, hits, misses := bufs.Stats()
//
// BufferPool.Stats aggregates the same counters across its buckets.
package pool
