package pool_test

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ajitpratap0/quasar/pkg/pool"
)

// ExampleNew demonstrates a custom typed pool with a reset hook.
func ExampleNew() {
	bufs := pool.New(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) },
		func(b *bytes.Buffer) { b.Reset() },
	)

	b := bufs.Get()
	b.WriteString("scratch work")
	fmt.Printf("Length: %d\n", b.Len())
	bufs.Put(b)

	// The returned buffer comes back reset
	b = bufs.Get()
	fmt.Printf("After reuse: %d\n", b.Len())
	bufs.Put(b)

	// Output:
	// Length: 12
	// After reuse: 0
}

// ExampleBufferPool_Get shows borrowing I/O scratch space from the global
// buffer pool.
func ExampleBufferPool_Get() {
	buf := pool.GlobalBufferPool.Get(2048)
	defer pool.GlobalBufferPool.Put(buf)

	fmt.Printf("Length: %d\n", len(buf))
	fmt.Printf("Fits request: %t\n", cap(buf) >= 2048)

	// Output:
	// Length: 2048
	// Fits request: true
}

// Example_concurrentUsage demonstrates that pools are safe for concurrent
// use across goroutines.
func Example_concurrentUsage() {
	counters := pool.New(
		func() *[]int { s := make([]int, 0, 8); return &s },
		func(s *[]int) { *s = (*s)[:0] },
	)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s := counters.Get()
			*s = append(*s, n)
			counters.Put(s)
		}(i)
	}
	wg.Wait()

	fmt.Println("all workers done")

	// Output:
	// all workers done
}
