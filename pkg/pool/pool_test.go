package pool

import (
	"testing"
)

type scratch struct {
	data []byte
	used bool
}

func TestPoolResetHookRunsOnPut(t *testing.T) {
	resets := 0
	p := New(
		func() *scratch { return &scratch{data: make([]byte, 0, 64)} },
		func(s *scratch) {
			s.data = s.data[:0]
			s.used = false
			resets++
		},
	)

	s := p.Get()
	s.data = append(s.data, 1, 2, 3)
	s.used = true
	p.Put(s)

	if resets != 1 {
		t.Fatalf("reset ran %d times, want 1", resets)
	}
	if s.used || len(s.data) != 0 {
		t.Fatalf("object not reset: used=%t len=%d", s.used, len(s.data))
	}
}

func TestPoolStats(t *testing.T) {
	p := New(func() *scratch { return &scratch{} }, nil)

	a := p.Get()
	b := p.Get()

	allocated, inUse, hits, _ := p.Stats()
	if allocated < 2 {
		t.Errorf("allocated = %d, want >= 2", allocated)
	}
	if inUse != 2 {
		t.Errorf("inUse = %d, want 2", inUse)
	}
	if hits != 2 {
		t.Errorf("hits = %d, want 2", hits)
	}

	p.Put(a)
	p.Put(b)

	_, inUse, _, _ = p.Stats()
	if inUse != 0 {
		t.Errorf("inUse after puts = %d, want 0", inUse)
	}
}

func TestBufferPoolBucketSelection(t *testing.T) {
	bp := NewBufferPool()

	tests := []struct {
		request int
		wantCap int
	}{
		{100, 512},
		{512, 512},
		{600, 1 << 10},
		{4096, 4 << 10},
		{5000, 16 << 10},
		{1 << 20, 1 << 20},
	}
	for _, tt := range tests {
		buf := bp.Get(tt.request)
		if len(buf) != tt.request {
			t.Errorf("Get(%d): len = %d, want %d", tt.request, len(buf), tt.request)
		}
		if cap(buf) != tt.wantCap {
			t.Errorf("Get(%d): cap = %d, want %d", tt.request, cap(buf), tt.wantCap)
		}
		bp.Put(buf)
	}
}

func TestBufferPoolOversizedRequest(t *testing.T) {
	bp := NewBufferPool()

	// Above the top bucket: plain allocation, exact capacity
	big := bp.Get(17 << 20)
	if len(big) != 17<<20 {
		t.Fatalf("len = %d, want %d", len(big), 17<<20)
	}

	// Put of a buffer matching no bucket is a silent drop
	bp.Put(big)
	bp.Put(make([]byte, 777))
}

func TestBufferPoolStatsAggregate(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(1024)
	stats := bp.Stats()
	if stats.InUse != 1 {
		t.Errorf("InUse = %d, want 1", stats.InUse)
	}
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}

	bp.Put(buf)
	stats = bp.Stats()
	if stats.InUse != 0 {
		t.Errorf("InUse after put = %d, want 0", stats.InUse)
	}
}
