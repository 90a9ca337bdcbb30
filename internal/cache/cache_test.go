package cache

import (
	"testing"
	"time"
)

func TestCache_MissThenHit(t *testing.T) {
	c := New(10, NewTTLResolver(time.Minute, nil))

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set("fake", "a", []byte("result"))
	v, ok := c.Get("a")
	if !ok || string(v) != "result" {
		t.Fatalf("Get(a) = %q, %v; want result, true", v, ok)
	}
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	c := New(10, NewTTLResolver(time.Minute, map[string]time.Duration{"nocache": 0}))
	c.Set("nocache", "k", []byte("x"))
	if _, ok := c.Get("k"); ok {
		t.Fatal("TTL of 0 must make Set a no-op")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(10, NewTTLResolver(10*time.Millisecond, nil)).WithClock(clock)

	c.Set("fake", "k", []byte("v"))
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before TTL elapses")
	}

	now = now.Add(11 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss once TTL has elapsed")
	}
}

func TestCache_TwoPassEviction(t *testing.T) {
	// spec.md §8 scenario 5: maxEntries=2, A (TTL 60s) and B (TTL 60s)
	// inserted, clock advanced past A's TTL, then C inserted. Final cache
	// must be exactly {B, C} — A evicted as expired before FIFO kicks in.
	now := time.Now()
	clock := func() time.Time { return now }

	ttl := NewTTLResolver(60*time.Second, nil)
	c := New(2, ttl).WithClock(clock)

	c.Set("fake", "A", []byte("a"))
	now = now.Add(time.Second)
	c.Set("fake", "B", []byte("b"))

	now = now.Add(59 * time.Second) // A now expired (60s old), B still alive (59s old)
	c.Set("fake", "C", []byte("c"))

	if c.Len() != 2 {
		t.Fatalf("cache length = %d, want 2", c.Len())
	}
	if _, ok := c.Get("A"); ok {
		t.Fatal("A should have been evicted as expired")
	}
	if _, ok := c.Get("B"); !ok {
		t.Fatal("B should have survived eviction")
	}
	if _, ok := c.Get("C"); !ok {
		t.Fatal("C should be present")
	}
}

func TestCache_FIFOWhenNothingExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	c := New(2, NewTTLResolver(time.Hour, nil)).WithClock(clock)

	c.Set("fake", "A", []byte("a"))
	now = now.Add(time.Millisecond)
	c.Set("fake", "B", []byte("b"))
	now = now.Add(time.Millisecond)
	c.Set("fake", "C", []byte("c"))

	if c.Len() != 2 {
		t.Fatalf("cache length = %d, want 2", c.Len())
	}
	if _, ok := c.Get("A"); ok {
		t.Fatal("A (oldest insertion) should have been evicted")
	}
}

func TestCache_CapacityInvariantAfterSet(t *testing.T) {
	c := New(3, NewTTLResolver(time.Hour, nil))
	for i := 0; i < 10; i++ {
		c.Set("fake", Key(rune('a'+i)), []byte("v"))
		if c.Len() > 3 {
			t.Fatalf("|cache| = %d exceeds maxEntries after Set", c.Len())
		}
	}
}

func TestCache_Stats(t *testing.T) {
	c := New(10, NewTTLResolver(time.Minute, nil))
	c.Set("fake", "k", []byte("v"))
	c.Get("k")
	c.Get("missing")

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Entries != 1 {
		t.Fatalf("stats = %+v, want hits=1 misses=1 entries=1", s)
	}
	if s.HitRate != 0.5 {
		t.Fatalf("hit rate = %f, want 0.5", s.HitRate)
	}
}

func TestCache_FlushAndInvalidate(t *testing.T) {
	c := New(10, NewTTLResolver(time.Minute, nil))
	c.Set("fake", "a", []byte("1"))
	c.Set("fake", "b", []byte("2"))

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be invalidated")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Flush, got %d", c.Len())
	}
}

func TestNull_AlwaysMissesAndDiscardsWrites(t *testing.T) {
	var c Cacher = Null{}
	c.Set("fake", "k", []byte("v"))
	if _, ok := c.Get("k"); ok {
		t.Fatal("Null cache must always miss")
	}
}
