package cache

import (
	"testing"
	"time"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	m.Set("k", "value", time.Minute)
	got, ok := m.Get("k")
	if !ok || got != "value" {
		t.Fatalf("Get = %v, %v", got, ok)
	}

	if _, ok := m.Get("absent"); ok {
		t.Error("Get of an absent key succeeded")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	m.Set("k", "value", -time.Second)
	if _, ok := m.Get("k"); ok {
		t.Error("expired entry still readable")
	}
	if m.Stats().Keys != 0 {
		t.Error("expired entry not dropped on read")
	}
}

func TestMemoryInvalidateAndFlush(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	m.Set("a", 1, time.Minute)
	m.Set("b", 2, time.Minute)

	m.Invalidate("a")
	if _, ok := m.Get("a"); ok {
		t.Error("invalidated entry still readable")
	}
	if _, ok := m.Get("b"); !ok {
		t.Error("Invalidate removed an unrelated key")
	}

	m.Flush()
	if _, ok := m.Get("b"); ok {
		t.Error("entry survived Flush")
	}
}

func TestMemoryStats(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	m.Set("k", "v", time.Minute)
	m.Get("k")    // hit
	m.Get("k")    // hit
	m.Get("miss") // miss

	s := m.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 || s.Keys != 1 {
		t.Errorf("stats: %+v", s)
	}
	if s.TotalRequests != 3 {
		t.Errorf("total requests: %d", s.TotalRequests)
	}
	if s.HitRate != 66.67 {
		t.Errorf("hit rate: %v", s.HitRate)
	}
}

func TestMemoryStatsEmpty(t *testing.T) {
	m := NewMemory(0)
	defer m.Close()

	s := m.Stats()
	if s.HitRate != 0 || s.TotalRequests != 0 {
		t.Errorf("stats on fresh cache: %+v", s)
	}
}

func TestMemorySweepReclaimsExpired(t *testing.T) {
	m := NewMemory(5 * time.Millisecond)
	defer m.Close()

	m.Set("old", "v", time.Millisecond)
	m.Set("new", "v", time.Minute)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.Stats().Keys == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Errorf("sweep did not reclaim the expired entry: %+v", m.Stats())
}
