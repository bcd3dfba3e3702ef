package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestAddIsFirstWriterWins(t *testing.T) {
	c := New[string]()
	defer c.Close()

	first := c.Add("anime_1", "v1", 0)
	second := c.Add("anime_1", "v2", 0)

	if second.Value != "v1" {
		t.Fatalf("second Add returned %q, want existing v1", second.Value)
	}
	if first.Value != "v1" {
		t.Fatalf("first Add returned %q", first.Value)
	}
	if got := c.Get("anime_1"); got == nil || got.Value != "v1" {
		t.Fatalf("Get() = %+v, want v1", got)
	}
}

func TestGetRoundTripWithoutExpiry(t *testing.T) {
	c := New[[]string]()
	defer c.Close()

	want := []string{"FullmetalAlchemist", "Brotherhood"}
	c.Add("anime_Fullmetal_Alchemist_2", want, 0)

	time.Sleep(20 * time.Millisecond)
	res := c.Get("anime_Fullmetal_Alchemist_2")
	if res == nil {
		t.Fatalf("expected entry")
	}
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	if res.Key != "anime_Fullmetal_Alchemist_2" {
		t.Fatalf("unexpected key %q", res.Key)
	}
	if c.pending() != 0 {
		t.Fatalf("no expiry should be scheduled, got %d", c.pending())
	}
}

func TestGetMiss(t *testing.T) {
	c := New[int]()
	defer c.Close()

	if res := c.Get("never"); res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
}

func TestExpiryFires(t *testing.T) {
	c := New[[]string]()
	defer c.Close()

	c.Add("anime_1", []string{"FullmetalAlchemist"}, 50*time.Millisecond)
	res := c.Get("anime_1")
	if res == nil || len(res.Value) != 1 || res.Value[0] != "FullmetalAlchemist" {
		t.Fatalf("expected list right after Add, got %+v", res)
	}

	time.Sleep(60 * time.Millisecond)
	waitFor(t, time.Second, func() bool { return c.Get("anime_1") == nil })
	if c.pending() != 0 {
		t.Fatalf("timer should be released after firing, got %d pending", c.pending())
	}
}

func TestExpiryDoesNotFireEarly(t *testing.T) {
	c := New[string]()
	defer c.Close()

	c.Add("k", "v", 500*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	if res := c.Get("k"); res == nil || res.Value != "v" {
		t.Fatalf("entry vanished before its expiry: %+v", res)
	}
}

func TestNegativeExpiryMeansNone(t *testing.T) {
	c := New[string]()
	defer c.Close()

	c.Add("k", "v", -time.Second)
	if c.pending() != 0 {
		t.Fatalf("negative expiry must not schedule a timer")
	}
	time.Sleep(10 * time.Millisecond)
	if c.Get("k") == nil {
		t.Fatalf("expected entry to remain")
	}
}

func TestRemoveIsSilentAndScoped(t *testing.T) {
	c := New[string]()
	defer c.Close()

	c.Add("a", "A", 0)
	c.Remove("missing")
	c.Remove("missing")

	if c.Get("a") == nil {
		t.Fatalf("removing an absent key touched another entry")
	}

	c.Remove("a")
	if c.Get("a") != nil {
		t.Fatalf("expected a to be removed")
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	c := New[int]()
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.Add(Key("anime", i), i, time.Hour)
	}
	c.Clear()

	for i := 0; i < 10; i++ {
		if c.Get(Key("anime", i)) != nil {
			t.Fatalf("key %d survived Clear", i)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d after Clear", c.Len())
	}
	if c.pending() != 10 {
		t.Fatalf("Clear must leave scheduled expiries alone, got %d", c.pending())
	}
}

type user struct{ Slug string }

func TestNegativeLookupIsDistinctFromMiss(t *testing.T) {
	c := New[*user]()
	defer c.Close()

	c.Add("user_42", nil, 0)

	res := c.Get("user_42")
	if res == nil {
		t.Fatalf("cached negative lookup reported as miss")
	}
	if res.Value != nil {
		t.Fatalf("expected nil value, got %+v", res.Value)
	}
	if c.Get("user_43") != nil {
		t.Fatalf("expected a true miss for user_43")
	}
}

func TestStaleTimerRemovesReinsertedKey(t *testing.T) {
	c := New[string]()
	defer c.Close()

	c.Add("k", "old", 60*time.Millisecond)
	c.Remove("k")
	c.Add("k", "new", 0)

	waitFor(t, time.Second, func() bool { return c.Get("k") == nil })
}

func TestGenerationalExpiryKeepsReinsertedKey(t *testing.T) {
	c := New[string](WithGenerationalExpiry())
	defer c.Close()

	c.Add("k", "old", 30*time.Millisecond)
	c.Remove("k")
	c.Add("k", "new", 0)

	waitFor(t, time.Second, func() bool { return c.pending() == 0 })
	res := c.Get("k")
	if res == nil || res.Value != "new" {
		t.Fatalf("stale expiry removed the new entry: %+v", res)
	}
}

func TestGenerationalExpiryStillExpiresOwnEntry(t *testing.T) {
	c := New[string](WithGenerationalExpiry())
	defer c.Close()

	c.Add("k", "v", 20*time.Millisecond)
	waitFor(t, time.Second, func() bool { return c.Get("k") == nil })
}

func TestCloseStopsPendingExpiry(t *testing.T) {
	c := New[string]()
	c.Add("k", "v", 30*time.Millisecond)
	c.Close()
	c.Close()

	if c.pending() != 0 {
		t.Fatalf("Close left %d timers", c.pending())
	}
	time.Sleep(60 * time.Millisecond)
	if c.Get("k") == nil {
		t.Fatalf("entry expired after Close")
	}

	c.Add("other", "v", 10*time.Millisecond)
	if c.pending() != 0 {
		t.Fatalf("Add after Close scheduled an expiry")
	}
}

func TestExpireAfterCloseIsIgnored(t *testing.T) {
	c := New[string]()
	c.Add("k", "v", 0)
	c.Close()

	// A timer that already fired before Close may still run expire.
	c.expire(1, "k", 1)
	if c.Get("k") == nil {
		t.Fatalf("expire removed an entry after Close")
	}
}

func TestKeysAndLen(t *testing.T) {
	c := New[int]()
	defer c.Close()

	c.Add("manga_2", 2, 0)
	c.Add("anime_1", 1, 0)

	if diff := cmp.Diff([]string{"anime_1", "manga_2"}, c.Keys()); diff != "" {
		t.Fatalf("Keys() mismatch (-want +got):\n%s", diff)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		parts []any
		want  string
	}{
		{[]any{"anime", 123}, "anime_123"},
		{[]any{"anime", "Fullmetal Alchemist", 1}, "anime_Fullmetal_Alchemist_1"},
		{[]any{"user", "vikhyat"}, "user_vikhyat"},
		{[]any{"anime", 1, "characters", 20}, "anime_1_characters_20"},
	}
	for _, tt := range tests {
		if got := Key(tt.parts...); got != tt.want {
			t.Errorf("Key(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestResultSize(t *testing.T) {
	var nilResult *Result[int]
	if nilResult.Size() != 0 {
		t.Fatalf("nil result should report zero size")
	}
	short := &Result[int64]{Key: "a", Value: 1}
	long := &Result[int64]{Key: "anime_Fullmetal_Alchemist_1", Value: 1}
	if long.Size() <= short.Size() {
		t.Fatalf("size should grow with the key: %d <= %d", long.Size(), short.Size())
	}
	if got := short.Map(); got["a"] != 1 || len(got) != 1 {
		t.Fatalf("Map() = %v", got)
	}
}

func TestConcurrentAddGet(t *testing.T) {
	c := New[string]()
	defer c.Close()

	const workers = 16
	var wg sync.WaitGroup
	winners := make([]string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			res := c.Add("shared", fmt.Sprintf("w%d", w), 0)
			winners[w] = res.Value
			for i := 0; i < 50; i++ {
				c.Add(Key("k", w, i), "v", time.Millisecond)
				c.Get(Key("k", w, i))
			}
		}(w)
	}
	wg.Wait()

	for _, v := range winners[1:] {
		if v != winners[0] {
			t.Fatalf("concurrent Adds disagreed on the stored value: %v", winners)
		}
	}
	c.Remove("shared")
	waitFor(t, 2*time.Second, func() bool { return c.Len() == 0 })
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New[string](WithMetrics(reg, "test"))
	defer c.Close()

	c.Get("a")
	c.Add("a", "A", 0)
	c.Add("a", "B", 0)
	c.Get("a")
	c.Add("b", "B", 10*time.Millisecond)
	c.Remove("a")

	if v := testutil.ToFloat64(c.metrics.hits); v != 1 {
		t.Fatalf("hits = %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.metrics.misses); v != 1 {
		t.Fatalf("misses = %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.metrics.adds); v != 2 {
		t.Fatalf("adds = %v, want 2", v)
	}
	if v := testutil.ToFloat64(c.metrics.duplicates); v != 1 {
		t.Fatalf("duplicates = %v, want 1", v)
	}
	if v := testutil.ToFloat64(c.metrics.removals); v != 1 {
		t.Fatalf("removals = %v, want 1", v)
	}

	waitFor(t, time.Second, func() bool { return testutil.ToFloat64(c.metrics.expirations) == 1 })
	if v := testutil.ToFloat64(c.metrics.entries); v != 0 {
		t.Fatalf("entries = %v, want 0", v)
	}
}

func TestMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New[string](WithMetrics(reg, "responses"))
	b := New[string](WithMetrics(reg, "tokens"))
	defer a.Close()
	defer b.Close()

	a.Add("x", "y", 0)
	if got := testutil.ToFloat64(b.metrics.adds); got != 0 {
		t.Fatalf("caches share counters: %v", got)
	}
}
