package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingFetch returns successive generations of a collection and counts
// remote calls.
type countingFetch struct {
	calls atomic.Int64
	delay time.Duration
	err   error
}

func (f *countingFetch) fetch(ctx context.Context) ([]string, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	gen := string(rune('a' + n - 1))
	return []string{gen + "1", gen + "2", gen + "3"}, nil
}

func TestCache_GetFillsOnce(t *testing.T) {
	f := &countingFetch{}
	c := New("users", f.fetch, discardLogger())

	if c.Loaded() {
		t.Fatal("expected new cache to be empty")
	}
	first, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calls.Load() != 1 {
		t.Fatalf("expected 1 fetch, got %d", f.calls.Load())
	}
	if first[0] != "a1" || second[0] != "a1" {
		t.Fatalf("expected cached generation a, got %v and %v", first, second)
	}
	if !c.Loaded() {
		t.Fatal("expected cache to be loaded")
	}
}

func TestCache_GetErrorLeavesCacheEmpty(t *testing.T) {
	f := &countingFetch{err: errors.New("remote down")}
	c := New("users", f.fetch, discardLogger())

	if _, err := c.Get(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Loaded() {
		t.Fatal("expected cache to stay empty after failed fetch")
	}

	f.err = nil
	items, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
}

func TestCache_RefreshReplacesValue(t *testing.T) {
	f := &countingFetch{}
	c := New("units", f.fetch, discardLogger())

	if _, err := c.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	refreshed, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed[0] != "b1" {
		t.Fatalf("expected generation b, got %v", refreshed)
	}

	before := f.calls.Load()
	got, _ := c.Get(context.Background())
	if f.calls.Load() != before {
		t.Fatal("Get after Refresh must not fetch")
	}
	if got[0] != "b1" {
		t.Fatalf("expected refreshed value, got %v", got)
	}
}

func TestCache_RefreshErrorKeepsPreviousValue(t *testing.T) {
	f := &countingFetch{}
	c := New("units", f.fetch, discardLogger())
	_, _ = c.Get(context.Background())

	f.err = errors.New("remote down")
	if _, err := c.Refresh(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	got, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != "a1" {
		t.Fatalf("expected previous value to survive, got %v", got)
	}
}

func TestCache_Invalidate(t *testing.T) {
	f := &countingFetch{}
	c := New("users", f.fetch, discardLogger())
	_, _ = c.Get(context.Background())

	c.Invalidate()
	if c.Loaded() {
		t.Fatal("expected empty cache after Invalidate")
	}
	got, _ := c.Get(context.Background())
	if got[0] != "b1" || f.calls.Load() != 2 {
		t.Fatalf("expected refetch after Invalidate, got %v after %d calls", got, f.calls.Load())
	}
}

func TestCache_ConcurrentFirstReadsConverge(t *testing.T) {
	f := &countingFetch{delay: 20 * time.Millisecond}
	c := New("users", f.fetch, discardLogger())

	const readers = 50
	results := make([][]string, readers)
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := c.Get(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			results[i] = items
		}(i)
	}
	wg.Wait()

	cached, _ := c.Get(context.Background())
	for i, r := range results {
		if len(r) != 3 || r[0][0] != r[1][0] || r[1][0] != r[2][0] {
			t.Fatalf("reader %d saw a torn value %v", i, r)
		}
	}
	if cached[0] != "a1" {
		t.Fatalf("expected the first fetch to win, got %v", cached)
	}
}

// TestProperty_NoTornReadsDuringRefresh runs readers concurrently with a
// number of refreshes. Every read must observe one whole generation, and
// after the last refresh returns every read sees exactly its value without
// a fetch.
func TestProperty_NoTornReadsDuringRefresh(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		readers := rapid.IntRange(1, 16).Draw(t, "readers")
		refreshes := rapid.IntRange(1, 5).Draw(t, "refreshes")

		f := &countingFetch{}
		c := New("users", f.fetch, discardLogger())

		var torn atomic.Bool
		var wg sync.WaitGroup
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				items, err := c.Get(context.Background())
				if err != nil || len(items) != 3 || items[0][0] != items[2][0] {
					torn.Store(true)
				}
			}()
		}

		var last []string
		for i := 0; i < refreshes; i++ {
			items, err := c.Refresh(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			last = items
		}
		wg.Wait()

		if torn.Load() {
			t.Fatal("a reader observed a partial collection")
		}

		calls := f.calls.Load()
		for i := 0; i < readers; i++ {
			got, _ := c.Get(context.Background())
			if got[0] != last[0] {
				t.Fatalf("expected refreshed value %v, got %v", last, got)
			}
		}
		if f.calls.Load() != calls {
			t.Fatal("reads after refresh must not fetch")
		}
	})
}

func TestCache_GetSurvivesStarterCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]string, error) {
		close(started)
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []string{"Rice", "Labor"}, nil
	}
	c := New("units", fetch, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	type result struct {
		items []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		items, err := c.Get(ctx)
		done <- result{items, err}
	}()

	<-started
	cancel()
	close(release)

	res := <-done
	if res.err != nil {
		t.Fatalf("expected shared fetch to ignore starter cancellation, got %v", res.err)
	}
	if len(res.items) != 2 || !c.Loaded() {
		t.Fatalf("expected cache filled with 2 units, got %v (loaded=%v)", res.items, c.Loaded())
	}

	items, err := c.Get(context.Background())
	if err != nil || len(items) != 2 {
		t.Fatalf("expected cached units for later callers, got %v, %v", items, err)
	}
}
