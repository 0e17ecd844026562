package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingFetcher struct {
	mu      sync.Mutex
	started chan string
	release map[string]chan struct{}
	calls   []Filters
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{
		started: make(chan string, 16),
		release: make(map[string]chan struct{}),
	}
}

func (f *blockingFetcher) gate(search string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.release[search]
	if !ok {
		ch = make(chan struct{})
		f.release[search] = ch
	}
	return ch
}

func (f *blockingFetcher) FetchAds(ctx context.Context, filters Filters) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filters)
	f.mu.Unlock()
	f.started <- filters.Search
	<-f.gate(filters.Search)
	return &Result{Ads: []Ad{{Title: filters.Search}}, Page: filters.Page}, nil
}

func waitStarted(t *testing.T, f *blockingFetcher, want string) {
	t.Helper()
	select {
	case got := <-f.started:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for %q never started", want)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	f := newBlockingFetcher()
	c := NewController(f, time.Millisecond)

	// Filter change A, then filter change B while A is still in flight.
	c.SetSearch(ctx, "A")
	waitStarted(t, f, "A")
	c.SetSearch(ctx, "B")
	waitStarted(t, f, "B")

	// B's response arrives first, then A's late response.
	close(f.gate("B"))
	close(f.gate("A"))
	c.Wait()

	res := c.Current()
	require.NotNil(t, res)
	require.Len(t, res.Ads, 1)
	assert.Equal(t, "B", res.Ads[0].Title)
}

type recordingFetcher struct {
	mu    sync.Mutex
	calls []Filters
	err   error
}

func (f *recordingFetcher) FetchAds(ctx context.Context, filters Filters) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, filters)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &Result{Page: filters.Page, Last: filters.Page >= 2}, nil
}

func (f *recordingFetcher) snapshot() []Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Filters(nil), f.calls...)
}

func TestDebounceCollapsesRapidChanges(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	c := NewController(f, 50*time.Millisecond)

	// Typing: each keystroke re-arms the timer.
	c.SetSearch(ctx, "s")
	c.SetSearch(ctx, "so")
	c.SetSearch(ctx, "sof")
	c.SetSearch(ctx, "sofa")

	time.Sleep(150 * time.Millisecond)
	c.Wait()

	calls := f.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "sofa", calls[0].Search)
}

func TestFilterChangeResetsPagination(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	c := NewController(f, time.Millisecond)

	c.Refresh(ctx)
	c.Wait()
	c.NextPage(ctx)
	c.Wait()
	require.Equal(t, 1, c.Filters().Page)

	c.SetTypes(ctx, []string{"RENT"})
	time.Sleep(20 * time.Millisecond)
	c.Wait()

	calls := f.snapshot()
	last := calls[len(calls)-1]
	assert.Equal(t, 0, last.Page)
	assert.Equal(t, []string{"RENT"}, last.Types)
}

func TestNextPageStopsAtLast(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	c := NewController(f, time.Millisecond)

	c.Refresh(ctx)
	c.Wait()
	c.NextPage(ctx)
	c.Wait()
	c.NextPage(ctx)
	c.Wait()
	require.True(t, c.Current().Last)

	before := len(f.snapshot())
	c.NextPage(ctx)
	c.Wait()
	assert.Len(t, f.snapshot(), before)
}

func TestFlushFiresPendingRefetchImmediately(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	// An hour-long debounce: the fetch only runs if Flush fires it.
	c := NewController(f, time.Hour)

	c.SetSearch(ctx, "bike")
	c.Flush(ctx)
	c.Wait()

	calls := f.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "bike", calls[0].Search)
	require.NotNil(t, c.Current())
}

func TestFlushAfterTimerFiredDoesNotRefetchTwice(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	c := NewController(f, time.Millisecond)

	c.SetSearch(ctx, "x")
	time.Sleep(20 * time.Millisecond)
	c.Wait()
	require.Len(t, f.snapshot(), 1)

	c.Flush(ctx)
	c.Wait()
	assert.Len(t, f.snapshot(), 1)
}

func TestFlushWithNothingPendingIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{}
	c := NewController(f, time.Millisecond)

	c.Flush(ctx)
	c.Wait()
	assert.Empty(t, f.snapshot())
}

func TestFetchErrorSurfacedOnceNoRetry(t *testing.T) {
	ctx := context.Background()
	f := &recordingFetcher{err: errors.New("network down")}
	c := NewController(f, time.Millisecond)

	c.Refresh(ctx)
	c.Wait()

	require.Error(t, c.Err())
	assert.Nil(t, c.Current())
	assert.Len(t, f.snapshot(), 1)
}
