// Package feed drives the ad list: filter state, debounced refetching,
// and discarding responses that no longer match the latest request.
package feed

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period applied to rapid filter changes
// before a refetch is issued.
const DefaultDebounce = 250 * time.Millisecond

// Ad is the feed's view of a listing.
type Ad struct {
	ID          int64
	Type        string
	Title       string
	Description string
	Price       *int64
	Status      string
	OwnerName   string
	ImageURLs   []string
	CreatedAt   time.Time
}

// Filters is the complete query state of the feed.
type Filters struct {
	CommunityID int64
	Types       []string
	Search      string
	Sort        string
	Page        int
	Size        int
}

// Result is one fetched page plus its envelope.
type Result struct {
	Ads           []Ad
	TotalElements int64
	TotalPages    int
	Page          int
	Last          bool
}

// Fetcher performs the actual list call.
type Fetcher interface {
	FetchAds(ctx context.Context, f Filters) (*Result, error)
}

// Controller owns the feed state. Responses arriving out of order are
// resolved with a monotonically increasing request token: only the result
// of the most recently dispatched request is committed.
type Controller struct {
	mu       sync.Mutex
	fetcher  Fetcher
	debounce time.Duration
	timer    *time.Timer
	wg       sync.WaitGroup

	filters Filters
	seq     uint64
	current *Result
	lastErr error

	// OnUpdate, when set, is invoked after each committed result.
	OnUpdate func(Result)
}

func NewController(fetcher Fetcher, debounce time.Duration) *Controller {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Controller{fetcher: fetcher, debounce: debounce}
}

// SetCommunity switches the feed to another community and refetches
// immediately; a community switch is a navigation, not typing.
func (c *Controller) SetCommunity(ctx context.Context, communityID int64) {
	c.mu.Lock()
	c.filters.CommunityID = communityID
	c.filters.Page = 0
	c.mu.Unlock()
	c.dispatch(ctx)
}

// SetTypes switches the type tab. Pagination resets; the refetch is
// debounced so rapid tab hopping issues one request.
func (c *Controller) SetTypes(ctx context.Context, types []string) {
	c.mu.Lock()
	c.filters.Types = types
	c.filters.Page = 0
	c.mu.Unlock()
	c.schedule(ctx)
}

// SetSearch updates the free-text query, debounced per keystroke.
func (c *Controller) SetSearch(ctx context.Context, query string) {
	c.mu.Lock()
	c.filters.Search = query
	c.filters.Page = 0
	c.mu.Unlock()
	c.schedule(ctx)
}

// SetSort changes the sort key and refetches from the first page.
func (c *Controller) SetSort(ctx context.Context, sort string) {
	c.mu.Lock()
	c.filters.Sort = sort
	c.filters.Page = 0
	c.mu.Unlock()
	c.schedule(ctx)
}

// NextPage advances one page unless the current result was the last.
func (c *Controller) NextPage(ctx context.Context) {
	c.mu.Lock()
	if c.current != nil && c.current.Last {
		c.mu.Unlock()
		return
	}
	c.filters.Page++
	c.mu.Unlock()
	c.dispatch(ctx)
}

// Refresh refetches the current filter state immediately.
func (c *Controller) Refresh(ctx context.Context) {
	c.dispatch(ctx)
}

// Current returns the last committed result, nil before the first fetch.
func (c *Controller) Current() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Err returns the error of the latest request, if it failed. Errors are
// surfaced once and never retried.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Filters returns a snapshot of the current query state.
func (c *Controller) Filters() Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filters
	f.Types = append([]string(nil), c.filters.Types...)
	return f
}

// Wait blocks until all dispatched fetches have finished. Discarded ones
// count as finished. Wait does not cover a refetch still sitting on the
// debounce timer; callers that need it call Flush first.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Flush fires a pending debounced refetch immediately. A no-op when
// nothing is pending or the timer already fired.
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	pending := c.timer != nil && c.timer.Stop()
	c.timer = nil
	c.mu.Unlock()
	if pending {
		c.dispatch(ctx)
	}
}

// schedule arms the debounce timer, replacing any pending one.
func (c *Controller) schedule(ctx context.Context) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() { c.dispatch(ctx) })
	c.mu.Unlock()
}

// dispatch issues a fetch tagged with the next request token. When the
// response arrives, the token is compared against the latest dispatched
// one; a stale response is dropped without touching state.
func (c *Controller) dispatch(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	token := c.seq
	snapshot := c.filters
	snapshot.Types = append([]string(nil), c.filters.Types...)
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res, err := c.fetcher.FetchAds(ctx, snapshot)

		c.mu.Lock()
		if token != c.seq {
			c.mu.Unlock()
			return
		}
		var notify func(Result)
		if err != nil {
			c.lastErr = err
		} else {
			c.current = res
			c.lastErr = nil
			notify = c.OnUpdate
		}
		c.mu.Unlock()

		if notify != nil && res != nil {
			notify(*res)
		}
	}()
}
