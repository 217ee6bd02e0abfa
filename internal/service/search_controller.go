package service

import (
	"context"
	"sync"
	"time"

	"github.com/saadjs/littlelemon/internal/logger"
	"github.com/saadjs/littlelemon/internal/model"
)

type Searcher interface {
	Search(ctx context.Context, text string) ([]model.MenuItem, error)
}

// Timer is the pending-search handle; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests swap in a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SearchController debounces query text. Each SetText cancels the pending
// search and schedules a new one. A text generation is searched at most
// once, and only the search for the latest text may replace the displayed
// results.
type SearchController struct {
	searcher Searcher
	delay    time.Duration
	after    AfterFunc
	log      *logger.Logger
	onApply  func(text string, items []model.MenuItem)

	ctx    context.Context
	cancel context.CancelFunc

	// applyMu orders result replacement and the OnApply callback.
	applyMu sync.Mutex

	mu         sync.Mutex
	text       string
	results    []model.MenuItem
	timer      Timer
	gen        uint64
	claimedGen uint64
	inFlight   int
	closed     bool
	// changed is closed and replaced on every state transition.
	changed chan struct{}
}

type SearchOption func(*SearchController)

func WithAfterFunc(after AfterFunc) SearchOption {
	return func(c *SearchController) { c.after = after }
}

func WithSearchLogger(l *logger.Logger) SearchOption {
	return func(c *SearchController) { c.log = l }
}

// OnApply is called whenever results are replaced. Calls never overlap.
func OnApply(fn func(text string, items []model.MenuItem)) SearchOption {
	return func(c *SearchController) { c.onApply = fn }
}

func NewSearchController(searcher Searcher, delay time.Duration, initial []model.MenuItem, opts ...SearchOption) *SearchController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &SearchController{
		searcher: searcher,
		delay:    delay,
		after:    realAfterFunc,
		results:  cloneMenuItems(initial),
		ctx:      ctx,
		cancel:   cancel,
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrNop(c.log)
	return c
}

func (c *SearchController) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.text = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = c.after(c.delay, func() { c.run(gen, text) })
	c.notifyLocked()
}

// run searches for one generation. A generation already claimed by the
// timer or by Flush is skipped, since Stop cannot recall a fired callback.
func (c *SearchController) run(gen uint64, text string) {
	c.mu.Lock()
	if c.closed || gen != c.gen || gen <= c.claimedGen {
		c.mu.Unlock()
		return
	}
	c.claimedGen = gen
	c.inFlight++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.notifyLocked()
		c.mu.Unlock()
	}()

	items, err := c.searcher.Search(c.ctx, text)
	if err != nil {
		c.log.Error("search.run", "search failed", err)
		items = []model.MenuItem{}
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("search.run", "dropping stale results for "+text)
		return
	}
	c.results = items
	c.timer = nil
	fn := c.onApply
	c.mu.Unlock()

	if fn != nil {
		fn(text, cloneMenuItems(items))
	}
}

// Flush runs the pending search now instead of waiting out the delay, and
// returns once no search is in flight.
func (c *SearchController) Flush() {
	c.mu.Lock()
	if !c.closed && c.timer != nil && c.claimedGen < c.gen {
		c.timer.Stop()
		gen, text := c.gen, c.text
		c.mu.Unlock()
		c.run(gen, text)
	} else {
		c.mu.Unlock()
	}
	_ = c.waitFor(context.Background(), func() bool { return c.closed || c.inFlight == 0 })
}

// WaitIdle blocks until no search is pending or in flight, the controller
// is closed, or ctx is done.
func (c *SearchController) WaitIdle(ctx context.Context) error {
	return c.waitFor(ctx, func() bool { return c.closed || (c.timer == nil && c.inFlight == 0) })
}

// waitFor evaluates cond under mu after every state transition.
func (c *SearchController) waitFor(ctx context.Context, cond func() bool) error {
	for {
		c.mu.Lock()
		ok := cond()
		changed := c.changed
		c.mu.Unlock()
		if ok {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *SearchController) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// State returns the current query text and a copy of the displayed results.
func (c *SearchController) State() (string, []model.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, cloneMenuItems(c.results)
}

// Pending reports whether a scheduled search has not yet applied.
func (c *SearchController) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}

// Close cancels any pending search. Results arriving afterwards are dropped.
func (c *SearchController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cancel()
	c.notifyLocked()
}
