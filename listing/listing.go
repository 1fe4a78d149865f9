package listing

import (
	"context"
	"time"
)

type options struct {
	debounce time.Duration
	path     string
	perPage  int
	onChange func(Snapshot)
}

type Option func(*options)

func WithDebounceWindow(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

func WithURLPath(path string) Option {
	return func(o *options) { o.path = path }
}

func WithPageSize(n int) Option {
	return func(o *options) { o.perPage = n }
}

// WithSnapshots registers a callback for every applied fetch result.
func WithSnapshots(fn func(Snapshot)) Option {
	return func(o *options) { o.onChange = fn }
}

// Listing drives a Fetcher from a StateManager: search, project and page
// commits replace the results, load-more commits append to them.
type Listing struct {
	state   *StateManager
	fetcher *Fetcher
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds a Listing and starts loading initial. Fetches run under ctx
// until Close.
func New(ctx context.Context, lister PageLister, initial Filters, opts ...Option) *Listing {
	o := options{debounce: DefaultDebounce, path: "/", perPage: DefaultPerPage}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	l := &Listing{ctx: ctx, cancel: cancel}
	l.fetcher = NewFetcher(lister, WithPerPage(o.perPage), WithOnChange(o.onChange))
	l.state = NewStateManager(initial, l.onCommit, WithDebounce(o.debounce), WithPath(o.path))

	l.fetcher.Start(ctx, l.state.Filters(), true)
	return l
}

func (l *Listing) onCommit(c Commit) {
	l.fetcher.Start(l.ctx, c.Filters, !c.Append)
}

func (l *Listing) SetSearch(text string) { l.state.SetSearch(text) }
func (l *Listing) SetProjectFilter(project string) { l.state.SetProjectFilter(project) }
func (l *Listing) SetPage(page int) { l.state.SetPage(page) }

// LoadMore advances to the next page as an append. After a failed fetch it
// retries that fetch instead, so a page is never skipped.
func (l *Listing) LoadMore() {
	snap := l.fetcher.Snapshot()
	if snap.Err != nil && !snap.Loading {
		l.Retry()
		return
	}
	if l.fetcher.CanLoadMore() {
		l.state.NextPage()
	}
}

// Retry re-issues the last request in the background.
func (l *Listing) Retry() {
	l.fetcher.StartRetry(l.ctx)
}

func (l *Listing) Snapshot() Snapshot { return l.fetcher.Snapshot() }
func (l *Listing) Filters() Filters { return l.state.Filters() }
func (l *Listing) SearchInput() string { return l.state.SearchInput() }
func (l *Listing) URL() string { return l.state.URL() }

// Wait blocks until every started fetch has finished. Pending debounced
// search text is not waited for.
func (l *Listing) Wait() {
	l.fetcher.Wait()
}

// Close drops pending search text, cancels in-flight fetches and waits for
// them to return.
func (l *Listing) Close() {
	l.state.Close()
	l.cancel()
	l.fetcher.Wait()
}
