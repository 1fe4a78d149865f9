package listing

import (
	"apartmenthub/models"
	"context"
	"errors"
	"slices"
	"sync"
)

// DefaultPerPage matches the server's default page size.
const DefaultPerPage = models.DefaultPerPage

// ErrSuperseded is returned for a fetch whose result was discarded because
// a newer fetch started after it.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// PageLister fetches one page of apartments. *client.Client implements it.
type PageLister interface {
	ListApartments(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error)
}

// Snapshot is a consistent view of the fetcher's state.
type Snapshot struct {
	Filters Filters
	Items   []models.Apartment
	Total   *int64
	Loading bool
	Err     error
	HasMore bool

	version uint64
}

type fetchRequest struct {
	filters Filters
	replace bool
}

type fetcherOptions struct {
	perPage  int
	onChange func(Snapshot)
}

type FetcherOption func(*fetcherOptions)

func WithPerPage(n int) FetcherOption {
	return func(o *fetcherOptions) { o.perPage = n }
}

// WithOnChange registers a callback run after every applied result, newest
// last. It must not block for long.
func WithOnChange(fn func(Snapshot)) FetcherOption {
	return func(o *fetcherOptions) { o.onChange = fn }
}

// Fetcher loads pages and accumulates them. Only the most recently started
// fetch may change state: starting a fetch cancels the one in flight, and a
// completion from an older generation is dropped.
type Fetcher struct {
	lister   PageLister
	perPage  int
	onChange func(Snapshot)
	wg       sync.WaitGroup

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	last    *fetchRequest
	loaded  Filters
	items   []models.Apartment
	total   *int64
	loading bool
	err     error
	version uint64

	notifyMu sync.Mutex
	notified uint64
}

func NewFetcher(lister PageLister, opts ...FetcherOption) *Fetcher {
	o := fetcherOptions{perPage: DefaultPerPage}
	for _, opt := range opts {
		opt(&o)
	}
	return &Fetcher{
		lister:   lister,
		perPage:  o.perPage,
		onChange: o.onChange,
		loaded:   DefaultFilters(),
	}
}

// Fetch loads filters' page and waits for it. replace discards the
// accumulated items on success; otherwise the page is appended. On failure
// the accumulated items are kept.
func (f *Fetcher) Fetch(ctx context.Context, filters Filters, replace bool) error {
	return <-f.Start(ctx, filters, replace)
}

// Start is Fetch without waiting. The fetch is registered as the newest
// before Start returns, so calls made in order are applied in order.
func (f *Fetcher) Start(ctx context.Context, filters Filters, replace bool) <-chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startLocked(ctx, fetchRequest{filters: filters.normalize(), replace: replace})
}

// Retry re-issues the last request. It is a no-op before the first fetch.
func (f *Fetcher) Retry(ctx context.Context) error {
	return <-f.StartRetry(ctx)
}

// StartRetry is Retry without waiting.
func (f *Fetcher) StartRetry(ctx context.Context) <-chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil {
		done := make(chan error, 1)
		done <- nil
		return done
	}
	return f.startLocked(ctx, *f.last)
}

// LoadMore appends the page after the last one loaded. It does nothing
// while a fetch is in flight or when every item is already loaded.
func (f *Fetcher) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || !f.hasMoreLocked() {
		f.mu.Unlock()
		return nil
	}
	next := f.loaded
	next.Page++
	done := f.startLocked(ctx, fetchRequest{filters: next, replace: false})
	f.mu.Unlock()
	return <-done
}

// CanLoadMore reports whether LoadMore would issue a request.
func (f *Fetcher) CanLoadMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.loading && f.hasMoreLocked()
}

func (f *Fetcher) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

// Wait blocks until every started fetch has finished.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

func (f *Fetcher) startLocked(ctx context.Context, req fetchRequest) <-chan error {
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	fctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.last = &req
	f.loading = true
	f.err = nil

	done := make(chan error, 1)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer cancel()

		page, err := f.lister.ListApartments(fctx, req.filters.Query(f.perPage))
		snap, err := f.apply(gen, req, page, err)
		if !errors.Is(err, ErrSuperseded) {
			f.notify(snap)
		}
		done <- err
	}()
	return done
}

func (f *Fetcher) apply(gen uint64, req fetchRequest, page *models.PaginatedApartments, err error) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen {
		return Snapshot{}, ErrSuperseded
	}
	f.cancel = nil
	f.loading = false
	f.version++

	if err != nil {
		f.err = err
		return f.snapshotLocked(), err
	}

	if req.replace {
		f.items = slices.Clone(page.Data)
	} else {
		f.items = append(f.items, page.Data...)
	}
	if f.items == nil {
		f.items = []models.Apartment{}
	}
	f.total = page.Total
	f.loaded = req.filters
	return f.snapshotLocked(), nil
}

func (f *Fetcher) notify(snap Snapshot) {
	if f.onChange == nil {
		return
	}
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()
	if snap.version <= f.notified {
		return
	}
	f.notified = snap.version
	f.onChange(snap)
}

// hasMoreLocked assumes more items exist until the server reports a total.
func (f *Fetcher) hasMoreLocked() bool {
	if f.total == nil {
		return true
	}
	return int64(len(f.items)) < *f.total
}

func (f *Fetcher) snapshotLocked() Snapshot {
	var total *int64
	if f.total != nil {
		t := *f.total
		total = &t
	}
	return Snapshot{
		Filters: f.loaded,
		Items:   slices.Clone(f.items),
		Total:   total,
		Loading: f.loading,
		Err:     f.err,
		HasMore: f.hasMoreLocked(),
		version: f.version,
	}
}
