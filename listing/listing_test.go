package listing

import (
	"apartmenthub/models"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLister serves total apartments per query. Calls whose search has a
// gate block on it, ignoring cancellation, to simulate a slow response.
type fakeLister struct {
	mu       sync.Mutex
	total    int
	noTotal  bool
	calls    []models.ListApartmentsQuery
	gates    map[string]chan struct{}
	failNext error
	failFor  map[string]error
}

func newFakeLister(total int) *fakeLister {
	return &fakeLister{total: total, gates: map[string]chan struct{}{}, failFor: map[string]error{}}
}

func (f *fakeLister) ListApartments(_ context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	gate := f.gates[q.Search]
	err := f.failNext
	f.failNext = nil
	if e, ok := f.failFor[q.Search]; ok {
		err = e
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	data := []models.Apartment{}
	for i := (q.Page - 1) * q.PerPage; i < q.Page*q.PerPage && i < f.total; i++ {
		data = append(data, models.Apartment{ID: int64(i + 1), UnitNumber: fmt.Sprintf("%s-%d", q.Search, i+1)})
	}
	page := &models.PaginatedApartments{Data: data, Page: q.Page, PerPage: q.PerPage}
	if !f.noTotal {
		total := int64(f.total)
		page.Total = &total
	}
	return page, nil
}

func (f *fakeLister) Calls() []models.ListApartmentsQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ListApartmentsQuery(nil), f.calls...)
}

func ids(items []models.Apartment) []int64 {
	out := make([]int64, len(items))
	for i, apt := range items {
		out[i] = apt.ID
	}
	return out
}

func TestFiltersURL(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    string
	}{
		{name: "defaults", filters: DefaultFilters(), want: "/"},
		{name: "zero value", filters: Filters{}, want: "/"},
		{name: "search", filters: Filters{Search: "garden view", Project: AllProjects, Page: 1}, want: "/?search=garden+view"},
		{name: "project", filters: Filters{Project: "Sunrise Residency", Page: 1}, want: "/?project=Sunrise+Residency"},
		{name: "page", filters: Filters{Project: AllProjects, Page: 3}, want: "/?page=3"},
		{name: "all", filters: Filters{Search: "a&b", Project: "Elite", Page: 2}, want: "/?page=2&project=Elite&search=a%26b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.URL("/"))
		})
	}
}

func TestParseFilters(t *testing.T) {
	v, err := url.ParseQuery("search=garden&project=Elite&page=4")
	require.NoError(t, err)
	assert.Equal(t, Filters{Search: "garden", Project: "Elite", Page: 4}, ParseFilters(v))

	v, err = url.ParseQuery("page=abc")
	require.NoError(t, err)
	assert.Equal(t, DefaultFilters(), ParseFilters(v))

	f := Filters{Search: "x", Project: "P", Page: 9}
	assert.Equal(t, f, ParseFilters(f.Values()))
}

func TestFiltersQuery(t *testing.T) {
	q := Filters{Search: " garden ", Project: AllProjects, Page: 2}.Query(10)
	assert.Equal(t, models.ListApartmentsQuery{Page: 2, PerPage: 10, Search: "garden"}, q)

	q = Filters{Project: "Elite"}.Query(5)
	assert.Equal(t, models.ListApartmentsQuery{Page: 1, PerPage: 5, Project: "Elite"}, q)
}

func TestDebouncer_RunsLastTriggerOnce(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var runs atomic.Int32
	var last atomic.Value

	for _, v := range []string{"a", "ab", "abc"} {
		d.Trigger(func() {
			runs.Add(1)
			last.Store(v)
		})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, "abc", last.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32

	d.Trigger(func() { runs.Add(1) })
	d.Stop()
	d.Trigger(func() { runs.Add(1) })

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var runs atomic.Int32

	d.Trigger(func() { runs.Add(1) })
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())

	d.Trigger(func() { runs.Add(1) })
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_TriggerWaitsForRunningAction(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	entered := make(chan struct{})
	release := make(chan struct{})
	var runs atomic.Int32

	d.Trigger(func() {
		close(entered)
		<-release
	})
	<-entered

	triggered := make(chan struct{})
	go func() {
		d.Trigger(func() { runs.Add(1) })
		close(triggered)
	}()

	select {
	case <-triggered:
		t.Fatal("Trigger returned while the fired action was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-triggered:
	case <-time.After(time.Second):
		t.Fatal("Trigger did not return after the action finished")
	}
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

type commitRecorder struct {
	mu      sync.Mutex
	commits []Commit
}

func (r *commitRecorder) record(c Commit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, c)
}

func (r *commitRecorder) all() []Commit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Commit(nil), r.commits...)
}

func TestStateManager_SearchDebounced(t *testing.T) {
	rec := &commitRecorder{}
	s := NewStateManager(Filters{Project: "Elite", Page: 3}, rec.record, WithDebounce(30*time.Millisecond))
	defer s.Close()

	s.SetSearch("a")
	s.SetSearch("ab")
	s.SetSearch("abc")

	assert.Equal(t, "abc", s.SearchInput())
	assert.Equal(t, "", s.Filters().Search, "nothing is committed during the quiet period")

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	commits := rec.all()
	require.Len(t, commits, 1)
	assert.Equal(t, Filters{Search: "abc", Project: "Elite", Page: 1}, commits[0].Filters)
	assert.False(t, commits[0].Append)
	assert.Equal(t, "/?project=Elite&search=abc", commits[0].URL)
	assert.Equal(t, commits[0].URL, s.URL())
}

func TestStateManager_UnchangedSearchNotRecommitted(t *testing.T) {
	rec := &commitRecorder{}
	s := NewStateManager(Filters{Search: "garden"}, rec.record, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.SetSearch("gard")
	s.SetSearch("garden ")

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.all())
}

func TestStateManager_RetypedSearchResetsPage(t *testing.T) {
	rec := &commitRecorder{}
	s := NewStateManager(Filters{Search: "garden", Page: 3}, rec.record, WithDebounce(10*time.Millisecond))
	defer s.Close()

	s.SetSearch("garden")

	require.Eventually(t, func() bool { return len(rec.all()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Filters{Search: "garden", Project: AllProjects, Page: 1}, rec.all()[0].Filters)
	assert.Equal(t, "/?search=garden", s.URL())
}

func TestStateManager_ImmediateCommits(t *testing.T) {
	rec := &commitRecorder{}
	s := NewStateManager(DefaultFilters(), rec.record)
	defer s.Close()

	s.SetPage(3)
	s.SetProjectFilter("Skyline Towers")
	s.NextPage()
	s.SetProjectFilter("")
	s.SetProjectFilter(AllProjects)

	commits := rec.all()
	require.Len(t, commits, 4)

	assert.Equal(t, Commit{Filters: Filters{Project: AllProjects, Page: 3}, URL: "/?page=3"}, commits[0])
	assert.Equal(t, Commit{Filters: Filters{Project: "Skyline Towers", Page: 1}, URL: "/?project=Skyline+Towers"}, commits[1])
	assert.Equal(t, Commit{Filters: Filters{Project: "Skyline Towers", Page: 2}, Append: true, URL: "/?page=2&project=Skyline+Towers"}, commits[2])
	assert.Equal(t, Commit{Filters: Filters{Project: AllProjects, Page: 1}, URL: "/"}, commits[3])
}

func TestStateManager_CloseDropsPendingSearch(t *testing.T) {
	rec := &commitRecorder{}
	s := NewStateManager(DefaultFilters(), rec.record, WithDebounce(20*time.Millisecond))

	s.SetSearch("abc")
	s.Close()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.all())
}

func TestFetcher_ReplaceAndAppend(t *testing.T) {
	lister := newFakeLister(25)
	f := NewFetcher(lister)
	ctx := context.Background()

	require.NoError(t, f.Fetch(ctx, DefaultFilters(), true))
	snap := f.Snapshot()
	assert.Len(t, snap.Items, 10)
	assert.True(t, snap.HasMore)
	assert.False(t, snap.Loading)

	require.NoError(t, f.LoadMore(ctx))
	require.NoError(t, f.LoadMore(ctx))
	snap = f.Snapshot()
	require.Len(t, snap.Items, 25)
	assert.False(t, snap.HasMore)
	assert.Equal(t, 3, snap.Filters.Page)

	require.NoError(t, f.LoadMore(ctx))
	assert.Len(t, lister.Calls(), 3, "load more is a no-op once everything is loaded")

	require.NoError(t, f.Fetch(ctx, Filters{Search: "x"}, true))
	snap = f.Snapshot()
	assert.Len(t, snap.Items, 10)
	assert.Equal(t, "x-1", snap.Items[0].UnitNumber)
}

func TestFetcher_UnknownTotalAssumesMore(t *testing.T) {
	lister := newFakeLister(3)
	lister.noTotal = true
	f := NewFetcher(lister)

	require.NoError(t, f.Fetch(context.Background(), DefaultFilters(), true))
	snap := f.Snapshot()
	assert.Nil(t, snap.Total)
	assert.True(t, snap.HasMore)
}

func TestFetcher_ErrorKeepsItemsAndRetry(t *testing.T) {
	lister := newFakeLister(25)
	f := NewFetcher(lister)
	ctx := context.Background()

	assert.NoError(t, f.Retry(ctx), "retry before any fetch is a no-op")
	assert.Empty(t, lister.Calls())

	require.NoError(t, f.Fetch(ctx, DefaultFilters(), true))

	boom := errors.New("server unavailable")
	lister.mu.Lock()
	lister.failNext = boom
	lister.mu.Unlock()

	assert.ErrorIs(t, f.LoadMore(ctx), boom)
	snap := f.Snapshot()
	assert.ErrorIs(t, snap.Err, boom)
	assert.Len(t, snap.Items, 10, "accumulated items survive a failed fetch")

	require.NoError(t, f.Retry(ctx))
	snap = f.Snapshot()
	assert.NoError(t, snap.Err)
	assert.Equal(t, []int64{11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, ids(snap.Items)[10:])

	calls := lister.Calls()
	assert.Equal(t, calls[len(calls)-2], calls[len(calls)-1], "retry re-issues the same request")
}

func TestFetcher_StaleCompletionDiscarded(t *testing.T) {
	lister := newFakeLister(25)
	slow := make(chan struct{})
	lister.gates["slow"] = slow
	f := NewFetcher(lister)
	ctx := context.Background()

	staleDone := f.Start(ctx, Filters{Search: "slow"}, true)
	require.NoError(t, f.Fetch(ctx, Filters{Search: "fast"}, true))

	close(slow)
	assert.ErrorIs(t, <-staleDone, ErrSuperseded)

	snap := f.Snapshot()
	require.NotEmpty(t, snap.Items)
	assert.Equal(t, "fast-1", snap.Items[0].UnitNumber)
	assert.Equal(t, "fast", snap.Filters.Search)
}

func TestFetcher_StaleErrorDiscarded(t *testing.T) {
	lister := newFakeLister(25)
	slow := make(chan struct{})
	lister.gates["slow"] = slow
	lister.failFor["slow"] = errors.New("timeout")
	f := NewFetcher(lister)
	ctx := context.Background()

	staleDone := f.Start(ctx, Filters{Search: "slow"}, true)
	require.NoError(t, f.Fetch(ctx, Filters{Search: "fast"}, true))
	close(slow)
	<-staleDone

	assert.NoError(t, f.Snapshot().Err)
}

func TestFetcher_StartCancelsPrevious(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool
	lister := listerFunc(func(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error) {
		if q.Search == "first" {
			close(started)
			<-ctx.Done()
			cancelled.Store(true)
			return nil, ctx.Err()
		}
		return &models.PaginatedApartments{Data: []models.Apartment{}}, nil
	})
	f := NewFetcher(lister)

	first := f.Start(context.Background(), Filters{Search: "first"}, true)
	<-started
	require.NoError(t, f.Fetch(context.Background(), Filters{Search: "second"}, true))

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.True(t, cancelled.Load())
}

type listerFunc func(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error)

func (fn listerFunc) ListApartments(ctx context.Context, q models.ListApartmentsQuery) (*models.PaginatedApartments, error) {
	return fn(ctx, q)
}

func TestListing_DebouncedSearchFetchesOnce(t *testing.T) {
	lister := newFakeLister(25)
	l := New(context.Background(), lister, DefaultFilters(), WithDebounceWindow(30*time.Millisecond))
	defer l.Close()
	l.Wait()
	require.Len(t, lister.Calls(), 1)

	l.SetSearch("a")
	l.SetSearch("ab")
	l.SetSearch("abc")

	require.Eventually(t, func() bool { return len(lister.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	l.Wait()

	calls := lister.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, models.ListApartmentsQuery{Page: 1, PerPage: 10, Search: "abc"}, calls[1])
	assert.Equal(t, "/?search=abc", l.URL())
	assert.Equal(t, "abc-1", l.Snapshot().Items[0].UnitNumber)
}

func TestListing_LoadMoreAccumulates(t *testing.T) {
	lister := newFakeLister(25)
	var snapshots atomic.Int32
	l := New(context.Background(), lister, DefaultFilters(), WithSnapshots(func(Snapshot) { snapshots.Add(1) }))
	defer l.Close()
	l.Wait()

	snap := l.Snapshot()
	require.Len(t, snap.Items, 10)
	require.NotNil(t, snap.Total)
	assert.Equal(t, int64(25), *snap.Total)
	assert.True(t, snap.HasMore)

	l.LoadMore()
	l.Wait()
	l.LoadMore()
	l.Wait()

	snap = l.Snapshot()
	got := ids(snap.Items)
	require.Len(t, got, 25)
	for i, id := range got {
		assert.Equal(t, int64(i+1), id, "no item duplicated or dropped")
	}
	assert.False(t, snap.HasMore)
	assert.Equal(t, "/?page=3", l.URL())

	l.LoadMore()
	l.Wait()
	assert.Len(t, lister.Calls(), 3)
	assert.Equal(t, int32(3), snapshots.Load())
}

func TestListing_LoadMoreAfterFailureRetriesSamePage(t *testing.T) {
	lister := newFakeLister(25)
	l := New(context.Background(), lister, DefaultFilters())
	defer l.Close()
	l.Wait()

	lister.mu.Lock()
	lister.failNext = errors.New("bad gateway")
	lister.mu.Unlock()

	l.LoadMore()
	l.Wait()
	require.Error(t, l.Snapshot().Err)
	assert.Len(t, l.Snapshot().Items, 10)

	l.LoadMore()
	l.Wait()

	calls := lister.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, 2, calls[2].Page)
	assert.Len(t, l.Snapshot().Items, 20)
}

func TestListing_ProjectFilterReplaces(t *testing.T) {
	lister := newFakeLister(25)
	l := New(context.Background(), lister, Filters{Page: 2})
	defer l.Close()
	l.Wait()

	l.SetProjectFilter("Elite Towers")
	l.Wait()

	calls := lister.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 2, calls[0].Page)
	assert.Equal(t, models.ListApartmentsQuery{Page: 1, PerPage: 10, Project: "Elite Towers"}, calls[1])
	assert.Len(t, l.Snapshot().Items, 10)
	assert.Equal(t, "/?project=Elite+Towers", l.URL())
}
