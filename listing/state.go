package listing

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before typed search text is committed.
const DefaultDebounce = 500 * time.Millisecond

// Commit is one change to the active filters.
type Commit struct {
	Filters Filters
	// Append is set for load-more commits, whose page is added to the
	// accumulated results rather than replacing them.
	Append bool
	URL    string
}

type stateOptions struct {
	debounce time.Duration
	path     string
}

type StateOption func(*stateOptions)

func WithDebounce(d time.Duration) StateOption {
	return func(o *stateOptions) { o.debounce = d }
}

// WithPath sets the path the URL query string is attached to.
func WithPath(path string) StateOption {
	return func(o *stateOptions) { o.path = path }
}

// StateManager owns the search text, project filter and page, and rewrites
// the URL on every commit.
//
// onCommit runs synchronously, in commit order, while the manager is
// locked. It must not call back into the StateManager.
type StateManager struct {
	path     string
	debounce *Debouncer
	onCommit func(Commit)

	mu     sync.Mutex
	input  string
	active Filters
	url    string
}

func NewStateManager(initial Filters, onCommit func(Commit), opts ...StateOption) *StateManager {
	o := stateOptions{debounce: DefaultDebounce, path: "/"}
	for _, opt := range opts {
		opt(&o)
	}
	if onCommit == nil {
		onCommit = func(Commit) {}
	}

	active := initial.normalize()
	return &StateManager{
		path:     o.path,
		debounce: NewDebouncer(o.debounce),
		onCommit: onCommit,
		input:    active.Search,
		active:   active,
		url:      active.URL(o.path),
	}
}

// SearchInput is the text as typed, which may not be committed yet.
func (s *StateManager) SearchInput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Filters returns the committed filters.
func (s *StateManager) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *StateManager) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// SetSearch records text immediately and commits it, with the page reset,
// once the debounce window passes without another edit.
func (s *StateManager) SetSearch(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()

	s.debounce.Trigger(func() { s.commitSearch(text) })
}

func (s *StateManager) commitSearch(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Retyping the active search still returns to the first page.
	next := s.active
	next.Search = strings.TrimSpace(text)
	next.Page = DefaultPage
	s.commitLocked(next, false)
}

// SetProjectFilter commits a project filter immediately and resets the
// page. "" and AllProjects both clear the filter.
func (s *StateManager) SetProjectFilter(project string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.active
	next.Project = project
	next.Page = DefaultPage
	s.commitLocked(next, false)
}

// SetPage commits an explicit page change.
func (s *StateManager) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.active
	next.Page = page
	s.commitLocked(next, false)
}

// NextPage commits the following page as a load-more.
func (s *StateManager) NextPage() {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.active
	next.Page++
	s.commitLocked(next, true)
}

// Close drops any pending search commit.
func (s *StateManager) Close() {
	s.debounce.Stop()
}

// commitLocked applies next if it differs from the active filters.
func (s *StateManager) commitLocked(next Filters, appendPage bool) {
	next = next.normalize()
	if next == s.active {
		return
	}
	s.active = next
	s.url = next.URL(s.path)
	s.onCommit(Commit{Filters: next, Append: appendPage, URL: s.url})
}
