package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/domain"
)

// Row is anything a paginated list can hold and patch in place.
type Row interface{ RowID() int64 }

// SearchQuery is the effective query of a SearchController. Page and Size
// are what the next fetch will ask for.
type SearchQuery[F any] struct {
	Filters F      `json:"filters"`
	SortBy  string `json:"sortBy"`
	SortDir string `json:"sortDir"`
	Page    int    `json:"page"`
	Size    int    `json:"size"`
}

// Fetcher maps a query onto one backend list call.
type Fetcher[F any, T Row] func(ctx context.Context, q SearchQuery[F]) (domain.Page[T], error)

type SearchConfig[F any, T Row] struct {
	Name     string // for logs
	Fetch    Fetcher[F, T]
	Defaults SearchQuery[F]
	// ErrMessage is shown when a failure carries no message of its own.
	ErrMessage string
	// Skeleton makes the view render placeholders while loading.
	Skeleton bool
}

// SearchView is a consistent snapshot for rendering.
type SearchView[F any, T Row] struct {
	Query    SearchQuery[F] `json:"query"`
	Page     domain.Page[T] `json:"page"`
	Loading  bool           `json:"loading"`
	Skeleton bool           `json:"skeleton"`
	Error    string         `json:"error,omitempty"`
}

// SearchController holds the state of one filterable, sortable, paginated
// list. A newer Search supersedes an older one: the older request's context
// is cancelled and its result, if it still arrives, is dropped.
type SearchController[F any, T Row] struct {
	cfg SearchConfig[F, T]

	mu      sync.Mutex
	q       SearchQuery[F]
	page    domain.Page[T]
	loading bool
	err     string
	gen     uint64
	cancel  context.CancelFunc
}

func NewSearchController[F any, T Row](cfg SearchConfig[F, T]) *SearchController[F, T] {
	if cfg.Defaults.Size <= 0 {
		cfg.Defaults.Size = 10
	}
	return &SearchController[F, T]{
		cfg:  cfg,
		q:    cfg.Defaults,
		page: domain.EmptyPage[T](cfg.Defaults.Size),
	}
}

// Search fetches with the current query, from page 0 when resetPage is set.
// On failure the previous page is kept and Err reports the message.
func (s *SearchController[F, T]) Search(ctx context.Context, resetPage bool) error {
	s.mu.Lock()
	if resetPage {
		s.q.Page = 0
	}
	return s.runLocked(ctx)
}

// Refresh refetches the current page.
func (s *SearchController[F, T]) Refresh(ctx context.Context) error { return s.Search(ctx, false) }

// runLocked starts a fetch. It must be entered with mu held and releases it.
func (s *SearchController[F, T]) runLocked(ctx context.Context) error {
	q := s.q
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	page, err := s.cfg.Fetch(rctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		log.Debug().Str("list", s.cfg.Name).Uint64("gen", gen).Msg("search: dropped superseded result")
		return nil
	}
	cancel()
	s.cancel = nil
	s.loading = false
	if err != nil {
		s.err = domain.Message(err, s.cfg.ErrMessage)
		if !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("list", s.cfg.Name).Int("page", q.Page).Msg("search failed")
		}
		return err
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	s.page = page
	s.q.Page = page.Number
	return nil
}

// ChangePage moves by delta pages. Targets outside [0, totalPages-1] are
// ignored without fetching.
func (s *SearchController[F, T]) ChangePage(ctx context.Context, delta int) error {
	s.mu.Lock()
	target := s.q.Page + delta
	if delta == 0 || target < 0 || target >= s.page.TotalPages {
		s.mu.Unlock()
		return nil
	}
	s.q.Page = target
	return s.runLocked(ctx)
}

// GoTo fetches page n as is. Used after a delete empties the last page.
func (s *SearchController[F, T]) GoTo(ctx context.Context, n int) error {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.q.Page = n
	return s.runLocked(ctx)
}

func (s *SearchController[F, T]) ChangeSize(ctx context.Context, n int) error {
	if n <= 0 {
		return domain.NewError(domain.KindValidationFailed, "Page size must be positive.")
	}
	s.mu.Lock()
	s.q.Size = n
	s.q.Page = 0
	return s.runLocked(ctx)
}

// ClearFilters restores filters, sort, size and page to their defaults.
func (s *SearchController[F, T]) ClearFilters(ctx context.Context) error {
	s.mu.Lock()
	s.q = s.cfg.Defaults
	return s.runLocked(ctx)
}

func (s *SearchController[F, T]) SetFilters(ctx context.Context, f F) error {
	s.mu.Lock()
	s.q.Filters = f
	s.q.Page = 0
	return s.runLocked(ctx)
}

// SetSort changes the ordering; empty values keep the current ones.
func (s *SearchController[F, T]) SetSort(ctx context.Context, by, dir string) error {
	s.mu.Lock()
	if by != "" {
		s.q.SortBy = by
	}
	if dir == "asc" || dir == "desc" {
		s.q.SortDir = dir
	}
	s.q.Page = 0
	return s.runLocked(ctx)
}

func (s *SearchController[F, T]) Query() SearchQuery[F] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.q
}

func (s *SearchController[F, T]) Page() domain.Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCopy()
}

func (s *SearchController[F, T]) pageCopy() domain.Page[T] {
	p := s.page
	p.Content = append([]T(nil), s.page.Content...)
	if p.Content == nil {
		p.Content = []T{}
	}
	return p
}

func (s *SearchController[F, T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SearchController[F, T]) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *SearchController[F, T]) SkeletonWhileLoading() bool { return s.cfg.Skeleton }

func (s *SearchController[F, T]) View() SearchView[F, T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SearchView[F, T]{
		Query:    s.q,
		Page:     s.pageCopy(),
		Loading:  s.loading,
		Skeleton: s.cfg.Skeleton && s.loading,
		Error:    s.err,
	}
}

// UpdateRow patches the held row with the given id, without refetching.
func (s *SearchController[F, T]) UpdateRow(id int64, fn func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.page.Content {
		if s.page.Content[i].RowID() == id {
			fn(&s.page.Content[i])
			return true
		}
	}
	return false
}

// Row returns the held row with the given id.
func (s *SearchController[F, T]) Row(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.page.Content {
		if r.RowID() == id {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Close cancels any in-flight fetch.
func (s *SearchController[F, T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.loading = false
}

// Reset cancels any fetch and forgets the held page, query and error.
func (s *SearchController[F, T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.q = s.cfg.Defaults
	s.page = domain.EmptyPage[T](s.cfg.Defaults.Size)
	s.loading = false
	s.err = ""
}
