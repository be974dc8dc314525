package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
)

type probeFilters struct{ Q string }

type listProbe struct {
	mu      sync.Mutex
	calls   []app.SearchQuery[probeFilters]
	total   int
	fail    error
	release map[string]chan struct{} // by filter value, blocks that fetch
}

func (p *listProbe) fetch(ctx context.Context, q app.SearchQuery[probeFilters]) (domain.Page[domain.Hotel], error) {
	p.mu.Lock()
	p.calls = append(p.calls, q)
	gate := p.release[q.Filters.Q]
	fail := p.fail
	total := p.total
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}
	if fail != nil {
		return domain.Page[domain.Hotel]{}, fail
	}
	var all []domain.Hotel
	for i := 0; i < total; i++ {
		all = append(all, domain.Hotel{ID: int64(i + 1), Name: q.Filters.Q})
	}
	return paginate(all, q.Page, q.Size), nil
}

func (p *listProbe) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func newProbeController(p *listProbe) *app.SearchController[probeFilters, domain.Hotel] {
	return app.NewSearchController(app.SearchConfig[probeFilters, domain.Hotel]{
		Name:       "probe",
		Fetch:      p.fetch,
		Defaults:   app.SearchQuery[probeFilters]{SortBy: "name", SortDir: "asc", Size: 10},
		ErrMessage: "Something went wrong",
	})
}

func TestSearch_ChangePageStaysInBounds(t *testing.T) {
	ctx := context.Background()
	p := &listProbe{total: 25}
	sc := newProbeController(p)
	require.NoError(t, sc.Search(ctx, true))
	require.Equal(t, 3, sc.Page().TotalPages)

	require.NoError(t, sc.ChangePage(ctx, -1))
	assert.Equal(t, 1, p.count(), "no fetch before the first page")

	require.NoError(t, sc.ChangePage(ctx, +1))
	require.NoError(t, sc.ChangePage(ctx, +1))
	assert.Equal(t, 2, sc.Page().Number)
	assert.Equal(t, 3, p.count())

	require.NoError(t, sc.ChangePage(ctx, +1))
	assert.Equal(t, 3, p.count(), "no fetch past the last page")
	assert.Equal(t, 2, sc.Query().Page)
	assert.Len(t, sc.Page().Content, 5)
}

func TestSearch_ChangePageWithEmptyResult(t *testing.T) {
	p := &listProbe{}
	sc := newProbeController(p)
	require.NoError(t, sc.Search(context.Background(), true))
	require.NoError(t, sc.ChangePage(context.Background(), 1))
	assert.Equal(t, 1, p.count())
}

func TestSearch_ClearFiltersIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := &listProbe{total: 30}
	sc := newProbeController(p)
	require.NoError(t, sc.SetFilters(ctx, probeFilters{Q: "goa"}))
	require.NoError(t, sc.SetSort(ctx, "rating", "desc"))
	require.NoError(t, sc.ChangeSize(ctx, 5))
	require.NoError(t, sc.ChangePage(ctx, 1))

	require.NoError(t, sc.ClearFilters(ctx))
	first := sc.Query()
	require.NoError(t, sc.ClearFilters(ctx))
	assert.Equal(t, first, sc.Query())
	assert.Equal(t, app.SearchQuery[probeFilters]{SortBy: "name", SortDir: "asc", Size: 10}, first)
}

func TestSearch_ChangeSizeResetsPage(t *testing.T) {
	ctx := context.Background()
	p := &listProbe{total: 40}
	sc := newProbeController(p)
	require.NoError(t, sc.Search(ctx, true))
	require.NoError(t, sc.ChangePage(ctx, 2))
	require.NoError(t, sc.ChangeSize(ctx, 20))
	assert.Equal(t, 0, sc.Query().Page)
	assert.Equal(t, 20, sc.Page().Size)
	assert.Error(t, sc.ChangeSize(ctx, 0))
}

func TestSearch_FailureKeepsPreviousPage(t *testing.T) {
	ctx := context.Background()
	p := &listProbe{total: 3}
	sc := newProbeController(p)
	require.NoError(t, sc.Search(ctx, true))

	p.mu.Lock()
	p.fail = errors.New("boom")
	p.mu.Unlock()
	require.Error(t, sc.Refresh(ctx))
	assert.Len(t, sc.Page().Content, 3)
	assert.Equal(t, "Something went wrong", sc.Err())
	assert.False(t, sc.Loading())

	p.mu.Lock()
	p.fail = &domain.Error{Kind: domain.KindRequestFailed, Message: "Failed to search hotels (500)"}
	p.mu.Unlock()
	require.Error(t, sc.Refresh(ctx))
	assert.Equal(t, "Failed to search hotels (500)", sc.Err())

	p.mu.Lock()
	p.fail = nil
	p.mu.Unlock()
	require.NoError(t, sc.Refresh(ctx))
	assert.Empty(t, sc.Err())
}

func TestSearch_StaleResultIsDropped(t *testing.T) {
	ctx := context.Background()
	slow := make(chan struct{})
	p := &listProbe{total: 2, release: map[string]chan struct{}{"old": slow}}
	sc := newProbeController(p)

	done := make(chan error, 1)
	go func() { done <- sc.SetFilters(ctx, probeFilters{Q: "old"}) }()
	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, sc.SetFilters(ctx, probeFilters{Q: "new"}))
	close(slow)
	require.NoError(t, <-done)

	page := sc.Page()
	require.NotEmpty(t, page.Content)
	assert.Equal(t, "new", page.Content[0].Name)
	assert.False(t, sc.Loading())
}

func TestSearch_UpdateRowMergesInPlace(t *testing.T) {
	ctx := context.Background()
	p := &listProbe{total: 2}
	sc := newProbeController(p)
	require.NoError(t, sc.Search(ctx, true))

	ok := sc.UpdateRow(2, func(h *domain.Hotel) { h.Name = "patched" })
	assert.True(t, ok)
	assert.False(t, sc.UpdateRow(99, func(*domain.Hotel) {}))
	row, _ := sc.Row(2)
	assert.Equal(t, "patched", row.Name)
	assert.Equal(t, 1, p.count())
}

func TestHomeSearch_Defaults(t *testing.T) {
	be := newFakeBackend()
	h := app.NewHomeSearch(hotelSide{be})
	q := h.Query()
	assert.Equal(t, "name", q.SortBy)
	assert.Equal(t, "asc", q.SortDir)
	assert.Equal(t, 10, q.Size)
	assert.True(t, h.SkeletonWhileLoading())

	ps := app.NewPackageSearch(packageSide{be})
	assert.Equal(t, "price", ps.Query().SortBy)
	assert.False(t, ps.SkeletonWhileLoading())
}

func TestHomeSearch_AmenitiesAndRating(t *testing.T) {
	ctx := context.Background()
	be := newFakeBackend()
	be.hotels[1] = domain.Hotel{ID: 1, Name: "Sea View"}
	be.amenities[1] = []string{"wifi", "pool"}
	h := app.NewHomeSearch(hotelSide{be})
	require.NoError(t, h.Search(ctx, true))

	list, err := h.FetchAmenities(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"wifi", "pool"}, list)
	row, _ := h.Row(1)
	assert.Equal(t, []string{"wifi", "pool"}, row.Amenities.List())

	_, err = h.Rate(ctx, 1, 6)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	_, err = h.Rate(ctx, 1, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not submit rating")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	be.rateResult = 4.5
	var touched int64
	h.OnHotelChanged(func(id int64) { touched = id })
	avg, err := h.Rate(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 4.5, avg)
	row, _ = h.Row(1)
	require.NotNil(t, row.Rating)
	assert.Equal(t, 4.5, *row.Rating)
	assert.Equal(t, int64(1), touched)
	assert.Equal(t, 1, be.count("hotels.search"), "row updates never refetch")

	be.failAmenities = errors.New("down")
	_, err = h.FetchAmenities(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, "Could not load amenities.", err.Error())
	assert.Len(t, h.Page().Content, 1)
}
