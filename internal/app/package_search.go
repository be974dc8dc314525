package app

import (
	"context"
	"strings"

	"hotelapp_web/internal/domain"
)

type PackageFilters struct {
	Destination     string `json:"destination"`
	Keyword         string `json:"keyword"`
	MinDurationDays string `json:"minDurationDays"`
	MaxDurationDays string `json:"maxDurationDays"`
	MinPrice        string `json:"minPrice"`
	MaxPrice        string `json:"maxPrice"`
}

type PackageSearch struct {
	*SearchController[PackageFilters, domain.TravelPackage]
	packages domain.PackageAPI
}

func NewPackageSearch(packages domain.PackageAPI) *PackageSearch {
	p := &PackageSearch{packages: packages}
	p.SearchController = NewSearchController(SearchConfig[PackageFilters, domain.TravelPackage]{
		Name:       "packages",
		Fetch:      p.fetch,
		Defaults:   SearchQuery[PackageFilters]{SortBy: "price", SortDir: "asc", Size: 10},
		ErrMessage: "Failed to load packages",
	})
	return p
}

func (p *PackageSearch) fetch(ctx context.Context, q SearchQuery[PackageFilters]) (domain.Page[domain.TravelPackage], error) {
	f := q.Filters
	return p.packages.Search(ctx, domain.PackageSearchQuery{
		Destination:     strings.TrimSpace(f.Destination),
		Keyword:         strings.TrimSpace(f.Keyword),
		MinDurationDays: optInt(f.MinDurationDays),
		MaxDurationDays: optInt(f.MaxDurationDays),
		MinPrice:        optFloat(f.MinPrice),
		MaxPrice:        optFloat(f.MaxPrice),
		Page:            q.Page,
		Size:            q.Size,
		SortBy:          q.SortBy,
		SortDir:         q.SortDir,
	})
}
