package backend

import (
	"context"
	"fmt"
	"net/http"

	"hotelapp_web/internal/domain"
)

const packagesBase = "/api/travel-packages"

type PackageClient struct{ c *Client }

var _ domain.PackageAPI = (*PackageClient)(nil)

func packagePath(id int64) string { return fmt.Sprintf("%s/%d", packagesBase, id) }

func (pc *PackageClient) Search(ctx context.Context, q domain.PackageSearchQuery) (domain.Page[domain.TravelPackage], error) {
	qs := NewQuery().
		Set("destination", q.Destination).
		Set("keyword", q.Keyword).
		Set("minDurationDays", q.MinDurationDays).
		Set("maxDurationDays", q.MaxDurationDays).
		Set("minPrice", q.MinPrice).
		Set("maxPrice", q.MaxPrice).
		Set("page", q.Page).
		Set("size", q.Size).
		Set("sortBy", q.SortBy).
		Set("sortDir", q.SortDir)
	var out domain.Page[domain.TravelPackage]
	p, err := pc.c.do(ctx, call{method: http.MethodGet, path: packagesBase, query: qs, defaultMsg: "Failed to load packages"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (pc *PackageClient) Get(ctx context.Context, id int64) (domain.TravelPackage, error) {
	var out domain.TravelPackage
	p, err := pc.c.do(ctx, call{method: http.MethodGet, path: packagePath(id), route: packagesBase + "/{id}",
		defaultMsg: fmt.Sprintf("Failed to load package #%d", id)})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (pc *PackageClient) Create(ctx context.Context, in domain.PackagePayload) (domain.TravelPackage, error) {
	var out domain.TravelPackage
	p, err := pc.c.do(ctx, call{method: http.MethodPost, path: packagesBase, body: in, defaultMsg: "Failed to create package"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (pc *PackageClient) Mine(ctx context.Context, q domain.MineQuery) (domain.Page[domain.TravelPackage], error) {
	var out domain.Page[domain.TravelPackage]
	p, err := pc.c.do(ctx, call{method: http.MethodGet, path: packagesBase + "/mine", query: mineQuery(q), defaultMsg: "Failed to load packages"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

// Update sends only the fields present in the payload; image fields are
// omitted when empty so existing photos stay put.
func (pc *PackageClient) Update(ctx context.Context, id int64, in domain.PackagePayload) (domain.TravelPackage, error) {
	var out domain.TravelPackage
	p, err := pc.c.do(ctx, call{method: http.MethodPut, path: packagePath(id), route: packagesBase + "/{id}", body: in,
		defaultMsg: fmt.Sprintf("Failed to update package #%d", id)})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (pc *PackageClient) Delete(ctx context.Context, id int64) error {
	_, err := pc.c.do(ctx, call{method: http.MethodDelete, path: packagePath(id), route: packagesBase + "/{id}",
		defaultMsg: fmt.Sprintf("Failed to delete package #%d", id)})
	return err
}
