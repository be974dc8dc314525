package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hotelapp_web/internal/domain"
)

const hotelsBase = "/api/hotels"

type HotelClient struct{ c *Client }

var _ domain.HotelAPI = (*HotelClient)(nil)

func hotelPath(id int64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", hotelsBase, id, suffix)
}

// Search returns Page<Hotel>. Sort is "field,dir".
func (h *HotelClient) Search(ctx context.Context, q domain.HotelSearchQuery) (domain.Page[domain.Hotel], error) {
	qs := NewQuery().
		Set("q", q.Q).
		Set("country", q.Country).
		Set("state", q.State).
		Set("minRating", q.MinRating).
		Set("page", q.Page).
		Set("size", q.Size).
		Set("sort", q.Sort)
	var out domain.Page[domain.Hotel]
	p, err := h.c.do(ctx, call{method: http.MethodGet, path: hotelsBase, query: qs, defaultMsg: "Something went wrong while fetching hotels"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (h *HotelClient) Get(ctx context.Context, id int64) (domain.Hotel, error) {
	var out domain.Hotel
	p, err := h.c.do(ctx, call{method: http.MethodGet, path: hotelPath(id, ""), route: hotelsBase + "/{id}", defaultMsg: "Failed to load hotel"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (h *HotelClient) Create(ctx context.Context, in domain.HotelPayload) (domain.Hotel, error) {
	var out domain.Hotel
	p, err := h.c.do(ctx, call{method: http.MethodPost, path: hotelsBase, body: in, defaultMsg: "Failed to create hotel"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (h *HotelClient) Update(ctx context.Context, id int64, in domain.HotelPayload) (domain.Hotel, error) {
	var out domain.Hotel
	p, err := h.c.do(ctx, call{method: http.MethodPut, path: hotelPath(id, ""), route: hotelsBase + "/{id}", body: in, defaultMsg: "Failed to update hotel"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (h *HotelClient) Delete(ctx context.Context, id int64) error {
	_, err := h.c.do(ctx, call{method: http.MethodDelete, path: hotelPath(id, ""), route: hotelsBase + "/{id}",
		defaultMsg: fmt.Sprintf("Failed to delete hotel #%d", id)})
	return err
}

func (h *HotelClient) ListAmenities(ctx context.Context, id int64) ([]string, error) {
	p, err := h.c.do(ctx, call{method: http.MethodGet, path: hotelPath(id, "/amenities"), route: hotelsBase + "/{id}/amenities",
		defaultMsg: "Could not load amenities"})
	if err != nil {
		return nil, err
	}
	return decodeAmenityList(p)
}

func (h *HotelClient) AddAmenity(ctx context.Context, id int64, amenity string) ([]string, error) {
	p, err := h.c.do(ctx, call{method: http.MethodPost, path: hotelPath(id, "/amenities"), route: hotelsBase + "/{id}/amenities",
		query: NewQuery().Set("amenity", amenity), defaultMsg: "Failed to add amenity"})
	if err != nil {
		return nil, err
	}
	return decodeAmenityList(p)
}

func (h *HotelClient) RemoveAmenity(ctx context.Context, id int64, amenity string) error {
	_, err := h.c.do(ctx, call{method: http.MethodDelete, path: hotelPath(id, "/amenities"), route: hotelsBase + "/{id}/amenities",
		query: NewQuery().Set("amenity", amenity), defaultMsg: "Failed to remove amenity"})
	return err
}

// Rate submits 1..5 stars and returns the new average.
func (h *HotelClient) Rate(ctx context.Context, id int64, stars int) (float64, error) {
	p, err := h.c.do(ctx, call{method: http.MethodPost, path: hotelPath(id, "/rating"), route: hotelsBase + "/{id}/rating",
		query: NewQuery().Set("stars", stars), defaultMsg: "Could not submit rating"})
	if err != nil {
		return 0, err
	}
	switch v := p.Value().(type) {
	case float64:
		return v, nil
	case string:
		if f, perr := strconv.ParseFloat(strings.TrimSpace(v), 64); perr == nil {
			return f, nil
		}
	case map[string]any:
		for _, k := range []string{"average", "rating", "avg"} {
			if f, ok := v[k].(float64); ok {
				return f, nil
			}
		}
	}
	return 0, &domain.Error{Kind: domain.KindDecodeFailed, Status: p.Status, Message: "unexpected rating response", Body: string(p.Raw)}
}

// DownloadBanner bypasses JSON handling and returns the image bytes.
func (h *HotelClient) DownloadBanner(ctx context.Context, id int64, mime string) ([]byte, error) {
	if mime == "" {
		mime = "image/jpeg"
	}
	p, err := h.c.do(ctx, call{method: http.MethodGet, path: hotelPath(id, "/banner"), route: hotelsBase + "/{id}/banner",
		accept: mime, defaultMsg: "Failed to download banner"})
	if err != nil {
		return nil, err
	}
	return p.Raw, nil
}

func (h *HotelClient) Mine(ctx context.Context, q domain.MineQuery) (domain.Page[domain.Hotel], error) {
	var out domain.Page[domain.Hotel]
	p, err := h.c.do(ctx, call{method: http.MethodGet, path: hotelsBase + "/mine", query: mineQuery(q), defaultMsg: "Failed to load your hotels"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func mineQuery(q domain.MineQuery) *Query {
	return NewQuery().
		Set("page", q.Page).
		Set("size", q.Size).
		Set("sortBy", q.SortBy).
		Set("sortDir", q.SortDir)
}

// decodeAmenityList accepts any of the amenity encodings and returns the
// normalized names.
func decodeAmenityList(p Payload) ([]string, error) {
	if p.Empty() {
		return []string{}, nil
	}
	var out domain.Amenities
	if err := p.Decode(&out); err != nil {
		return nil, err
	}
	return out.List(), nil
}
