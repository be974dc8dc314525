package backend

import (
	"context"
	"fmt"
	"net/http"

	"hotelapp_web/internal/domain"
)

const roomsBase = "/api/rooms"

type RoomClient struct{ c *Client }

var _ domain.RoomAPI = (*RoomClient)(nil)

func roomPath(id int64, suffix string) string {
	return fmt.Sprintf("%s/%d%s", roomsBase, id, suffix)
}

// List pages through rooms; the backend takes a single "field,direction" sort.
func (r *RoomClient) List(ctx context.Context, q domain.RoomListQuery) (domain.Page[domain.Room], error) {
	sortBy, sortDir := q.SortBy, q.SortDir
	if sortBy == "" {
		sortBy = "updatedAt"
	}
	if sortDir == "" {
		sortDir = "desc"
	}
	qs := NewQuery().
		Set("hotelId", q.HotelID).
		Set("type", q.Type).
		Set("page", q.Page).
		Set("size", q.Size).
		Set("sort", sortBy+","+sortDir)
	var out domain.Page[domain.Room]
	p, err := r.c.do(ctx, call{method: http.MethodGet, path: roomsBase, query: qs, defaultMsg: "Failed to load rooms"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (r *RoomClient) Get(ctx context.Context, id int64) (domain.Room, error) {
	var out domain.Room
	p, err := r.c.do(ctx, call{method: http.MethodGet, path: roomPath(id, ""), route: roomsBase + "/{id}", defaultMsg: "Failed to load room"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (r *RoomClient) Create(ctx context.Context, in domain.RoomPayload) (domain.Room, error) {
	var out domain.Room
	p, err := r.c.do(ctx, call{method: http.MethodPost, path: roomsBase, body: in, defaultMsg: "Failed to create room"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

// Update needs HotelID in the payload; the backend authorizes on it.
func (r *RoomClient) Update(ctx context.Context, id int64, in domain.RoomPayload) (domain.Room, error) {
	var out domain.Room
	p, err := r.c.do(ctx, call{method: http.MethodPut, path: roomPath(id, ""), route: roomsBase + "/{id}", body: in, defaultMsg: "Failed to update room"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (r *RoomClient) PatchInventory(ctx context.Context, id int64, inventory int) (domain.Room, error) {
	var out domain.Room
	body := struct {
		Inventory int `json:"inventory"`
	}{inventory}
	p, err := r.c.do(ctx, call{method: http.MethodPatch, path: roomPath(id, "/inventory"), route: roomsBase + "/{id}/inventory",
		body: body, defaultMsg: "Failed to update inventory"})
	if err != nil {
		return out, err
	}
	return out, p.Decode(&out)
}

func (r *RoomClient) Delete(ctx context.Context, id int64) error {
	_, err := r.c.do(ctx, call{method: http.MethodDelete, path: roomPath(id, ""), route: roomsBase + "/{id}", defaultMsg: "Failed to delete room"})
	return err
}
