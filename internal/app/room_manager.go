package app

import (
	"context"
	"sync"

	"hotelapp_web/internal/domain"
)

type RoomFilters struct {
	Type string `json:"type"`
}

// RoomManager is the rooms modal of one hotel. It holds the overlay lock
// from creation until Close.
type RoomManager struct {
	*SearchController[RoomFilters, domain.Room]

	hotelID int64
	rooms   domain.RoomAPI
	confirm Confirmer
	inv     Invalidator
	release func()

	mu      sync.Mutex
	form    FormState
	editing int64
	edit    FormState
}

func newRoomManager(hotelID int64, rooms domain.RoomAPI, c Confirmer, lock *ScrollLock, inv Invalidator) *RoomManager {
	rm := &RoomManager{hotelID: hotelID, rooms: rooms, confirm: c, inv: inv, release: lock.Acquire()}
	rm.SearchController = NewSearchController(SearchConfig[RoomFilters, domain.Room]{
		Name: "rooms",
		Fetch: func(ctx context.Context, q SearchQuery[RoomFilters]) (domain.Page[domain.Room], error) {
			id := rm.hotelID
			return rm.rooms.List(ctx, domain.RoomListQuery{
				HotelID: &id, Type: tr(q.Filters.Type),
				Page: q.Page, Size: q.Size, SortBy: q.SortBy, SortDir: q.SortDir,
			})
		},
		Defaults:   SearchQuery[RoomFilters]{SortBy: "updatedAt", SortDir: "desc", Size: 10},
		ErrMessage: "Failed to load rooms",
	})
	return rm
}

func (rm *RoomManager) HotelID() int64 { return rm.hotelID }

func (rm *RoomManager) CreateState() FormState {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.form
}

// Create adds a room to the hotel and reloads the list from page 0.
func (rm *RoomManager) Create(ctx context.Context, d RoomDraft) (domain.Room, error) {
	p, err := d.Payload(rm.hotelID)
	if err != nil {
		rm.setForm(FormState{Error: domain.Message(err, "")})
		return domain.Room{}, err
	}
	r, err := rm.rooms.Create(ctx, p)
	if err != nil {
		rm.setForm(FormState{Error: domain.Message(err, "Failed to create room")})
		return domain.Room{}, err
	}
	rm.setForm(FormState{OK: "Room created"})
	rm.touched(ctx)
	return r, settled(rm.Search(ctx, true))
}

func (rm *RoomManager) setForm(s FormState) {
	rm.mu.Lock()
	rm.form = s
	rm.mu.Unlock()
}

// StartEdit seeds an edit draft from the listed room.
func (rm *RoomManager) StartEdit(ctx context.Context, roomID int64) (RoomDraft, error) {
	r, ok := rm.Row(roomID)
	if !ok {
		var err error
		if r, err = rm.rooms.Get(ctx, roomID); err != nil {
			return RoomDraft{}, err
		}
	}
	rm.mu.Lock()
	rm.editing, rm.edit = roomID, FormState{}
	rm.mu.Unlock()
	return EditRoom(r), nil
}

// SaveEdit replaces a room and refetches the current page.
func (rm *RoomManager) SaveEdit(ctx context.Context, roomID int64, d RoomDraft) error {
	p, err := d.Payload(rm.hotelID)
	if err == nil {
		_, err = rm.rooms.Update(ctx, roomID, p)
	}
	if err != nil {
		rm.mu.Lock()
		rm.edit = FormState{Error: domain.Message(err, "Failed to update room")}
		rm.mu.Unlock()
		return err
	}
	rm.mu.Lock()
	rm.editing, rm.edit = 0, FormState{}
	rm.mu.Unlock()
	rm.touched(ctx)
	return settled(rm.Refresh(ctx))
}

func (rm *RoomManager) EditState() (int64, FormState) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.editing, rm.edit
}

// PatchInventory sets only the inventory of a room.
func (rm *RoomManager) PatchInventory(ctx context.Context, roomID int64, n int) error {
	if n < 0 {
		return domain.NewError(domain.KindValidationFailed, "Inventory must be a number ≥ 0")
	}
	if _, err := rm.rooms.PatchInventory(ctx, roomID, n); err != nil {
		return notice(err, "Failed to update inventory")
	}
	rm.touched(ctx)
	return settled(rm.Refresh(ctx))
}

func (rm *RoomManager) Delete(ctx context.Context, roomID int64) (bool, error) {
	ok, err := removeRow(ctx, rm.SearchController, rm.confirm, "Delete this room? This action cannot be undone.",
		func(ctx context.Context) error { return rm.rooms.Delete(ctx, roomID) })
	if ok {
		rm.touched(ctx)
	}
	if err != nil {
		return ok, notice(err, "Failed to delete room")
	}
	return ok, nil
}

// Close drops the modal state and gives the overlay lock back.
func (rm *RoomManager) Close() {
	rm.SearchController.Close()
	rm.release()
}

func (rm *RoomManager) touched(ctx context.Context) {
	if rm.inv != nil {
		rm.inv.Invalidate(ctx, rm.hotelID)
	}
}
