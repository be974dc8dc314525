package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/domain"
)

// HotelManager is the host's hotel surface: the create form, the list of
// their own hotels, the edit modal and the rooms modal.
type HotelManager struct {
	*SearchController[NoFilters, domain.Hotel]

	hotels  domain.HotelAPI
	rooms   domain.RoomAPI
	confirm Confirmer
	lock    *ScrollLock
	inv     Invalidator

	mu          sync.Mutex
	draft       HotelDraft
	create      FormState
	editing     *HotelEdit
	edit        FormState
	releaseEdit func()
	roomsMgr    *RoomManager
}

type HotelManagerDeps struct {
	Hotels      domain.HotelAPI
	Rooms       domain.RoomAPI
	Confirm     Confirmer
	Lock        *ScrollLock
	Invalidator Invalidator
}

func NewHotelManager(d HotelManagerDeps) *HotelManager {
	m := &HotelManager{hotels: d.Hotels, rooms: d.Rooms, confirm: d.Confirm, lock: d.Lock, inv: d.Invalidator}
	if m.lock == nil {
		m.lock = &ScrollLock{}
	}
	m.SearchController = NewSearchController(SearchConfig[NoFilters, domain.Hotel]{
		Name: "my-hotels",
		Fetch: func(ctx context.Context, q SearchQuery[NoFilters]) (domain.Page[domain.Hotel], error) {
			return m.hotels.Mine(ctx, domain.MineQuery{Page: q.Page, Size: q.Size, SortBy: q.SortBy, SortDir: q.SortDir})
		},
		Defaults:   SearchQuery[NoFilters]{SortBy: "updatedAt", SortDir: "desc", Size: 10},
		ErrMessage: "Failed to load your hotels",
	})
	return m
}

// SetDraft replaces the create form and reports whether it can be submitted.
func (m *HotelManager) SetDraft(d HotelDraft) bool {
	m.mu.Lock()
	m.draft = d
	m.create = FormState{}
	m.mu.Unlock()
	return d.CanSubmit()
}

func (m *HotelManager) Draft() HotelDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func (m *HotelManager) CreateState() FormState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create
}

// Create submits the draft. On success the form is cleared and the list
// reloads from page 0; on failure the draft stays for another try.
func (m *HotelManager) Create(ctx context.Context) (domain.Hotel, error) {
	d := m.Draft()
	if err := d.Validate(); err != nil {
		m.setCreate(FormState{Error: domain.Message(err, "")})
		return domain.Hotel{}, err
	}
	h, err := m.hotels.Create(ctx, d.Payload())
	if err != nil {
		m.setCreate(FormState{Error: domain.Message(err, "Failed to create hotel")})
		return domain.Hotel{}, err
	}
	m.mu.Lock()
	m.draft = HotelDraft{}
	m.create = FormState{OK: "Hotel created successfully"}
	m.mu.Unlock()
	log.Info().Int64("hotel_id", h.ID).Msg("hotel created")

	return h, settled(m.Search(ctx, true))
}

func (m *HotelManager) setCreate(s FormState) {
	m.mu.Lock()
	m.create = s
	m.mu.Unlock()
}

// StartEdit opens the edit modal seeded from the listed row, or from the
// backend when the row is not on the current page.
func (m *HotelManager) StartEdit(ctx context.Context, id int64) (HotelEdit, error) {
	h, ok := m.Row(id)
	if !ok {
		var err error
		if h, err = m.hotels.Get(ctx, id); err != nil {
			return HotelEdit{}, err
		}
	}
	e := EditHotel(h)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.releaseEdit == nil {
		m.releaseEdit = m.lock.Acquire()
	}
	m.editing = &e
	m.edit = FormState{}
	return e, nil
}

// Editing returns the open edit form, if any.
func (m *HotelManager) Editing() (HotelEdit, FormState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editing == nil {
		return HotelEdit{}, m.edit, false
	}
	return *m.editing, m.edit, true
}

// UpdateEdit applies fn to the open edit form.
func (m *HotelManager) UpdateEdit(fn func(*HotelEdit)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editing == nil {
		return false
	}
	fn(m.editing)
	return true
}

// SaveEdit sends the edit form. Images are sent as null so the backend
// keeps them. On success the current page reloads and the modal closes.
func (m *HotelManager) SaveEdit(ctx context.Context) error {
	e, _, ok := m.Editing()
	if !ok || e.ID == 0 {
		return nil
	}
	if _, err := m.hotels.Update(ctx, e.ID, e.Payload()); err != nil {
		m.mu.Lock()
		m.edit = FormState{Error: domain.Message(err, "Failed to update hotel")}
		m.mu.Unlock()
		return err
	}
	m.invalidate(ctx, e.ID)
	err := m.Refresh(ctx)
	m.CancelEdit()
	return settled(err)
}

func (m *HotelManager) CancelEdit() {
	m.mu.Lock()
	release := m.releaseEdit
	m.editing, m.releaseEdit, m.edit = nil, nil, FormState{}
	m.mu.Unlock()
	if release != nil {
		release()
	}
}

// Delete removes a hotel after confirmation.
func (m *HotelManager) Delete(ctx context.Context, id int64) (bool, error) {
	ok, err := removeRow(ctx, m.SearchController, m.confirm, "Delete this hotel? This action cannot be undone.",
		func(ctx context.Context) error { return m.hotels.Delete(ctx, id) })
	if ok {
		m.invalidate(ctx, id)
	}
	if err != nil {
		return ok, notice(err, "Failed to delete hotel")
	}
	return ok, nil
}

// AddAmenity adds one amenity and shows the backend's resulting list.
func (m *HotelManager) AddAmenity(ctx context.Context, id int64, name string) ([]string, error) {
	name = tr(name)
	if name == "" {
		return nil, domain.NewError(domain.KindValidationFailed, "Amenity is required")
	}
	list, err := m.hotels.AddAmenity(ctx, id, name)
	if err != nil {
		return nil, notice(err, "Failed to add amenity")
	}
	m.UpdateRow(id, func(h *domain.Hotel) { h.Amenities = domain.AmenityList(list...) })
	m.invalidate(ctx, id)
	return list, nil
}

func (m *HotelManager) RemoveAmenity(ctx context.Context, id int64, name string) error {
	if err := m.hotels.RemoveAmenity(ctx, id, tr(name)); err != nil {
		return notice(err, "Failed to remove amenity")
	}
	m.UpdateRow(id, func(h *domain.Hotel) {
		kept := make([]string, 0, h.Amenities.Len())
		for _, a := range h.Amenities.List() {
			if a != tr(name) {
				kept = append(kept, a)
			}
		}
		h.Amenities = domain.AmenityList(kept...)
	})
	m.invalidate(ctx, id)
	return nil
}

// OpenRooms opens the rooms modal of a hotel, closing any other one, and
// loads its first page.
func (m *HotelManager) OpenRooms(ctx context.Context, hotelID int64) (*RoomManager, error) {
	m.mu.Lock()
	if m.roomsMgr != nil && m.roomsMgr.HotelID() == hotelID {
		rm := m.roomsMgr
		m.mu.Unlock()
		return rm, nil
	}
	prev := m.roomsMgr
	rm := newRoomManager(hotelID, m.rooms, m.confirm, m.lock, m.inv)
	m.roomsMgr = rm
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	return rm, rm.Search(ctx, true)
}

// RoomsOf returns the open rooms modal when it belongs to hotelID.
func (m *HotelManager) RoomsOf(hotelID int64) (*RoomManager, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roomsMgr == nil || m.roomsMgr.HotelID() != hotelID {
		return nil, false
	}
	return m.roomsMgr, true
}

func (m *HotelManager) CloseRooms() {
	m.mu.Lock()
	rm := m.roomsMgr
	m.roomsMgr = nil
	m.mu.Unlock()
	if rm != nil {
		rm.Close()
	}
}

// Close releases every overlay this manager holds.
func (m *HotelManager) Close() {
	m.CancelEdit()
	m.CloseRooms()
	m.SearchController.Close()
}

func (m *HotelManager) invalidate(ctx context.Context, id int64) {
	if m.inv != nil {
		m.inv.Invalidate(ctx, id)
	}
}
