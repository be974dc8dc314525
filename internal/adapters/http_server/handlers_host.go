package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
)

// imageField compresses an uploaded image. A missing file is not an error.
func imageField(r *http.Request, name string, opts imaging.Options) (*imaging.Processed, error) {
	f, _, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.WrapError(domain.KindValidationFailed, "Could not read "+name, err)
	}
	defer f.Close()
	p, err := imaging.Compress(f, opts)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.WrapError(domain.KindValidationFailed, "Invalid form", err)
	}
	return nil
}

// refused answers a declined confirm prompt with the prompt itself.
func refused(w http.ResponseWriter, c *app.Confirmation) {
	writeProblem(w, http.StatusConflict, "Confirmation required", c.Prompt)
}

// ---- hotels ----

func (h *Handlers) myHotels(w http.ResponseWriter, r *http.Request) {
	s := workspaceOf(r).Hotels.SearchController
	respondList(w, s, drive[app.NoFilters](r, s, nil))
}

func (h *Handlers) images() imaging.Presets {
	if h.Images == (imaging.Presets{}) {
		return imaging.DefaultPresets
	}
	return h.Images
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}
	d := app.HotelDraft{
		Name: r.FormValue("name"), Description: r.FormValue("description"),
		Destination: r.FormValue("destination"), AddressLine1: r.FormValue("addressLine1"),
		City: r.FormValue("city"), State: r.FormValue("state"), Country: r.FormValue("country"),
		Zip: r.FormValue("zip"), Amenities: r.FormValue("amenities"),
	}
	img := h.images()
	var err error
	if d.Banner, err = imageField(r, "banner", img.Banner); err == nil {
		if d.Photo1, err = imageField(r, "photo1", img.HotelPhoto); err == nil {
			d.Photo2, err = imageField(r, "photo2", img.HotelPhoto)
		}
	}
	if err != nil {
		writeError(w, err)
		return
	}

	m := workspaceOf(r).Hotels
	m.SetDraft(d)
	hotel, err := m.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"hotel": hotel, "form": m.CreateState(), "list": m.View()})
}

type hotelEditView struct {
	Edit app.HotelEdit `json:"edit"`
	Form app.FormState `json:"form"`
}

func (h *Handlers) startHotelEdit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	m := workspaceOf(r).Hotels
	if _, err := m.StartEdit(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	e, form, _ := m.Editing()
	writeJSON(w, http.StatusOK, hotelEditView{Edit: e, Form: form})
}

func (h *Handlers) cancelHotelEdit(w http.ResponseWriter, r *http.Request) {
	workspaceOf(r).Hotels.CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}

type hotelEditBody struct {
	app.HotelEdit
	AmenitiesText *string `json:"amenitiesText"`
}

func (h *Handlers) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body hotelEditBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	m := workspaceOf(r).Hotels
	if e, _, open := m.Editing(); !open || e.ID != id {
		if _, err := m.StartEdit(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
	}
	m.UpdateEdit(func(e *app.HotelEdit) {
		kept := e.Amenities
		*e = body.HotelEdit
		e.ID = id
		switch {
		case body.AmenitiesText != nil:
			e.SetAmenitiesText(*body.AmenitiesText)
		case body.Amenities == nil:
			e.Amenities = kept
		}
	})
	if err := m.SaveEdit(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handlers) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, r := confirmed(r)
	m := workspaceOf(r).Hotels
	ok, err := m.Delete(r.Context(), id)
	switch {
	case err != nil:
		writeError(w, err)
	case !ok:
		refused(w, c)
	default:
		writeJSON(w, http.StatusOK, m.View())
	}
}

func (h *Handlers) addAmenity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	list, err := workspaceOf(r).Hotels.AddAmenity(r.Context(), id, body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"amenities": list})
}

func (h *Handlers) removeAmenity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, domain.WrapError(domain.KindValidationFailed, "Invalid amenity", err))
		return
	}
	if err := workspaceOf(r).Hotels.RemoveAmenity(r.Context(), id, name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- rooms ----

func roomFilters(q url.Values) (app.RoomFilters, bool) {
	return app.RoomFilters{Type: q.Get("type")}, q.Has("type")
}

// roomsOf returns the open rooms modal of the hotel in the path, opening
// it when another hotel's is open. opened reports a fresh modal, which
// has already loaded its first page.
func roomsOf(r *http.Request) (rm *app.RoomManager, opened bool, err error) {
	id, err := pathID(r, "id")
	if err != nil {
		return nil, false, err
	}
	m := workspaceOf(r).Hotels
	if rm, ok := m.RoomsOf(id); ok {
		return rm, false, nil
	}
	rm, err = m.OpenRooms(r.Context(), id)
	return rm, true, err
}

func (h *Handlers) rooms(w http.ResponseWriter, r *http.Request) {
	rm, opened, err := roomsOf(r)
	if rm == nil {
		writeError(w, err)
		return
	}
	if !opened {
		err = drive(r, rm.SearchController, roomFilters)
	}
	respondList(w, rm.SearchController, err)
}

func (h *Handlers) closeRooms(w http.ResponseWriter, r *http.Request) {
	workspaceOf(r).Hotels.CloseRooms()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	rm, _, err := roomsOf(r)
	if rm == nil {
		writeError(w, err)
		return
	}
	var d app.RoomDraft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	room, err := rm.Create(r.Context(), d)
	if err != nil && room.ID == 0 {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"room": room, "form": rm.CreateState(), "list": rm.View()})
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	rm, _, err := roomsOf(r)
	if rm == nil {
		writeError(w, err)
		return
	}
	roomID, err := pathID(r, "roomId")
	if err != nil {
		writeError(w, err)
		return
	}
	var d app.RoomDraft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	if err := rm.SaveEdit(r.Context(), roomID, d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.View())
}

func (h *Handlers) patchInventory(w http.ResponseWriter, r *http.Request) {
	rm, _, err := roomsOf(r)
	if rm == nil {
		writeError(w, err)
		return
	}
	roomID, err := pathID(r, "roomId")
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Inventory *int `json:"inventory"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Inventory == nil {
		writeError(w, domain.NewError(domain.KindValidationFailed, "Inventory is required"))
		return
	}
	if err := rm.PatchInventory(r.Context(), roomID, *body.Inventory); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rm.View())
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	rm, _, err := roomsOf(r)
	if rm == nil {
		writeError(w, err)
		return
	}
	roomID, err := pathID(r, "roomId")
	if err != nil {
		writeError(w, err)
		return
	}
	c, r := confirmed(r)
	ok, err := rm.Delete(r.Context(), roomID)
	switch {
	case err != nil:
		writeError(w, err)
	case !ok:
		refused(w, c)
	default:
		writeJSON(w, http.StatusOK, rm.View())
	}
}

// ---- travel packages ----

func (h *Handlers) myPackages(w http.ResponseWriter, r *http.Request) {
	s := workspaceOf(r).MyPackages.SearchController
	respondList(w, s, drive[app.NoFilters](r, s, nil))
}

func (h *Handlers) createPackage(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeError(w, err)
		return
	}
	d := app.PackageDraft{
		Title: r.FormValue("title"), Description: r.FormValue("description"),
		Destination: r.FormValue("destination"), DurationDays: r.FormValue("durationDays"),
		Price: r.FormValue("price"),
	}
	img := h.images()
	var err error
	if d.Photo1, err = imageField(r, "photo1", img.PackagePhoto); err == nil {
		d.Photo2, err = imageField(r, "photo2", img.PackagePhoto)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	m := workspaceOf(r).MyPackages
	m.SetDraft(d)
	pkg, err := m.Create(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"package": pkg, "form": m.CreateState(), "list": m.View()})
}

func (h *Handlers) updatePackage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var d app.PackageDraft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, err)
		return
	}
	m := workspaceOf(r).MyPackages
	if err := m.SaveEdit(r.Context(), id, d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.View())
}

func (h *Handlers) deletePackage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, r := confirmed(r)
	m := workspaceOf(r).MyPackages
	ok, err := m.Delete(r.Context(), id)
	switch {
	case err != nil:
		writeError(w, err)
	case !ok:
		refused(w, c)
	default:
		writeJSON(w, http.StatusOK, m.View())
	}
}
