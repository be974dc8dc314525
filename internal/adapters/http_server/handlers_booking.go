package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
)

const (
	msgNoDates        = "Please select check-in and check-out dates."
	msgNoPackagePrice = "This package has no valid price."
	defaultRoomLabel  = "Hotel Room"
)

func selection(r *http.Request) app.Selection {
	q := r.URL.Query()
	roomID, _ := strconv.ParseInt(q.Get("roomId"), 10, 64)
	guests, _ := strconv.Atoi(q.Get("guests"))
	return app.Selection{RoomID: roomID, CheckIn: q.Get("checkIn"), CheckOut: q.Get("checkOut"), Guests: guests}
}

type detailsView struct {
	app.HotelDetails
	Panel app.BookingPanel `json:"panel"`
}

func (h *Handlers) loadDetails(r *http.Request, sel app.Selection) (detailsView, error) {
	id, err := pathID(r, "id")
	if err != nil {
		return detailsView{}, err
	}
	ws := workspaceOf(r)
	d, err := ws.Details.Load(r.Context(), id)
	if err != nil {
		return detailsView{}, err
	}
	return detailsView{HotelDetails: d, Panel: d.Panel(sel, ws.Fees)}, nil
}

func (h *Handlers) hotelDetails(w http.ResponseWriter, r *http.Request) {
	v, err := h.loadDetails(r, selection(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) banner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	mime := r.URL.Query().Get("mime")
	if mime == "" {
		mime = imaging.MIMEJPEG
	}
	b, err := workspaceOf(r).APIs.Hotels.DownloadBanner(r.Context(), id, mime)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(b) == 0 {
		http.Redirect(w, r, app.Placeholder, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// checkoutView is an attempt plus, while the widget is open, what the
// page needs to render it.
type checkoutView struct {
	app.AttemptView
	Widget *app.WidgetOptions `json:"widget,omitempty"`
}

func (h *Handlers) viewOf(a *app.Attempt) checkoutView {
	v := checkoutView{AttemptView: a.View()}
	if v.State == app.StateWidgetOpen && h.Widget != nil {
		if o, ok := h.Widget.Options(a.ID); ok {
			v.Widget = &o
		}
	}
	return v
}

// booked answers a Book call. A failed attempt is still a created
// resource the page can show; only rejected input has no attempt.
func (h *Handlers) booked(w http.ResponseWriter, a *app.Attempt, err error) {
	if a == nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if err != nil {
		status = statusOf(err)
	}
	writeJSON(w, status, h.viewOf(a))
}

func (h *Handlers) bookHotel(w http.ResponseWriter, r *http.Request) {
	var sel app.Selection
	if err := decodeJSON(w, r, &sel); err != nil {
		writeError(w, err)
		return
	}
	v, err := h.loadDetails(r, sel)
	if err != nil {
		writeError(w, err)
		return
	}
	label := defaultRoomLabel
	if v.Panel.Room != nil && v.Panel.Room.Type != "" {
		label = v.Panel.Room.Type
	}
	a, err := workspaceOf(r).Checkout.Book(r.Context(), app.Item{
		Amount: v.Panel.Quote.Total, Description: label, Missing: msgNoDates,
	})
	h.booked(w, a, err)
}

func (h *Handlers) bookPackage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ws := workspaceOf(r)
	pkg, err := ws.APIs.Packages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := ws.Checkout.Book(r.Context(), app.Item{Amount: pkg.Price, Description: pkg.Title, Missing: msgNoPackagePrice})
	h.booked(w, a, err)
}

func (h *Handlers) packageLink(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	ws := workspaceOf(r)
	pkg, err := ws.APIs.Packages.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	link, err := ws.Checkout.PaymentLink(r.Context(), pkg.Price, pkg.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

func attemptOf(r *http.Request) (*app.Attempt, error) {
	a, ok := workspaceOf(r).Checkout.Attempt(chi.URLParam(r, "attempt"))
	if !ok {
		return nil, &domain.Error{Kind: domain.KindRequestFailed, Status: http.StatusNotFound, Message: "Unknown checkout"}
	}
	return a, nil
}

func (h *Handlers) attempt(w http.ResponseWriter, r *http.Request) {
	a, err := attemptOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.viewOf(a))
}

// widgetEvent receives the outcome the page's payment widget reported.
func (h *Handlers) widgetEvent(w http.ResponseWriter, r *http.Request) {
	a, err := attemptOf(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var ev app.WidgetEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, err)
		return
	}
	if err := a.Deliver(r.Context(), ev); err != nil && domain.KindOf(err) == domain.KindValidationFailed {
		writeError(w, err)
		return
	}
	if st := a.State(); (st.Terminal() || st == app.StateIdle) && h.Widget != nil {
		h.Widget.Forget(a.ID)
	}
	writeJSON(w, http.StatusOK, h.viewOf(a))
}

func (h *Handlers) checkoutScript(w http.ResponseWriter, r *http.Request) {
	if h.Scripts == nil {
		http.NotFound(w, r)
		return
	}
	if err := h.Scripts.Ensure(r.Context()); err != nil {
		writeError(w, domain.WrapError(domain.KindExternalScriptFailed, "Failed to load Razorpay script", err))
		return
	}
	src, _ := h.Scripts.Source()
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(src)
}
