package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/razorpay"
	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
)

const maxBody = 32 << 20

type Handlers struct {
	Workspaces   *app.Workspaces
	Scripts      *razorpay.ScriptLoader
	Widget       *razorpay.DeferredWidget
	SecureCookie bool
	// Images sizes uploads; the zero value means imaging.DefaultPresets.
	Images imaging.Presets
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/assets/checkout.js", h.checkoutScript)

	s.mux.Group(func(r chi.Router) {
		r.Use(Workspaces(h.Workspaces, h.SecureCookie))
		r.Get("/session", h.session)
		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(Guard)
			r.Get("/home", h.home)
			r.Get("/home/{id}/amenities", h.homeAmenities)
			r.Post("/home/{id}/rating", h.rate)

			r.Get("/packages", h.packages)
			r.Post("/packages/{id}/book", h.bookPackage)
			r.Post("/packages/{id}/payment-link", h.packageLink)

			r.Route("/hotels", func(r chi.Router) {
				r.Get("/", h.myHotels)
				r.Post("/", h.createHotel)
				r.Get("/{id}/edit", h.startHotelEdit)
				r.Delete("/{id}/edit", h.cancelHotelEdit)
				r.Put("/{id}", h.updateHotel)
				r.Delete("/{id}", h.deleteHotel)
				r.Post("/{id}/amenities", h.addAmenity)
				r.Delete("/{id}/amenities/{name}", h.removeAmenity)

				r.Get("/{id}/rooms", h.rooms)
				r.Delete("/{id}/rooms", h.closeRooms)
				r.Post("/{id}/rooms", h.createRoom)
				r.Put("/{id}/rooms/{roomId}", h.updateRoom)
				r.Patch("/{id}/rooms/{roomId}/inventory", h.patchInventory)
				r.Delete("/{id}/rooms/{roomId}", h.deleteRoom)
			})

			r.Route("/travel-packages/mine", func(r chi.Router) {
				r.Get("/", h.myPackages)
				r.Post("/", h.createPackage)
				r.Put("/{id}", h.updatePackage)
				r.Delete("/{id}", h.deletePackage)
			})

			r.Get("/hotel/{id}", h.hotelDetails)
			r.Get("/hotel/{id}/banner", h.banner)
			r.Post("/hotel/{id}/book", h.bookHotel)

			r.Get("/checkout/{attempt}", h.attempt)
			r.Post("/checkout/{attempt}/events", h.widgetEvent)
		})
	})
}

// ---- responses ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func statusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindValidationFailed:
		return http.StatusBadRequest
	case domain.KindPaymentFailed:
		return http.StatusPaymentRequired
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindDecodeFailed, domain.KindExternalScriptFailed:
		return http.StatusBadGateway
	}
	if st := backendStatus(err); st != 0 {
		return st
	}
	return http.StatusBadGateway
}

// backendStatus finds the first HTTP status recorded along err's chain.
func backendStatus(err error) int {
	for err != nil {
		var de *domain.Error
		if !errors.As(err, &de) {
			return 0
		}
		if de.Status >= 400 && de.Status < 600 {
			return de.Status
		}
		err = de.Err
	}
	return 0
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= 500 {
		log.Warn().Err(err).Int("status", status).Msg("request failed")
	}
	writeProblem(w, status, http.StatusText(status), domain.Message(err, "Request failed"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.WrapError(domain.KindValidationFailed, "Invalid request body", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Errorf(domain.KindValidationFailed, "%s must be a positive number", name)
	}
	return id, nil
}

// confirmed reads the answer to a confirm prompt from ?confirm=true.
func confirmed(r *http.Request) (*app.Confirmation, *http.Request) {
	c := &app.Confirmation{Answer: r.URL.Query().Get("confirm") == "true"}
	return c, r.WithContext(app.WithConfirmation(r.Context(), c))
}

// ---- session ----

type sessionView struct {
	LoggedIn bool          `json:"loggedIn"`
	Role     domain.Role   `json:"role,omitempty"`
	Subject  string        `json:"subject,omitempty"`
	Nav      []app.NavLink `json:"nav"`
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) {
	s := workspaceOf(r).Session
	writeJSON(w, http.StatusOK, sessionView{
		LoggedIn: s.LoggedIn(), Role: s.Role(), Subject: s.Subject(),
		Nav: app.Nav(s, r.URL.Query().Get("page")),
	})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	ws := workspaceOf(r)
	to, err := app.Login(r.Context(), ws.APIs.Auth, ws.Session, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": to})
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	msg, err := app.Register(r.Context(), workspaceOf(r).APIs.Auth, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": msg, "redirect": app.RouteLogin})
}

func (h *Handlers) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.Logout(r.Context(), workspaceOf(r).Session); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": app.RouteLogin})
}

// ---- searches ----

// drive applies one list interaction from the query string: clear, size,
// sort, move, new filters, or a plain refresh.
func drive[F any, T app.Row](r *http.Request, s *app.SearchController[F, T], filters func(url.Values) (F, bool)) error {
	ctx, q := r.Context(), r.URL.Query()
	switch {
	case q.Has("clear"):
		return s.ClearFilters(ctx)
	case q.Has("size"):
		n, err := strconv.Atoi(strings.TrimSpace(q.Get("size")))
		if err != nil {
			n = 0
		}
		return s.ChangeSize(ctx, n)
	case q.Has("sortBy") || q.Has("sortDir"):
		return s.SetSort(ctx, q.Get("sortBy"), q.Get("sortDir"))
	case q.Has("move"):
		// "+1" arrives as " 1" once the query is decoded
		delta, err := strconv.Atoi(strings.TrimSpace(q.Get("move")))
		if err != nil {
			return domain.NewError(domain.KindValidationFailed, "move must be a whole number")
		}
		return s.ChangePage(ctx, delta)
	}
	if filters != nil {
		if f, ok := filters(q); ok {
			return s.SetFilters(ctx, f)
		}
	}
	return s.Refresh(ctx)
}

// respondList answers with the list view. Fetch failures are part of the
// view; only session and input problems become error responses.
func respondList[F any, T app.Row](w http.ResponseWriter, s *app.SearchController[F, T], err error) {
	switch domain.KindOf(err) {
	case domain.KindUnauthorized, domain.KindValidationFailed:
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func anyOf(q url.Values, keys ...string) bool {
	for _, k := range keys {
		if q.Has(k) {
			return true
		}
	}
	return false
}

func hotelFilters(q url.Values) (app.HotelFilters, bool) {
	return app.HotelFilters{
		Q: q.Get("q"), Country: q.Get("country"), State: q.Get("state"), MinRating: q.Get("minRating"),
	}, anyOf(q, "q", "country", "state", "minRating")
}

func packageFilters(q url.Values) (app.PackageFilters, bool) {
	return app.PackageFilters{
		Destination: q.Get("destination"), Keyword: q.Get("keyword"),
		MinDurationDays: q.Get("minDurationDays"), MaxDurationDays: q.Get("maxDurationDays"),
		MinPrice: q.Get("minPrice"), MaxPrice: q.Get("maxPrice"),
	}, anyOf(q, "destination", "keyword", "minDurationDays", "maxDurationDays", "minPrice", "maxPrice")
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	s := workspaceOf(r).Home.SearchController
	respondList(w, s, drive(r, s, hotelFilters))
}

func (h *Handlers) homeAmenities(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := workspaceOf(r).Home.FetchAmenities(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"amenities": list})
}

func (h *Handlers) rate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	stars, _ := strconv.Atoi(r.URL.Query().Get("stars"))
	avg, err := workspaceOf(r).Home.Rate(r.Context(), id, stars)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"rating": avg})
}

func (h *Handlers) packages(w http.ResponseWriter, r *http.Request) {
	s := workspaceOf(r).Packages.SearchController
	respondList(w, s, drive(r, s, packageFilters))
}
