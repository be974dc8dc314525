package httpserver_test

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"hotelapp_web/internal/domain"
)

func tokenFor(sub, role string) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

// fakeAPI is a small in-memory stand-in for the booking backend.
type fakeAPI struct {
	mu        sync.Mutex
	nextID    int64
	hotels    map[int64]domain.Hotel
	rooms     map[int64]domain.Room
	packages  map[int64]domain.TravelPackage
	lastHotel domain.HotelPayload
	lastOrder domain.OrderRequest
	verified  bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		nextID:   100,
		hotels:   map[int64]domain.Hotel{},
		rooms:    map[int64]domain.Room{},
		packages: map[int64]domain.TravelPackage{},
		verified: true,
	}
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func idParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func page[T any](all []T, r *http.Request) domain.Page[T] {
	n, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 10
	}
	from, to := n*size, n*size+size
	if from > len(all) {
		from = len(all)
	}
	if to > len(all) {
		to = len(all)
	}
	return domain.Page[T]{Content: append([]T{}, all[from:to]...), Number: n, Size: size,
		TotalElements: int64(len(all)), TotalPages: (len(all) + size - 1) / size}
}

func (f *fakeAPI) sortedHotels() []domain.Hotel {
	out := make([]domain.Hotel, 0, len(f.hotels))
	for _, h := range f.hotels {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func authed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Email {
		case "bad@x.io":
			reply(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		case "agent@x.io":
			reply(w, http.StatusOK, map[string]string{"token": tokenFor("agent", "AGENT")})
		default:
			reply(w, http.StatusOK, map[string]string{"token": tokenFor("user", "USER")})
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(authed)
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				f.mu.Lock()
				defer f.mu.Unlock()
				next.ServeHTTP(w, r)
			})
		})

		r.Get("/api/hotels", func(w http.ResponseWriter, r *http.Request) { reply(w, 200, page(f.sortedHotels(), r)) })
		r.Get("/api/hotels/mine", func(w http.ResponseWriter, r *http.Request) { reply(w, 200, page(f.sortedHotels(), r)) })
		r.Post("/api/hotels", func(w http.ResponseWriter, r *http.Request) {
			var p domain.HotelPayload
			_ = json.NewDecoder(r.Body).Decode(&p)
			f.lastHotel = p
			f.nextID++
			h := domain.Hotel{ID: f.nextID, Name: p.Name, City: p.City, Country: p.Country, Destination: p.Destination}
			f.hotels[h.ID] = h
			reply(w, http.StatusCreated, h)
		})
		r.Get("/api/hotels/{id}", func(w http.ResponseWriter, r *http.Request) {
			h, ok := f.hotels[idParam(r)]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			reply(w, 200, h)
		})
		r.Delete("/api/hotels/{id}", func(w http.ResponseWriter, r *http.Request) {
			delete(f.hotels, idParam(r))
			w.WriteHeader(http.StatusNoContent)
		})
		r.Get("/api/hotels/{id}/amenities", func(w http.ResponseWriter, r *http.Request) {
			reply(w, 200, []string{"wifi", "pool"})
		})
		r.Get("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
			hid, _ := strconv.ParseInt(r.URL.Query().Get("hotelId"), 10, 64)
			var out []domain.Room
			for _, rm := range f.rooms {
				if rm.HotelID == hid {
					out = append(out, rm)
				}
			}
			sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
			reply(w, 200, page(out, r))
		})
		r.Get("/api/travel-packages/{id}", func(w http.ResponseWriter, r *http.Request) {
			p, ok := f.packages[idParam(r)]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			reply(w, 200, p)
		})
		r.Post("/payments/orders", func(w http.ResponseWriter, r *http.Request) {
			var o domain.OrderRequest
			_ = json.NewDecoder(r.Body).Decode(&o)
			f.lastOrder = o
			reply(w, 200, domain.Order{OrderID: "order_1", Amount: o.Amount, Currency: o.Currency, Key: "rzp_test"})
		})
		r.Post("/payments/verify", func(w http.ResponseWriter, r *http.Request) {
			reply(w, 200, domain.Verification{Verified: f.verified})
		})
	})
	return r
}
