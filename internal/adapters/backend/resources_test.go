package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"hotelapp_web/internal/adapters/backend"
	"hotelapp_web/internal/domain"
)

// fakeBackend routes like the real REST surface and records what it saw.
type fakeBackend struct {
	lastQuery map[string]string
	lastBody  map[string]any
}

func (f *fakeBackend) record(r *http.Request) {
	f.lastQuery = map[string]string{}
	for k, v := range r.URL.Query() {
		f.lastQuery[k] = v[0]
	}
	f.lastBody = nil
	if b, _ := io.ReadAll(r.Body); len(b) > 0 {
		_ = json.Unmarshal(b, &f.lastBody)
	}
}

func (f *fakeBackend) router() http.Handler {
	m := chi.NewRouter()
	m.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		switch f.lastBody["email"] {
		case "a@b.com":
			_, _ = io.WriteString(w, `{"token":"t.o.k"}`)
		case "no-token@b.com":
			_, _ = io.WriteString(w, `{}`)
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"Email is not registered"}`)
		}
	})
	m.Get("/api/travel-packages", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `{"content":[{"id":1,"title":"Goa","durationDays":3,"price":8999}],"number":0,"size":10,"totalElements":1,"totalPages":1}`)
	})
	m.Get("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `{"content":[],"number":0,"size":5,"totalElements":0,"totalPages":0}`)
	})
	m.Patch("/api/rooms/{id}/inventory", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `{"id":4,"hotelId":1,"type":"Deluxe","capacity":2,"price":4999,"inventory":7}`)
	})
	m.Post("/api/hotels", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `Hotel created`)
	})
	m.Put("/api/hotels/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `"Hotel updated"`)
	})
	m.Get("/api/hotels/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[1,2]`)
	})
	m.Post("/api/hotels/{id}/rating", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `4.5`)
	})
	m.Get("/api/hotels/{id}/amenities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `["wifi","pool"]`)
	})
	m.Post("/api/hotels/{id}/amenities", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `["wifi","pool","spa"]`)
	})
	m.Get("/api/hotels/{id}/banner", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", r.Header.Get("Accept"))
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	})
	m.Post("/payments/orders", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `{"orderId":"order_1","amount":899900,"currency":"INR","key":"rzp_test"}`)
	})
	m.Post("/payments/verify", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = io.WriteString(w, `verified-later`)
	})
	return m
}

func setup(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()
	fb := &fakeBackend{}
	ts := httptest.NewServer(fb.router())
	t.Cleanup(ts.Close)
	return fb, newClient(t, ts.URL, staticToken("tok"), backend.Options{})
}

func TestPackages_SearchOmitsEmptyFilters(t *testing.T) {
	fb, cl := setup(t)
	minDays := 2
	page, err := cl.Packages().Search(context.Background(), domain.PackageSearchQuery{
		Destination: "Goa", MinDurationDays: &minDays, Page: 0, Size: 10, SortBy: "price", SortDir: "asc",
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(page.Content) != 1 || page.Content[0].Title != "Goa" {
		t.Fatalf("unexpected page: %+v", page)
	}
	want := map[string]string{"destination": "Goa", "minDurationDays": "2", "page": "0", "size": "10", "sortBy": "price", "sortDir": "asc"}
	if len(fb.lastQuery) != len(want) {
		t.Fatalf("unexpected query keys: %v", fb.lastQuery)
	}
	for k, v := range want {
		if fb.lastQuery[k] != v {
			t.Fatalf("query %s: want %q got %q", k, v, fb.lastQuery[k])
		}
	}
}

func TestRooms_ListSendsCombinedSort(t *testing.T) {
	fb, cl := setup(t)
	hid := int64(42)
	if _, err := cl.Rooms().List(context.Background(), domain.RoomListQuery{HotelID: &hid, Page: 1, Size: 5}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if fb.lastQuery["sort"] != "updatedAt,desc" || fb.lastQuery["hotelId"] != "42" || fb.lastQuery["page"] != "1" {
		t.Fatalf("unexpected query: %v", fb.lastQuery)
	}
	if _, ok := fb.lastQuery["type"]; ok {
		t.Fatalf("empty type must be omitted: %v", fb.lastQuery)
	}
}

func TestRooms_PatchInventory(t *testing.T) {
	fb, cl := setup(t)
	room, err := cl.Rooms().PatchInventory(context.Background(), 4, 7)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if room.Inventory != 7 || fb.lastBody["inventory"] != float64(7) {
		t.Fatalf("unexpected room/body: %+v %v", room, fb.lastBody)
	}
}

func TestAuth_Login(t *testing.T) {
	_, cl := setup(t)
	ctx := context.Background()

	tok, err := cl.Auth().Login(ctx, domain.LoginRequest{Email: "a@b.com", Password: "x"})
	if err != nil || tok != "t.o.k" {
		t.Fatalf("login: %q %v", tok, err)
	}

	_, err = cl.Auth().Login(ctx, domain.LoginRequest{Email: "no-token@b.com"})
	if err == nil || err.Error() != "Login succeeded but token missing in response." {
		t.Fatalf("expected missing token error, got %v", err)
	}

	_, err = cl.Auth().Login(ctx, domain.LoginRequest{Email: "who@b.com"})
	if err == nil || err.Error() != "Email is not registered" {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestHotels_RateAmenitiesBanner(t *testing.T) {
	fb, cl := setup(t)
	ctx := context.Background()

	avg, err := cl.Hotels().Rate(ctx, 3, 5)
	if err != nil || avg != 4.5 || fb.lastQuery["stars"] != "5" {
		t.Fatalf("rate: %v %v %v", avg, err, fb.lastQuery)
	}

	list, err := cl.Hotels().ListAmenities(ctx, 3)
	if err != nil || len(list) != 2 {
		t.Fatalf("amenities: %v %v", list, err)
	}
	list, err = cl.Hotels().AddAmenity(ctx, 3, "spa")
	if err != nil || len(list) != 3 || fb.lastQuery["amenity"] != "spa" {
		t.Fatalf("add amenity: %v %v %v", list, err, fb.lastQuery)
	}

	b, err := cl.Hotels().DownloadBanner(ctx, 3, "")
	if err != nil || len(b) != 3 || b[0] != 0xff {
		t.Fatalf("banner: %v %v", b, err)
	}
}

func TestPayments_OrderUsesMinorUnitsAndINR(t *testing.T) {
	fb, cl := setup(t)
	ctx := context.Background()

	order, err := cl.Payments().CreateOrder(ctx, 899900)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if fb.lastBody["amount"] != float64(899900) || fb.lastBody["currency"] != "INR" {
		t.Fatalf("unexpected order body: %v", fb.lastBody)
	}
	if !order.WidgetReady() {
		t.Fatalf("expected widget fields: %+v", order)
	}

	if _, err := cl.Payments().CreateOrder(ctx, 0); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	// plain text body falls back instead of failing
	v, err := cl.Payments().Verify(ctx, map[string]any{"razorpay_payment_id": "pay_1"})
	if err != nil || v.Verified {
		t.Fatalf("verify: %+v %v", v, err)
	}
	if fb.lastBody["razorpay_payment_id"] != "pay_1" {
		t.Fatalf("widget response not forwarded: %v", fb.lastBody)
	}
}

func TestHotels_TextSuccessIsNotAFailure(t *testing.T) {
	fb, cl := setup(t)
	ctx := context.Background()

	h, err := cl.Hotels().Create(ctx, domain.HotelPayload{Name: "Sea View", City: "Goa"})
	if err != nil {
		t.Fatalf("create with a text answer must succeed: %v", err)
	}
	if h.ID != 0 || fb.lastBody["name"] != "Sea View" {
		t.Fatalf("unexpected result %+v body %v", h, fb.lastBody)
	}

	if _, err := cl.Hotels().Update(ctx, 7, domain.HotelPayload{Name: "Sea View"}); err != nil {
		t.Fatalf("update with a quoted text answer must succeed: %v", err)
	}

	// JSON of the wrong shape is still reported
	if _, err := cl.Hotels().Get(ctx, 7); !errors.Is(err, domain.ErrDecodeFailed) {
		t.Fatalf("expected decode failure, got %v", err)
	}
}
