package app_test

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
)

func tokenFor(sub string, role string) string {
	claims := jwt.MapClaims{"sub": sub, "exp": time.Now().Add(time.Hour).Unix()}
	if role != "" {
		claims["role"] = role
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return s
}

// ---- token store shared between handles, like tabs of one context ----

type memTokens struct {
	mu    sync.Mutex
	token string
	subs  map[chan domain.TokenChange]struct{}
}

func newMemTokens() *memTokens { return &memTokens{subs: map[chan domain.TokenChange]struct{}{}} }

func (m *memTokens) handle(origin string) *memHandle { return &memHandle{m: m, origin: origin} }

type memHandle struct {
	m      *memTokens
	origin string
}

func (h *memHandle) Get(context.Context) (string, bool, error) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	return h.m.token, h.m.token != "", nil
}

func (h *memHandle) Set(_ context.Context, token string) error {
	h.publish(domain.TokenChange{Token: token, Origin: h.origin, At: time.Now()}, token)
	return nil
}

func (h *memHandle) Clear(context.Context) error {
	h.publish(domain.TokenChange{Cleared: true, Origin: h.origin, At: time.Now()}, "")
	return nil
}

func (h *memHandle) publish(ch domain.TokenChange, token string) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	h.m.token = token
	for c := range h.m.subs {
		select {
		case c <- ch:
		default:
		}
	}
}

func (h *memHandle) Watch(ctx context.Context) (<-chan domain.TokenChange, error) {
	c := make(chan domain.TokenChange, 16)
	h.m.mu.Lock()
	h.m.subs[c] = struct{}{}
	h.m.mu.Unlock()
	go func() {
		<-ctx.Done()
		h.m.mu.Lock()
		delete(h.m.subs, c)
		close(c)
		h.m.mu.Unlock()
	}()
	return c, nil
}

// ---- in-memory backend ----

type fakeBackend struct {
	mu        sync.Mutex
	nextID    int64
	hotels    map[int64]domain.Hotel
	rooms     map[int64]domain.Room
	packages  map[int64]domain.TravelPackage
	amenities map[int64][]string

	calls        map[string]int
	lastHotel    domain.HotelPayload
	lastPackage  domain.PackagePayload
	lastOrder    int64
	lastRoomList domain.RoomListQuery

	failHotelGet  error
	failAmenities error
	failRooms     error
	failCreate    error
	rateResult    float64
	order         domain.Order
	verified      bool
	verifyErr     error
	verifyGate    chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID:    100,
		hotels:    map[int64]domain.Hotel{},
		rooms:     map[int64]domain.Room{},
		packages:  map[int64]domain.TravelPackage{},
		amenities: map[int64][]string{},
		calls:     map[string]int{},
		order:     domain.Order{OrderID: "order_1", Amount: 0, Currency: domain.Currency, Key: "rzp_test"},
		verified:  true,
	}
}

func (f *fakeBackend) apis() app.APIs {
	return app.APIs{Auth: f, Hotels: hotelSide{f}, Rooms: roomSide{f}, Packages: packageSide{f}, Payments: f}
}

func (f *fakeBackend) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) id() int64 {
	f.nextID++
	return f.nextID
}

func paginate[E any](all []E, page, size int) domain.Page[E] {
	if size <= 0 {
		size = 10
	}
	total := len(all)
	pages := (total + size - 1) / size
	from := page * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}
	return domain.Page[E]{
		Content: append([]E{}, all[from:to]...), Number: page, Size: size,
		TotalElements: int64(total), TotalPages: pages,
	}
}

// auth

func (f *fakeBackend) Register(_ context.Context, req domain.RegisterRequest) (domain.User, error) {
	f.hit("register")
	return domain.User{Username: req.Username, Email: req.Email, Role: req.Role}, nil
}

func (f *fakeBackend) Login(_ context.Context, req domain.LoginRequest) (string, error) {
	f.hit("login")
	switch req.Email {
	case "agent@x.io":
		return tokenFor("agent", "agent"), nil
	case "bad@x.io":
		return "", domain.NewError(domain.KindRequestFailed, "Invalid credentials")
	}
	return tokenFor("user", "USER"), nil
}

// payments

func (f *fakeBackend) CreateOrder(_ context.Context, amount int64) (domain.Order, error) {
	f.hit("order")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOrder = amount
	o := f.order
	if o.OrderID != "" {
		o.Amount = amount
	}
	return o, nil
}

func (f *fakeBackend) Verify(context.Context, map[string]any) (domain.Verification, error) {
	f.hit("verify")
	if f.verifyGate != nil {
		<-f.verifyGate
	}
	return domain.Verification{Verified: f.verified}, f.verifyErr
}

func (f *fakeBackend) CreatePaymentLink(_ context.Context, amount int64, desc string) (domain.PaymentLink, error) {
	f.hit("link")
	return domain.PaymentLink{URL: "https://rzp.io/l/" + desc}, nil
}

// hotels

type hotelSide struct{ f *fakeBackend }

func (h hotelSide) sorted() []domain.Hotel {
	out := make([]domain.Hotel, 0, len(h.f.hotels))
	for _, v := range h.f.hotels {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h hotelSide) Search(_ context.Context, q domain.HotelSearchQuery) (domain.Page[domain.Hotel], error) {
	h.f.hit("hotels.search")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	return paginate(h.sorted(), q.Page, q.Size), nil
}

func (h hotelSide) Get(_ context.Context, id int64) (domain.Hotel, error) {
	h.f.hit("hotels.get")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	if h.f.failHotelGet != nil {
		return domain.Hotel{}, h.f.failHotelGet
	}
	v, ok := h.f.hotels[id]
	if !ok {
		return domain.Hotel{}, &domain.Error{Kind: domain.KindRequestFailed, Status: 404, Message: "Failed to load hotel (404)"}
	}
	return v, nil
}

func (h hotelSide) Create(_ context.Context, p domain.HotelPayload) (domain.Hotel, error) {
	h.f.hit("hotels.create")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	h.f.lastHotel = p
	if h.f.failCreate != nil {
		return domain.Hotel{}, h.f.failCreate
	}
	v := domain.Hotel{ID: h.f.id(), Name: p.Name, City: p.City, Country: p.Country, Destination: p.Destination,
		Amenities: domain.AmenityList(p.Amenities...)}
	h.f.hotels[v.ID] = v
	return v, nil
}

func (h hotelSide) Update(_ context.Context, id int64, p domain.HotelPayload) (domain.Hotel, error) {
	h.f.hit("hotels.update")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	h.f.lastHotel = p
	v := h.f.hotels[id]
	v.Name, v.City, v.Amenities = p.Name, p.City, domain.AmenityList(p.Amenities...)
	h.f.hotels[id] = v
	return v, nil
}

func (h hotelSide) Delete(_ context.Context, id int64) error {
	h.f.hit("hotels.delete")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	delete(h.f.hotels, id)
	return nil
}

func (h hotelSide) ListAmenities(_ context.Context, id int64) ([]string, error) {
	h.f.hit("hotels.amenities")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	if h.f.failAmenities != nil {
		return nil, h.f.failAmenities
	}
	return append([]string{}, h.f.amenities[id]...), nil
}

func (h hotelSide) AddAmenity(_ context.Context, id int64, a string) ([]string, error) {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	h.f.amenities[id] = append(h.f.amenities[id], a)
	return append([]string{}, h.f.amenities[id]...), nil
}

func (h hotelSide) RemoveAmenity(_ context.Context, id int64, a string) error {
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	var kept []string
	for _, x := range h.f.amenities[id] {
		if x != a {
			kept = append(kept, x)
		}
	}
	h.f.amenities[id] = kept
	return nil
}

func (h hotelSide) Rate(_ context.Context, id int64, stars int) (float64, error) {
	h.f.hit("hotels.rate")
	if h.f.rateResult == 0 {
		return 0, domain.NewError(domain.KindUnauthorized, domain.MsgUnauthorized)
	}
	return h.f.rateResult, nil
}

func (h hotelSide) DownloadBanner(context.Context, int64, string) ([]byte, error) { return nil, nil }

func (h hotelSide) Mine(_ context.Context, q domain.MineQuery) (domain.Page[domain.Hotel], error) {
	h.f.hit("hotels.mine")
	h.f.mu.Lock()
	defer h.f.mu.Unlock()
	return paginate(h.sorted(), q.Page, q.Size), nil
}

// rooms

type roomSide struct{ f *fakeBackend }

func (r roomSide) List(_ context.Context, q domain.RoomListQuery) (domain.Page[domain.Room], error) {
	r.f.hit("rooms.list")
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.lastRoomList = q
	if r.f.failRooms != nil {
		return domain.Page[domain.Room]{}, r.f.failRooms
	}
	var out []domain.Room
	for _, v := range r.f.rooms {
		if q.HotelID != nil && v.HotelID != *q.HotelID {
			continue
		}
		if q.Type != "" && v.Type != q.Type {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return paginate(out, q.Page, q.Size), nil
}

func (r roomSide) Get(_ context.Context, id int64) (domain.Room, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	return r.f.rooms[id], nil
}

func (r roomSide) Create(_ context.Context, p domain.RoomPayload) (domain.Room, error) {
	r.f.hit("rooms.create")
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v := domain.Room{ID: r.f.id(), HotelID: p.HotelID, Type: p.Type, Capacity: p.Capacity, Price: p.Price, Inventory: p.Inventory}
	r.f.rooms[v.ID] = v
	return v, nil
}

func (r roomSide) Update(_ context.Context, id int64, p domain.RoomPayload) (domain.Room, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v := domain.Room{ID: id, HotelID: p.HotelID, Type: p.Type, Capacity: p.Capacity, Price: p.Price, Inventory: p.Inventory}
	r.f.rooms[id] = v
	return v, nil
}

func (r roomSide) PatchInventory(_ context.Context, id int64, n int) (domain.Room, error) {
	r.f.hit("rooms.inventory")
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	v := r.f.rooms[id]
	v.Inventory = n
	r.f.rooms[id] = v
	return v, nil
}

func (r roomSide) Delete(_ context.Context, id int64) error {
	r.f.hit("rooms.delete")
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.rooms, id)
	return nil
}

// packages

type packageSide struct{ f *fakeBackend }

func (p packageSide) all() []domain.TravelPackage {
	out := make([]domain.TravelPackage, 0, len(p.f.packages))
	for _, v := range p.f.packages {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (p packageSide) Search(_ context.Context, q domain.PackageSearchQuery) (domain.Page[domain.TravelPackage], error) {
	p.f.hit("packages.search")
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return paginate(p.all(), q.Page, q.Size), nil
}

func (p packageSide) Get(_ context.Context, id int64) (domain.TravelPackage, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return p.f.packages[id], nil
}

func (p packageSide) Create(_ context.Context, in domain.PackagePayload) (domain.TravelPackage, error) {
	p.f.hit("packages.create")
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.lastPackage = in
	v := domain.TravelPackage{ID: p.f.id(), Title: in.Title, Destination: in.Destination, DurationDays: in.DurationDays, Price: in.Price}
	p.f.packages[v.ID] = v
	return v, nil
}

func (p packageSide) Mine(_ context.Context, q domain.MineQuery) (domain.Page[domain.TravelPackage], error) {
	p.f.hit("packages.mine")
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return paginate(p.all(), q.Page, q.Size), nil
}

func (p packageSide) Update(_ context.Context, id int64, in domain.PackagePayload) (domain.TravelPackage, error) {
	p.f.hit("packages.update")
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	p.f.lastPackage = in
	v := p.f.packages[id]
	v.Title, v.Price, v.DurationDays = in.Title, in.Price, in.DurationDays
	p.f.packages[id] = v
	return v, nil
}

func (p packageSide) Delete(_ context.Context, id int64) error {
	p.f.hit("packages.delete")
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	delete(p.f.packages, id)
	return nil
}

// ---- JSON round-tripping cache, like the Redis one ----

type memCache struct {
	mu   sync.Mutex
	m    map[string][]byte
	dels int
}

func newMemCache() *memCache { return &memCache{m: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.m[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.m[key] = b
	c.mu.Unlock()
	return nil
}

func (c *memCache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.dels++
	c.mu.Unlock()
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.m[key]
	return ok
}

// ---- checkout collaborators ----

type stubScripts struct {
	err   error
	calls int
}

func (s *stubScripts) Ensure(context.Context) error {
	s.calls++
	return s.err
}

type recordingWidget struct {
	mu     sync.Mutex
	opened map[string]app.WidgetOptions
	err    error
}

func (w *recordingWidget) Open(_ context.Context, id string, o app.WidgetOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	if w.opened == nil {
		w.opened = map[string]app.WidgetOptions{}
	}
	w.opened[id] = o
	return nil
}

func (w *recordingWidget) get(id string) (app.WidgetOptions, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	o, ok := w.opened[id]
	return o, ok
}
