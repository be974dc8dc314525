package domain

import "context"

type AuthAPI interface {
	Register(ctx context.Context, req RegisterRequest) (User, error)
	Login(ctx context.Context, req LoginRequest) (string, error)
}

type HotelAPI interface {
	Search(ctx context.Context, q HotelSearchQuery) (Page[Hotel], error)
	Get(ctx context.Context, id int64) (Hotel, error)
	Create(ctx context.Context, p HotelPayload) (Hotel, error)
	Update(ctx context.Context, id int64, p HotelPayload) (Hotel, error)
	Delete(ctx context.Context, id int64) error
	ListAmenities(ctx context.Context, id int64) ([]string, error)
	AddAmenity(ctx context.Context, id int64, amenity string) ([]string, error)
	RemoveAmenity(ctx context.Context, id int64, amenity string) error
	Rate(ctx context.Context, id int64, stars int) (float64, error)
	DownloadBanner(ctx context.Context, id int64, mime string) ([]byte, error)
	Mine(ctx context.Context, q MineQuery) (Page[Hotel], error)
}

type RoomAPI interface {
	List(ctx context.Context, q RoomListQuery) (Page[Room], error)
	Get(ctx context.Context, id int64) (Room, error)
	Create(ctx context.Context, p RoomPayload) (Room, error)
	Update(ctx context.Context, id int64, p RoomPayload) (Room, error)
	PatchInventory(ctx context.Context, id int64, inventory int) (Room, error)
	Delete(ctx context.Context, id int64) error
}

type PackageAPI interface {
	Search(ctx context.Context, q PackageSearchQuery) (Page[TravelPackage], error)
	Get(ctx context.Context, id int64) (TravelPackage, error)
	Create(ctx context.Context, p PackagePayload) (TravelPackage, error)
	Mine(ctx context.Context, q MineQuery) (Page[TravelPackage], error)
	Update(ctx context.Context, id int64, p PackagePayload) (TravelPackage, error)
	Delete(ctx context.Context, id int64) error
}

type PaymentAPI interface {
	CreateOrder(ctx context.Context, amountMinor int64) (Order, error)
	Verify(ctx context.Context, widgetResponse map[string]any) (Verification, error)
	CreatePaymentLink(ctx context.Context, amountMinor int64, description string) (PaymentLink, error)
}

// TokenStore persists the bearer token where every browsing context tab can
// see it. Watch delivers changes made through any handle on the same store.
type TokenStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Watch(ctx context.Context) (<-chan TokenChange, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Queries

type HotelSearchQuery struct {
	Q         string
	Country   string
	State     string
	MinRating *float64
	Page      int
	Size      int
	Sort      string // "field,dir"
}

type MineQuery struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

type RoomListQuery struct {
	HotelID *int64
	Type    string
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

type PackageSearchQuery struct {
	Destination     string
	Keyword         string
	MinDurationDays *int
	MaxDurationDays *int
	MinPrice        *float64
	MaxPrice        *float64
	Page            int
	Size            int
	SortBy          string
	SortDir         string
}
