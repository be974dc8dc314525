package domain

import "time"

// Page mirrors the backend's paginated envelope. It is always taken from the
// server as-is; the client never re-slices it.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// EmptyPage is the placeholder shown before the first fetch lands.
func EmptyPage[T any](size int) Page[T] {
	return Page[T]{Content: []T{}, Size: size}
}

type Hotel struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description,omitempty"`
	Destination            string    `json:"destination,omitempty"`
	AddressLine1           string    `json:"addressLine1,omitempty"`
	City                   string    `json:"city,omitempty"`
	State                  string    `json:"state,omitempty"`
	Country                string    `json:"country,omitempty"`
	Zip                    string    `json:"zip,omitempty"`
	Amenities              Amenities `json:"amenities"`
	BannerImage            string    `json:"bannerImage,omitempty"`
	BannerImageContentType string    `json:"bannerImageContentType,omitempty"`
	Photo1                 string    `json:"photo1,omitempty"`
	Photo1ContentType      string    `json:"photo1ContentType,omitempty"`
	Photo2                 string    `json:"photo2,omitempty"`
	Photo2ContentType      string    `json:"photo2ContentType,omitempty"`
	Rating                 *float64  `json:"rating,omitempty"`
	CreatedByUsername      string    `json:"createdByUsername,omitempty"`
}

func (h Hotel) RowID() int64 { return h.ID }

// HotelPayload is the create/update body. Image fields are pointers so an
// update can send explicit nulls, which the backend reads as "leave as is".
type HotelPayload struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Destination  string   `json:"destination"`
	AddressLine1 string   `json:"addressLine1"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	Zip          string   `json:"zip"`
	Amenities    []string `json:"amenities"`
	BannerImage  *string  `json:"bannerImage"`
	Photo1       *string  `json:"photo1"`
	Photo2       *string  `json:"photo2"`
}

type Room struct {
	ID          int64   `json:"id"`
	HotelID     int64   `json:"hotelId"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	Capacity    int     `json:"capacity"`
	Price       float64 `json:"price"`
	Inventory   int     `json:"inventory"`
}

func (r Room) RowID() int64 { return r.ID }

type RoomPayload struct {
	HotelID     int64   `json:"hotelId"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Capacity    int     `json:"capacity"`
	Price       float64 `json:"price"`
	Inventory   int     `json:"inventory"`
}

type TravelPackage struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Destination       string     `json:"destination,omitempty"`
	DurationDays      int        `json:"durationDays"`
	Price             float64    `json:"price"`
	Photo1            string     `json:"photo1,omitempty"`
	Photo1ContentType string     `json:"photo1contentType,omitempty"`
	Photo2            string     `json:"photo2,omitempty"`
	Photo2ContentType string     `json:"photo2contentType,omitempty"`
	CreatedByUsername string     `json:"createdByUsername,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

func (p TravelPackage) RowID() int64 { return p.ID }

// PackagePayload carries full data URLs plus explicit content types; the
// packages endpoint expects that shape, unlike hotels which take raw base64.
type PackagePayload struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Destination       string  `json:"destination"`
	DurationDays      int     `json:"durationDays"`
	Price             float64 `json:"price"`
	Photo1            string  `json:"photo1,omitempty"`
	Photo2            string  `json:"photo2,omitempty"`
	Photo1ContentType string  `json:"photo1contentType,omitempty"`
	Photo2ContentType string  `json:"photo2contentType,omitempty"`
}
