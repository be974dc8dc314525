package app

import (
	"math"
	"time"

	"hotelapp_web/internal/domain"
)

// Fees are the flat charges added to a non-empty stay.
type Fees struct {
	ServiceFee float64
	Taxes      float64
}

var DefaultFees = Fees{ServiceFee: 299, Taxes: 449}

type Quote struct {
	Nights       int     `json:"nights"`
	NightlyPrice float64 `json:"nightlyPrice"`
	Subtotal     float64 `json:"subtotal"`
	ServiceFee   float64 `json:"serviceFee"`
	Taxes        float64 `json:"taxes"`
	Total        float64 `json:"total"`
}

// AmountMinor is what the payment backend is sent for total.
func (q Quote) AmountMinor() int64 { return ToMinor(q.Total) }

func ToMinor(amount float64) int64 { return int64(math.Round(amount * 100)) }

const dateLayout = "2006-01-02"

func parseDay(s string) (time.Time, bool) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Nights counts started days between the two dates. Missing, invalid or
// non-increasing dates count as one night.
func Nights(checkIn, checkOut string) int {
	in, ok1 := parseDay(checkIn)
	out, ok2 := parseDay(checkOut)
	if !ok1 || !ok2 {
		return 1
	}
	n := int(math.Ceil(out.Sub(in).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

// LowestPrice is the cheapest positive room price, rounded to whole rupees
// as the listing shows it, or 0.
func LowestPrice(rooms []domain.Room) float64 {
	lowest := 0.0
	for _, r := range rooms {
		if r.Price > 0 && (lowest == 0 || r.Price < lowest) {
			lowest = r.Price
		}
	}
	return math.Round(lowest)
}

// DefaultRoom prefers the cheapest room with inventory left, then the
// first room.
func DefaultRoom(rooms []domain.Room) (domain.Room, bool) {
	if len(rooms) == 0 {
		return domain.Room{}, false
	}
	var best *domain.Room
	for i := range rooms {
		r := &rooms[i]
		if r.Inventory > 0 && (best == nil || r.Price < best.Price) {
			best = r
		}
	}
	if best == nil {
		return rooms[0], true
	}
	return *best, true
}

// ClampGuests resets guests to 1 when it does not fit the room.
func ClampGuests(guests int, room *domain.Room) int {
	capacity := 1
	if room != nil && room.Capacity > 0 {
		capacity = room.Capacity
	}
	if guests < 1 || guests > capacity {
		return 1
	}
	return guests
}

// Quote prices a stay in room, falling back to the cheapest listed price
// when no room is selected.
func (f Fees) Quote(room *domain.Room, rooms []domain.Room, checkIn, checkOut string) Quote {
	nightly := 0.0
	if room != nil && room.Price > 0 {
		nightly = room.Price
	} else {
		nightly = LowestPrice(rooms)
	}
	q := Quote{
		Nights:       Nights(checkIn, checkOut),
		NightlyPrice: nightly,
		ServiceFee:   f.ServiceFee,
		Taxes:        f.Taxes,
	}
	q.Subtotal = nightly * float64(q.Nights)
	if q.Subtotal > 0 {
		q.Total = q.Subtotal + f.ServiceFee + f.Taxes
	}
	return q
}
