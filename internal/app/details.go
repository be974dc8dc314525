package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
)

// Placeholder is shown where a hotel has no image.
const Placeholder = "/images/placeholder-16x9.jpg"

type HotelImages struct {
	Banner string `json:"banner"`
	Photo1 string `json:"photo1"`
	Photo2 string `json:"photo2"`
}

// HotelDetails is everything the details page loads up front.
type HotelDetails struct {
	Hotel      domain.Hotel             `json:"hotel"`
	Images     HotelImages              `json:"images"`
	Rooms      domain.Page[domain.Room] `json:"rooms"`
	RoomsError string                   `json:"roomsError,omitempty"`
}

// DetailsLoader reads a hotel, its rooms and its amenities in parallel,
// keeping recent reads in a cache.
type DetailsLoader struct {
	hotels domain.HotelAPI
	rooms  domain.RoomAPI
	cache  domain.Cache
	ttl    time.Duration
}

func NewDetailsLoader(h domain.HotelAPI, r domain.RoomAPI, c domain.Cache, ttl time.Duration) *DetailsLoader {
	return &DetailsLoader{hotels: h, rooms: r, cache: c, ttl: ttl}
}

func hotelKey(id int64) string { return fmt.Sprintf("hotel:%d", id) }
func roomsKey(id int64) string { return fmt.Sprintf("hotel:%d:rooms", id) }

// Load fails only when the hotel itself cannot be read. A rooms failure is
// reported in RoomsError and an amenities failure is ignored.
func (l *DetailsLoader) Load(ctx context.Context, id int64) (HotelDetails, error) {
	var (
		hotel     domain.Hotel
		rooms     = domain.EmptyPage[domain.Room](50)
		roomsErr  error
		amenities []string
		haveAm    bool
	)

	cachedHotel := l.cacheGet(ctx, hotelKey(id), &hotel)
	cachedRooms := l.cacheGet(ctx, roomsKey(id), &rooms)

	g, gctx := errgroup.WithContext(ctx)
	if !cachedHotel {
		g.Go(func() error {
			h, err := l.hotels.Get(gctx, id)
			if err != nil {
				return err
			}
			hotel = h
			return nil
		})
		g.Go(func() error {
			list, err := l.hotels.ListAmenities(gctx, id)
			if err != nil {
				log.Debug().Err(err).Int64("hotel_id", id).Msg("details: amenities unavailable")
				return nil
			}
			amenities, haveAm = list, true
			return nil
		})
	}
	if !cachedRooms {
		g.Go(func() error {
			p, err := l.rooms.List(gctx, domain.RoomListQuery{HotelID: &id, Page: 0, Size: 50, SortBy: "price", SortDir: "asc"})
			if err != nil {
				roomsErr = err
				return nil
			}
			rooms = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return HotelDetails{}, notice(err, "Failed to load hotel")
	}

	if !cachedHotel {
		if haveAm {
			hotel.Amenities = domain.AmenityList(amenities...)
		}
		l.cacheSet(ctx, hotelKey(id), hotel)
	}
	d := HotelDetails{Hotel: hotel, Rooms: rooms, Images: imagesOf(hotel)}
	if roomsErr != nil {
		d.RoomsError = domain.Message(roomsErr, "Failed to load rooms")
	} else if !cachedRooms {
		l.cacheSet(ctx, roomsKey(id), rooms)
	}
	if d.Rooms.Content == nil {
		d.Rooms.Content = []domain.Room{}
	}
	return d, nil
}

// Invalidate drops cached reads of a hotel.
func (l *DetailsLoader) Invalidate(ctx context.Context, id int64) {
	if l.cache == nil {
		return
	}
	for _, k := range []string{hotelKey(id), roomsKey(id)} {
		if err := l.cache.Del(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("details: cache invalidation failed")
		}
	}
}

func (l *DetailsLoader) cacheGet(ctx context.Context, key string, dst any) bool {
	if l.cache == nil {
		return false
	}
	ok, err := l.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("details: cache read failed")
		return false
	}
	return ok
}

func (l *DetailsLoader) cacheSet(ctx context.Context, key string, v any) {
	if l.cache == nil || l.ttl <= 0 {
		return
	}
	if err := l.cache.Set(ctx, key, v, int(l.ttl.Seconds())); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("details: cache write failed")
	}
}

func imagesOf(h domain.Hotel) HotelImages {
	src := func(img, mime string) string {
		if s := imaging.NormalizeSrc(img, mimeOr(mime)); s != "" {
			return s
		}
		return Placeholder
	}
	return HotelImages{
		Banner: src(h.BannerImage, h.BannerImageContentType),
		Photo1: src(h.Photo1, h.Photo1ContentType),
		Photo2: src(h.Photo2, h.Photo2ContentType),
	}
}

// Selection is the booking panel input.
type Selection struct {
	RoomID   int64  `json:"roomId,omitempty"`
	CheckIn  string `json:"checkIn,omitempty"`
	CheckOut string `json:"checkOut,omitempty"`
	Guests   int    `json:"guests"`
}

// BookingPanel is the priced booking card of the details page.
type BookingPanel struct {
	Room         *domain.Room `json:"room,omitempty"`
	CheckIn      string       `json:"checkIn,omitempty"`
	CheckOut     string       `json:"checkOut,omitempty"`
	Guests       int          `json:"guests"`
	GuestOptions []int        `json:"guestOptions"`
	Quote        Quote        `json:"quote"`
}

// Panel resolves sel against the loaded rooms: an unknown room id falls
// back to the default room and guests are clamped to its capacity.
func (d HotelDetails) Panel(sel Selection, fees Fees) BookingPanel {
	var room *domain.Room
	for i := range d.Rooms.Content {
		if d.Rooms.Content[i].ID == sel.RoomID {
			r := d.Rooms.Content[i]
			room = &r
			break
		}
	}
	if room == nil {
		if r, ok := DefaultRoom(d.Rooms.Content); ok {
			room = &r
		}
	}
	capacity := 1
	if room != nil && room.Capacity > 0 {
		capacity = room.Capacity
	}
	opts := make([]int, capacity)
	for i := range opts {
		opts[i] = i + 1
	}
	return BookingPanel{
		Room:         room,
		CheckIn:      sel.CheckIn,
		CheckOut:     sel.CheckOut,
		Guests:       ClampGuests(sel.Guests, room),
		GuestOptions: opts,
		Quote:        fees.Quote(room, d.Rooms.Content, sel.CheckIn, sel.CheckOut),
	}
}
