package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelapp_web/internal/app"
	"hotelapp_web/internal/domain"
)

func seededDetails() *fakeBackend {
	be := newFakeBackend()
	be.hotels[1] = domain.Hotel{ID: 1, Name: "Sea View", BannerImage: "QkFO", Photo1: "data:image/png;base64,UDE=",
		Amenities: domain.AmenityList("wifi")}
	be.amenities[1] = []string{"wifi", "pool"}
	be.rooms[10] = domain.Room{ID: 10, HotelID: 1, Type: "Suite", Price: 5000, Capacity: 4, Inventory: 0}
	be.rooms[11] = domain.Room{ID: 11, HotelID: 1, Type: "Std", Price: 3000, Capacity: 3, Inventory: 2}
	be.rooms[12] = domain.Room{ID: 12, HotelID: 2, Type: "Other", Price: 1}
	return be
}

func TestDetails_LoadsHotelRoomsAndAmenities(t *testing.T) {
	be := seededDetails()
	l := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, nil, 0)

	d, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sea View", d.Hotel.Name)
	assert.Equal(t, []string{"wifi", "pool"}, d.Hotel.Amenities.List())
	assert.Len(t, d.Rooms.Content, 2)
	assert.Empty(t, d.RoomsError)
	assert.Equal(t, "price", be.lastRoomList.SortBy)
	assert.Equal(t, 50, be.lastRoomList.Size)

	assert.Equal(t, "data:image/jpeg;base64,QkFO", d.Images.Banner)
	assert.Equal(t, "data:image/png;base64,UDE=", d.Images.Photo1)
	assert.Equal(t, app.Placeholder, d.Images.Photo2)
}

func TestDetails_AmenityFailureIsIgnored(t *testing.T) {
	be := seededDetails()
	be.failAmenities = assert.AnError
	l := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, nil, 0)

	d, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"wifi"}, d.Hotel.Amenities.List())
}

func TestDetails_RoomsFailureIsReportedNotFatal(t *testing.T) {
	be := seededDetails()
	be.failRooms = domain.NewError(domain.KindRequestFailed, "Failed to load rooms (500)")
	cache := newMemCache()
	l := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, cache, time.Minute)

	d, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Failed to load rooms (500)", d.RoomsError)
	assert.NotNil(t, d.Rooms.Content)
	assert.Empty(t, d.Rooms.Content)
	assert.True(t, cache.has("hotel:1"))
	assert.False(t, cache.has("hotel:1:rooms"), "failed reads are not cached")
}

func TestDetails_HotelFailureFails(t *testing.T) {
	be := seededDetails()
	_, err := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, nil, 0).Load(context.Background(), 404)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRequestFailed)
}

func TestDetails_CacheAsideAndInvalidate(t *testing.T) {
	ctx := context.Background()
	be := seededDetails()
	cache := newMemCache()
	l := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, cache, time.Minute)

	first, err := l.Load(ctx, 1)
	require.NoError(t, err)
	second, err := l.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, be.count("hotels.get"))
	assert.Equal(t, 1, be.count("rooms.list"))
	assert.Equal(t, first.Hotel.Name, second.Hotel.Name)
	assert.Equal(t, first.Hotel.Amenities.List(), second.Hotel.Amenities.List())
	assert.Len(t, second.Rooms.Content, 2)

	l.Invalidate(ctx, 1)
	_, err = l.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, be.count("hotels.get"))
	assert.Equal(t, 2, be.count("rooms.list"))
}

func TestDetails_Panel(t *testing.T) {
	be := seededDetails()
	d, err := app.NewDetailsLoader(hotelSide{be}, roomSide{be}, nil, 0).Load(context.Background(), 1)
	require.NoError(t, err)

	p := d.Panel(app.Selection{RoomID: 99, Guests: 5, CheckIn: "2026-01-01", CheckOut: "2026-01-03"}, app.DefaultFees)
	require.NotNil(t, p.Room)
	assert.Equal(t, int64(11), p.Room.ID, "unknown room falls back to the cheapest available")
	assert.Equal(t, 1, p.Guests)
	assert.Equal(t, []int{1, 2, 3}, p.GuestOptions)
	assert.Equal(t, 6000.0, p.Quote.Subtotal)
	assert.Equal(t, 6748.0, p.Quote.Total)

	p = d.Panel(app.Selection{RoomID: 10, Guests: 4}, app.DefaultFees)
	assert.Equal(t, int64(10), p.Room.ID)
	assert.Equal(t, 4, p.Guests)
	assert.Equal(t, 1, p.Quote.Nights)
}
