package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/domain"
)

// HotelFilters are the home page's filter inputs as typed.
type HotelFilters struct {
	Q         string `json:"q"`
	Country   string `json:"country"`
	State     string `json:"state"`
	MinRating string `json:"minRating"`
}

const (
	msgAmenitiesFailed = "Could not load amenities."
	msgRatingFailed    = "Could not submit rating. Are you logged in with USER/HOTELMANAGER/ADMIN role?"
)

// HomeSearch is the traveler's hotel search. Amenities are loaded lazily
// per card and ratings update the card in place.
type HomeSearch struct {
	*SearchController[HotelFilters, domain.Hotel]
	hotels  domain.HotelAPI
	onTouch func(hotelID int64)
}

func NewHomeSearch(hotels domain.HotelAPI) *HomeSearch {
	h := &HomeSearch{hotels: hotels}
	h.SearchController = NewSearchController(SearchConfig[HotelFilters, domain.Hotel]{
		Name:       "home",
		Fetch:      h.fetch,
		Defaults:   SearchQuery[HotelFilters]{SortBy: "name", SortDir: "asc", Size: 10},
		ErrMessage: "Something went wrong while fetching hotels.",
		Skeleton:   true,
	})
	return h
}

// OnHotelChanged registers a hook run after a rating changes a hotel, so
// cached detail views can be dropped.
func (h *HomeSearch) OnHotelChanged(fn func(hotelID int64)) { h.onTouch = fn }

func (h *HomeSearch) fetch(ctx context.Context, q SearchQuery[HotelFilters]) (domain.Page[domain.Hotel], error) {
	return h.hotels.Search(ctx, domain.HotelSearchQuery{
		Q:         q.Filters.Q,
		Country:   q.Filters.Country,
		State:     q.Filters.State,
		MinRating: optFloat(q.Filters.MinRating),
		Page:      q.Page,
		Size:      q.Size,
		Sort:      q.SortBy + "," + q.SortDir,
	})
}

// FetchAmenities loads a card's amenities and merges them into the row.
// A failure is a notice; the list itself is untouched.
func (h *HomeSearch) FetchAmenities(ctx context.Context, id int64) ([]string, error) {
	list, err := h.hotels.ListAmenities(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Msg("amenities error")
		return nil, relabel(err, msgAmenitiesFailed)
	}
	h.UpdateRow(id, func(ht *domain.Hotel) { ht.Amenities = domain.AmenityList(list...) })
	return list, nil
}

// Rate submits 1..5 stars and shows the returned average on the card.
func (h *HomeSearch) Rate(ctx context.Context, id int64, stars int) (float64, error) {
	if stars < 1 || stars > 5 {
		return 0, domain.NewError(domain.KindValidationFailed, "Rating must be between 1 and 5 stars.")
	}
	avg, err := h.hotels.Rate(ctx, id, stars)
	if err != nil {
		log.Warn().Err(err).Int64("hotel_id", id).Int("stars", stars).Msg("rating error")
		return 0, relabel(err, msgRatingFailed)
	}
	h.UpdateRow(id, func(ht *domain.Hotel) { ht.Rating = &avg })
	if h.onTouch != nil {
		h.onTouch(id)
	}
	return avg, nil
}
