package app

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotelapp_web/internal/domain"
	"hotelapp_web/internal/imaging"
)

var validate = newValidator()

// newValidator reports fields by their label tag so messages read like
// the form ("Duration", not "DurationDays").
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if l := f.Tag.Get("label"); l != "" {
			return l
		}
		return f.Name
	})
	return v
}

// checkStruct runs the tag rules of v and turns the first failures into one
// user-facing ValidationFailed error.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return domain.WrapError(domain.KindValidationFailed, "Invalid form", err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return domain.NewError(domain.KindValidationFailed, strings.Join(msgs, "; "))
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		if fe.Param() == "1" {
			return field + " must be a positive number"
		}
		return fmt.Sprintf("%s must be a number ≥ %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// num parses a numeric form field. Blank reads as zero.
func num(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, domain.Errorf(domain.KindValidationFailed, "%s must be a number", field)
	}
	return f, nil
}

func whole(field, s string) (int, error) {
	f, err := num(field, s)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, domain.Errorf(domain.KindValidationFailed, "%s must be a whole number", field)
	}
	return int(f), nil
}

func tr(s string) string { return strings.TrimSpace(s) }

// Hotels

// HotelDraft stages the create-hotel form.
type HotelDraft struct {
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Destination  string             `json:"destination"`
	AddressLine1 string             `json:"addressLine1"`
	City         string             `json:"city"`
	State        string             `json:"state"`
	Country      string             `json:"country"`
	Zip          string             `json:"zip"`
	Amenities    string             `json:"amenities"` // comma separated
	Banner       *imaging.Processed `json:"-"`
	Photo1       *imaging.Processed `json:"-"`
	Photo2       *imaging.Processed `json:"-"`
}

type hotelCheck struct {
	Name        string             `validate:"required"`
	Destination string             `validate:"required"`
	City        string             `validate:"required"`
	Country     string             `validate:"required"`
	Banner      *imaging.Processed `validate:"required" label:"Banner image"`
	Photo1      *imaging.Processed `validate:"required" label:"Photo 1"`
}

func (d HotelDraft) Validate() error {
	return checkStruct(hotelCheck{
		Name: tr(d.Name), Destination: tr(d.Destination), City: tr(d.City), Country: tr(d.Country),
		Banner: d.Banner, Photo1: d.Photo1,
	})
}

func (d HotelDraft) CanSubmit() bool { return d.Validate() == nil }

// Payload trims the text fields and sends images as raw base64.
func (d HotelDraft) Payload() domain.HotelPayload {
	return domain.HotelPayload{
		Name:         tr(d.Name),
		Description:  tr(d.Description),
		Destination:  tr(d.Destination),
		AddressLine1: tr(d.AddressLine1),
		City:         tr(d.City),
		State:        tr(d.State),
		Country:      tr(d.Country),
		Zip:          tr(d.Zip),
		Amenities:    CreateAmenities(d.Amenities),
		BannerImage:  rawImage(d.Banner),
		Photo1:       rawImage(d.Photo1),
		Photo2:       rawImage(d.Photo2),
	}
}

func rawImage(p *imaging.Processed) *string {
	s := ""
	if p != nil {
		s = p.Base64()
	}
	return &s
}

// HotelEdit is the edit surface of one hotel. Images are never replaced
// from here.
type HotelEdit struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Destination  string   `json:"destination"`
	AddressLine1 string   `json:"addressLine1"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	Country      string   `json:"country"`
	Zip          string   `json:"zip"`
	Amenities    []string `json:"amenities"`
}

func EditHotel(h domain.Hotel) HotelEdit {
	return HotelEdit{
		ID: h.ID, Name: h.Name, Description: h.Description, Destination: h.Destination,
		AddressLine1: h.AddressLine1, City: h.City, State: h.State, Country: h.Country,
		Zip: h.Zip, Amenities: h.Amenities.List(),
	}
}

// SetAmenitiesText replaces the amenities from the free-text input.
func (e *HotelEdit) SetAmenitiesText(s string) { e.Amenities = EditAmenities(s) }

// Payload sends null images, which the backend reads as "keep".
func (e HotelEdit) Payload() domain.HotelPayload {
	am := e.Amenities
	if am == nil {
		am = []string{}
	}
	return domain.HotelPayload{
		Name: tr(e.Name), Description: tr(e.Description), Destination: tr(e.Destination),
		AddressLine1: tr(e.AddressLine1), City: tr(e.City), State: tr(e.State),
		Country: tr(e.Country), Zip: tr(e.Zip), Amenities: am,
	}
}

// Rooms

type RoomDraft struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Capacity    string `json:"capacity"`
	Price       string `json:"price"`
	Inventory   string `json:"inventory"`
}

type roomCheck struct {
	Type      string  `validate:"required"`
	Capacity  int     `validate:"gt=0"`
	Price     float64 `validate:"gt=0"`
	Inventory int     `validate:"gte=0"`
}

// Payload validates the draft and builds the body for hotelID.
func (d RoomDraft) Payload(hotelID int64) (domain.RoomPayload, error) {
	capacity, err := whole("Capacity", d.Capacity)
	if err != nil {
		return domain.RoomPayload{}, err
	}
	price, err := num("Price", d.Price)
	if err != nil {
		return domain.RoomPayload{}, err
	}
	inventory, err := whole("Inventory", d.Inventory)
	if err != nil {
		return domain.RoomPayload{}, err
	}
	if err := checkStruct(roomCheck{Type: tr(d.Type), Capacity: capacity, Price: price, Inventory: inventory}); err != nil {
		return domain.RoomPayload{}, err
	}
	return domain.RoomPayload{
		HotelID: hotelID, Type: tr(d.Type), Description: tr(d.Description),
		Capacity: capacity, Price: price, Inventory: inventory,
	}, nil
}

func (d RoomDraft) CanSubmit() bool {
	_, err := d.Payload(0)
	return err == nil
}

// EditRoom seeds a draft from an existing room.
func EditRoom(r domain.Room) RoomDraft {
	return RoomDraft{
		Type: r.Type, Description: r.Description,
		Capacity:  strconv.Itoa(r.Capacity),
		Price:     strconv.FormatFloat(r.Price, 'f', -1, 64),
		Inventory: strconv.Itoa(r.Inventory),
	}
}

// Travel packages

type PackageDraft struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Destination  string             `json:"destination"`
	DurationDays string             `json:"durationDays"`
	Price        string             `json:"price"`
	Photo1       *imaging.Processed `json:"-"`
	Photo2       *imaging.Processed `json:"-"`
}

type packageCreateCheck struct {
	Title        string             `validate:"required"`
	Destination  string             `validate:"required"`
	DurationDays int                `validate:"gte=1" label:"Duration"`
	Price        float64            `validate:"gt=0"`
	Photo1       *imaging.Processed `validate:"required" label:"Photo 1"`
	Photo2       *imaging.Processed `validate:"required" label:"Photo 2"`
}

type packageEditCheck struct {
	Title        string  `validate:"required"`
	Destination  string  `validate:"required"`
	DurationDays int     `validate:"gte=1" label:"Duration"`
	Price        float64 `validate:"gte=0"`
}

func (d PackageDraft) numbers() (int, float64, error) {
	days, err := whole("Duration", d.DurationDays)
	if err != nil {
		return 0, 0, err
	}
	price, err := num("Price", d.Price)
	if err != nil {
		return 0, 0, err
	}
	return days, price, nil
}

// Payload builds a create body. Photos go as full data URLs with explicit
// content types.
func (d PackageDraft) Payload() (domain.PackagePayload, error) {
	days, price, err := d.numbers()
	if err != nil {
		return domain.PackagePayload{}, err
	}
	if err := checkStruct(packageCreateCheck{
		Title: tr(d.Title), Destination: tr(d.Destination), DurationDays: days, Price: price,
		Photo1: d.Photo1, Photo2: d.Photo2,
	}); err != nil {
		return domain.PackagePayload{}, err
	}
	return domain.PackagePayload{
		Title: tr(d.Title), Description: tr(d.Description), Destination: tr(d.Destination),
		DurationDays: days, Price: price,
		Photo1: d.Photo1.DataURL, Photo1ContentType: mimeOr(d.Photo1.MIMEType),
		Photo2: d.Photo2.DataURL, Photo2ContentType: mimeOr(d.Photo2.MIMEType),
	}, nil
}

func (d PackageDraft) CanSubmit() bool {
	_, err := d.Payload()
	return err == nil
}

// EditPayload builds an update body; photos are left out so they stay.
func (d PackageDraft) EditPayload() (domain.PackagePayload, error) {
	days, price, err := d.numbers()
	if err != nil {
		return domain.PackagePayload{}, err
	}
	if tr(d.DurationDays) == "" {
		return domain.PackagePayload{}, domain.NewError(domain.KindValidationFailed, "Duration must be a positive number")
	}
	if tr(d.Price) == "" {
		return domain.PackagePayload{}, domain.NewError(domain.KindValidationFailed, "Price must be a number ≥ 0")
	}
	if err := checkStruct(packageEditCheck{
		Title: tr(d.Title), Destination: tr(d.Destination), DurationDays: days, Price: price,
	}); err != nil {
		return domain.PackagePayload{}, err
	}
	return domain.PackagePayload{
		Title: tr(d.Title), Description: tr(d.Description), Destination: tr(d.Destination),
		DurationDays: days, Price: price,
	}, nil
}

func EditPackage(p domain.TravelPackage) PackageDraft {
	return PackageDraft{
		Title: p.Title, Description: p.Description, Destination: p.Destination,
		DurationDays: strconv.Itoa(p.DurationDays),
		Price:        strconv.FormatFloat(p.Price, 'f', -1, 64),
	}
}

func mimeOr(m string) string {
	if m == "" {
		return imaging.MIMEJPEG
	}
	return m
}
