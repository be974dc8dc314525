package app

import (
	"strings"

	"hotelapp_web/internal/domain"
)

// CreateAmenities parses the create form's comma separated input.
func CreateAmenities(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EditAmenities parses the edit form's input, which also accepts
// semicolons and whitespace and drops duplicates.
func EditAmenities(input string) []string { return domain.SplitAmenities(input) }

// AmenitiesText renders a list back into the edit input.
func AmenitiesText(list []string) string { return strings.Join(list, ", ") }
