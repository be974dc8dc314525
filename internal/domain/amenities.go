package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// AmenityShape tells which of the backend's encodings an amenity list
// arrived in.
type AmenityShape int

const (
	AmenitiesAbsent AmenityShape = iota
	AmenityStringList
	AmenityObjectList
	AmenityDelimited
)

// Amenities is the tagged form of a hotel's amenity list. Only the field
// matching Shape is set. It always marshals as a normalized string array.
type Amenities struct {
	Shape   AmenityShape
	Strings []string
	Objects []map[string]any
	Text    string
}

var amenitySep = regexp.MustCompile(`[,;\s]+`)

// AmenityList builds the string-list variant.
func AmenityList(items ...string) Amenities {
	return Amenities{Shape: AmenityStringList, Strings: items}
}

// SplitAmenities splits free text on commas, semicolons and whitespace.
func SplitAmenities(s string) []string {
	return dedupe(amenitySep.Split(s, -1))
}

// List returns trimmed, non-empty, de-duplicated names in first-seen order.
func (a Amenities) List() []string {
	switch a.Shape {
	case AmenityStringList:
		return dedupe(a.Strings)
	case AmenityObjectList:
		names := make([]string, 0, len(a.Objects))
		for _, o := range a.Objects {
			names = append(names, objectName(o))
		}
		return dedupe(names)
	case AmenityDelimited:
		return SplitAmenities(a.Text)
	}
	return []string{}
}

func (a Amenities) Len() int { return len(a.List()) }

func objectName(o map[string]any) string {
	for _, k := range []string{"name", "label", "value"} {
		if v, ok := o[k]; ok && v != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return ""
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (a *Amenities) UnmarshalJSON(b []byte) error {
	*a = Amenities{}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
	case string:
		a.Shape, a.Text = AmenityDelimited, v
	case []any:
		if len(v) == 0 {
			a.Shape = AmenityStringList
			return nil
		}
		if _, isObj := v[0].(map[string]any); isObj {
			a.Shape = AmenityObjectList
			for _, it := range v {
				if m, ok := it.(map[string]any); ok {
					a.Objects = append(a.Objects, m)
				}
			}
			return nil
		}
		a.Shape = AmenityStringList
		for _, it := range v {
			if s, ok := it.(string); ok {
				a.Strings = append(a.Strings, s)
			}
		}
	default:
		// one odd row must not fail the page it arrived in
		log.Warn().Str("type", fmt.Sprintf("%T", raw)).Msg("amenities: unsupported shape, treating as none")
	}
	return nil
}

func (a Amenities) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.List())
}
