package imaging

import (
	"encoding/base64"
	"strings"
)

// ExtractBase64 strips a "data:<mime>;base64," prefix. Strings without a
// comma are returned unchanged.
func ExtractBase64(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ToDataURL wraps raw base64 for direct display; empty input gives "".
func ToDataURL(b64, mime string) string {
	if b64 == "" {
		return ""
	}
	if mime == "" {
		mime = MIMEJPEG
	}
	return "data:" + mime + ";base64," + b64
}

// NormalizeSrc accepts a full data URL, a bare "base64,..." string or raw
// base64, as stored by different endpoints, and returns a data URL.
func NormalizeSrc(img, fallbackMime string) string {
	switch {
	case img == "":
		return ""
	case strings.HasPrefix(img, "data:"):
		return img
	case strings.HasPrefix(img, "base64,"):
		return ToDataURL(strings.TrimPrefix(img, "base64,"), fallbackMime)
	}
	return ToDataURL(img, fallbackMime)
}

// BytesToDataURL turns a downloaded image into a displayable source.
func BytesToDataURL(b []byte, mime string) string {
	if len(b) == 0 {
		return ""
	}
	return ToDataURL(base64.StdEncoding.EncodeToString(b), mime)
}
