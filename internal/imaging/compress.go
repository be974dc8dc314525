// Package imaging shrinks user-selected images before they are attached to
// a create payload, and converts between the data URL and raw base64 forms
// the backend endpoints expect.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"hotelapp_web/internal/domain"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

type Options struct {
	MaxWidth int     // default 1280
	Quality  float64 // 0..1, default 0.7
	MIMEType string  // image/jpeg (default) or image/png
}

// Preset sizes used by the create forms.
var (
	BannerOptions = Options{MaxWidth: 1280, Quality: 0.8, MIMEType: MIMEJPEG}
	HotelPhoto    = Options{MaxWidth: 1280, Quality: 0.7, MIMEType: MIMEJPEG}
	PackagePhoto  = Options{MaxWidth: 1024, Quality: 0.72, MIMEType: MIMEJPEG}
)

// Presets are the sizes of every upload field, by form.
type Presets struct {
	Banner       Options
	HotelPhoto   Options
	PackagePhoto Options
}

var DefaultPresets = Presets{Banner: BannerOptions, HotelPhoto: HotelPhoto, PackagePhoto: PackagePhoto}

// Limit caps every preset at maxWidth and, when quality is within (0,1],
// encodes them all at that quality. Zero arguments change nothing.
func (p Presets) Limit(maxWidth int, quality float64) Presets {
	limit := func(o Options) Options {
		if maxWidth > 0 && (o.MaxWidth <= 0 || o.MaxWidth > maxWidth) {
			o.MaxWidth = maxWidth
		}
		if quality > 0 && quality <= 1 {
			o.Quality = quality
		}
		return o
	}
	return Presets{Banner: limit(p.Banner), HotelPhoto: limit(p.HotelPhoto), PackagePhoto: limit(p.PackagePhoto)}
}

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = 1280
	}
	if o.Quality <= 0 || o.Quality > 1 {
		o.Quality = 0.7
	}
	if o.MIMEType == "" {
		o.MIMEType = MIMEJPEG
	}
	return o
}

// Processed is the embedded form of a compressed image.
type Processed struct {
	DataURL  string
	MIMEType string
	Width    int
	Height   int
}

// Base64 is the payload without the data URL prefix.
func (p Processed) Base64() string { return ExtractBase64(p.DataURL) }

// Compress decodes r, downsamples it to at most opts.MaxWidth (never
// upscaling) and re-encodes it.
func Compress(r io.Reader, opts Options) (Processed, error) {
	opts = opts.withDefaults()

	src, _, err := image.Decode(r)
	if err != nil {
		return Processed{}, domain.WrapError(domain.KindValidationFailed, "unsupported image", err)
	}
	b := src.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), opts.MaxWidth)
	if w == 0 || h == 0 {
		return Processed{}, domain.NewError(domain.KindValidationFailed, "unsupported image: empty bitmap")
	}

	var out image.Image = src
	if w != b.Dx() || h != b.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	switch opts.MIMEType {
	case MIMEJPEG:
		q := int(math.Round(opts.Quality * 100))
		if q < 1 {
			q = 1
		}
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: q})
	case MIMEPNG:
		err = png.Encode(&buf, out)
	default:
		return Processed{}, domain.Errorf(domain.KindValidationFailed, "unsupported target type %q", opts.MIMEType)
	}
	if err != nil {
		return Processed{}, domain.WrapError(domain.KindValidationFailed, "could not encode image", err)
	}

	return Processed{
		DataURL:  ToDataURL(base64.StdEncoding.EncodeToString(buf.Bytes()), opts.MIMEType),
		MIMEType: opts.MIMEType,
		Width:    w,
		Height:   h,
	}, nil
}

// TargetSize applies scale = min(1, maxWidth/width) and rounds.
func TargetSize(width, height, maxWidth int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	scale := math.Min(1, float64(maxWidth)/float64(width))
	return int(math.Round(float64(width) * scale)), int(math.Round(float64(height) * scale))
}

func (p Processed) String() string {
	return fmt.Sprintf("%s %dx%d (%d bytes)", p.MIMEType, p.Width, p.Height, len(p.DataURL))
}
