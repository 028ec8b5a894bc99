package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/mapview"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Capture is a rasterized image of an itinerary.
type Capture struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Capturer produces the image that gets paginated.
type Capturer interface {
	Capture(ctx context.Context, itinerary models.Itinerary) (Capture, error)
}

// MaxCapturePixels bounds the decoded size of any capture, uploaded or drawn.
const MaxCapturePixels = 64 << 20

func checkCaptureSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image %dx%d: %w", width, height, models.ErrCaptureFailure)
	}
	if int64(width)*int64(height) > MaxCapturePixels {
		return fmt.Errorf("image %dx%d exceeds %d pixels: %w", width, height, MaxCapturePixels, models.ErrCaptureFailure)
	}
	_, err := scaledHeight(width, height)
	return err
}

// DecodeCapture inspects a client supplied PNG or JPEG. Only the header is
// read, so the declared size is checked before anything is decoded.
func DecodeCapture(data []byte) (Capture, error) {
	if len(data) == 0 {
		return Capture{}, fmt.Errorf("empty image: %w", models.ErrCaptureFailure)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Capture{}, fmt.Errorf("decode image: %v: %w", err, models.ErrCaptureFailure)
	}
	var pdfFormat string
	switch format {
	case "png":
		pdfFormat = "PNG"
	case "jpeg":
		pdfFormat = "JPG"
	default:
		return Capture{}, fmt.Errorf("unsupported image format %q: %w", format, models.ErrCaptureFailure)
	}
	if err := checkCaptureSize(cfg.Width, cfg.Height); err != nil {
		return Capture{}, err
	}
	return Capture{Data: data, Format: pdfFormat, Width: cfg.Width, Height: cfg.Height}, nil
}

// StaticCapture returns a capture that was taken elsewhere, typically
// uploaded by the browser.
type StaticCapture struct {
	Image Capture
}

func (s StaticCapture) Capture(ctx context.Context, _ models.Itinerary) (Capture, error) {
	if err := ctx.Err(); err != nil {
		return Capture{}, err
	}
	if len(s.Image.Data) == 0 {
		return Capture{}, fmt.Errorf("no uploaded image: %w", models.ErrCaptureFailure)
	}
	return s.Image, nil
}

// RasterCapturer draws the itinerary server side: a title, then one colored
// band per day followed by its activities.
type RasterCapturer struct {
	// Width is the logical width in points; the bitmap is Scale times larger.
	Width int
	Scale float64
}

const (
	lineHeight     = 16.0
	margin         = 24.0
	dayHeaderSpace = 34.0
	activitySpace  = 64.0
	maxLineRunes   = 80
)

// NewRasterCapturer returns a capturer producing 1240px wide images.
func NewRasterCapturer() *RasterCapturer {
	return &RasterCapturer{Width: 620, Scale: 2}
}

func (r *RasterCapturer) Capture(ctx context.Context, itinerary models.Itinerary) (Capture, error) {
	if err := ctx.Err(); err != nil {
		return Capture{}, err
	}
	if r.Width <= 0 || r.Scale <= 0 {
		return Capture{}, fmt.Errorf("raster size %d@%.1f: %w", r.Width, r.Scale, models.ErrCaptureFailure)
	}

	height := margin*2 + 2*lineHeight
	for _, d := range itinerary.Days {
		height += dayHeaderSpace + float64(len(d.Activities))*activitySpace
	}

	w := int(float64(r.Width) * r.Scale)
	h := int(height * r.Scale)
	if err := checkCaptureSize(w, h); err != nil {
		return Capture{}, err
	}
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(r.Scale, r.Scale)
	dc.SetFontFace(basicfont.Face7x13)

	y := margin + lineHeight
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawString(truncate(itinerary.Title), margin, y)
	if itinerary.Destination != "" {
		y += lineHeight
		dc.SetRGB(0.4, 0.4, 0.4)
		dc.DrawString(truncate(itinerary.Destination), margin, y)
	}
	y += lineHeight

	for _, day := range itinerary.Days {
		if err := ctx.Err(); err != nil {
			return Capture{}, err
		}
		dc.SetHexColor(mapview.DayColor(day.Day))
		dc.DrawRectangle(margin, y, float64(r.Width)-2*margin, dayHeaderSpace-8)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawString(fmt.Sprintf("Day %d", day.Day), margin+8, y+17)
		y += dayHeaderSpace

		for _, a := range day.Activities {
			dc.SetRGB(0.1, 0.1, 0.1)
			dc.DrawString(truncate(a.Time+"  "+a.Title), margin+8, y+lineHeight)
			dc.SetRGB(0.35, 0.35, 0.35)
			dc.DrawString(truncate(a.Location), margin+8, y+2*lineHeight)
			dc.DrawString(truncate(a.Description), margin+8, y+3*lineHeight)
			y += activitySpace
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return Capture{}, fmt.Errorf("encode png: %v: %w", err, models.ErrCaptureFailure)
	}
	return Capture{Data: buf.Bytes(), Format: "PNG", Width: w, Height: h}, nil
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxLineRunes {
		return s
	}
	return string(r[:maxLineRunes-3]) + "..."
}
