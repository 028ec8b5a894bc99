package export

import (
	"fmt"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Page geometry in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 295.0
	ContentStart = 30.0
)

// MaxPages bounds the length of an exported document.
const MaxPages = 50

// Placement positions the full captured image on one page. Everything
// outside the page is clipped, so successive placements reveal successive
// slices of the image.
type Placement struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Paginate slices an image of srcWidth x srcHeight pixels across A4 pages.
// The image is scaled to the page width and placed at ContentStart on page 1.
// Page k+1 (k >= 1) places it at -(PageHeight-ContentStart)*k; the offset
// depends only on the page index, never on the height still to be shown.
func Paginate(srcWidth, srcHeight int) ([]Placement, error) {
	imgHeight, err := scaledHeight(srcWidth, srcHeight)
	if err != nil {
		return nil, err
	}
	firstPageRoom := PageHeight - ContentStart

	placements := []Placement{{Page: 1, Y: ContentStart, Width: PageWidth, Height: imgHeight}}
	heightLeft := imgHeight - firstPageRoom
	for heightLeft > 0 {
		k := len(placements)
		placements = append(placements, Placement{
			Page:   k + 1,
			Y:      -firstPageRoom * float64(k),
			Width:  PageWidth,
			Height: imgHeight,
		})
		heightLeft -= PageHeight
	}
	return placements, nil
}

// scaledHeight returns the image height in millimetres once scaled to the
// page width, rejecting sizes that would not fit in MaxPages pages.
func scaledHeight(srcWidth, srcHeight int) (float64, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return 0, fmt.Errorf("image %dx%d: %w", srcWidth, srcHeight, models.ErrCaptureFailure)
	}
	imgHeight := float64(srcHeight) * PageWidth / float64(srcWidth)
	if imgHeight-(PageHeight-ContentStart) > PageHeight*(MaxPages-1) {
		return 0, fmt.Errorf("image %dx%d needs more than %d pages: %w", srcWidth, srcHeight, MaxPages, models.ErrCaptureFailure)
	}
	return imgHeight, nil
}
