package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

const captureImageName = "itinerary-capture"

// RenderPDF lays out the title block and date stamp on page 1 and then one
// page per placement. ctx is checked before each page so a cancelled export
// stops appending pages.
func RenderPDF(ctx context.Context, title string, generatedAt time.Time, capture Capture, placements []Placement) ([]byte, error) {
	if len(placements) == 0 {
		return nil, fmt.Errorf("nothing to place: %w", models.ErrCaptureFailure)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	opts := fpdf.ImageOptions{ImageType: capture.Format, AllowNegativePosition: true}
	pdf.RegisterImageOptionsReader(captureImageName, opts, bytes.NewReader(capture.Data))

	for i, p := range placements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pdf.AddPage()
		// Pages after the first place the image at negative offsets; the
		// page clips the overflow.
		pdf.ImageOptions(captureImageName, p.X, p.Y, p.Width, p.Height, false, opts, 0, "")
		if i == 0 {
			writeTitleBlock(pdf, tr(title), generatedAt)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %v: %w", err, models.ErrCaptureFailure)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %v: %w", err, models.ErrCaptureFailure)
	}
	return buf.Bytes(), nil
}

func writeTitleBlock(pdf *fpdf.Fpdf, title string, generatedAt time.Time) {
	pdf.SetTextColor(33, 33, 33)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(10, 8)
	pdf.CellFormat(PageWidth-20, 9, title, "", 1, "L", false, 0, "")

	pdf.SetTextColor(110, 110, 110)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(10)
	pdf.CellFormat(PageWidth-20, 6, "Generated on "+generatedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
}
