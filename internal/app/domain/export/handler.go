package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/handlers"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// MaxUploadBytes caps client captures.
const MaxUploadBytes = 20 << 20

// ItineraryGetter loads an itinerary owned by a user.
type ItineraryGetter interface {
	GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error)
}

type Handler struct {
	*handlers.BaseHandler
	service     Service
	itineraries ItineraryGetter
	raster      Capturer
}

func NewHandler(service Service, itineraries ItineraryGetter, raster Capturer, logger *zap.Logger) *Handler {
	if raster == nil {
		raster = NewRasterCapturer()
	}
	return &Handler{
		BaseHandler: handlers.NewBaseHandler(logger),
		service:     service,
		itineraries: itineraries,
		raster:      raster,
	}
}

// ExportRendered rasterizes the itinerary on the server and streams the PDF.
func (h *Handler) ExportRendered(c *gin.Context) {
	itinerary, ok := h.load(c)
	if !ok {
		return
	}
	h.export(c, itinerary, h.raster)
}

// ExportUploaded paginates a PNG or JPEG captured by the client. The image is
// read from the "image" multipart field, or from the raw body otherwise.
func (h *Handler) ExportUploaded(c *gin.Context) {
	itinerary, ok := h.load(c)
	if !ok {
		return
	}
	data, err := readUpload(c)
	if err != nil {
		h.Error(c, err)
		return
	}
	capture, err := DecodeCapture(data)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.export(c, itinerary, StaticCapture{Image: capture})
}

func (h *Handler) load(c *gin.Context) (*models.Itinerary, bool) {
	userID, ok := h.UserID(c)
	if !ok {
		return nil, false
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return nil, false
	}
	itinerary, err := h.itineraries.GetItinerary(c.Request.Context(), userID, id)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return itinerary, true
}

func (h *Handler) export(c *gin.Context, itinerary *models.Itinerary, capturer Capturer) {
	doc, err := h.service.Export(c.Request.Context(), *itinerary, capturer)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	c.Header("X-Document-Pages", strconv.Itoa(doc.Pages))
	if doc.Location != "" {
		c.Header("X-Document-Location", doc.Location)
	}
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

func readUpload(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %v: %w", err, models.ErrCaptureFailure)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read upload: %v: %w", err, models.ErrCaptureFailure)
		}
		return data, nil
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %v: %w", err, models.ErrCaptureFailure)
	}
	return data, nil
}
