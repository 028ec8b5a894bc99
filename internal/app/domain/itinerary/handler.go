package itinerary

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/mapview"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/handlers"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Viewport used when the client does not report its map container size.
const (
	DefaultMapWidth  = 1024
	DefaultMapHeight = 768
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(logger), service: service}
}

func (h *Handler) bindRequest(c *gin.Context) (models.SaveItineraryRequest, bool) {
	var req models.SaveItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, fmt.Errorf("%v: %w", err, models.ErrValidation))
		return req, false
	}
	return req, true
}

func (h *Handler) CreateItinerary(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	it, err := h.service.CreateItinerary(c.Request.Context(), userID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.Header("Location", "/api/v1/itineraries/"+it.ID.String())
	c.JSON(http.StatusCreated, it)
}

func (h *Handler) GetItinerary(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	it, err := h.service.GetItinerary(c.Request.Context(), userID, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) ListItineraries(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	limit, err1 := queryUint(c, "limit")
	offset, err2 := queryUint(c, "offset")
	if err1 != nil || err2 != nil {
		h.Error(c, models.ErrBadRequest)
		return
	}
	summaries, err := h.service.ListItineraries(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"itineraries": summaries})
}

func (h *Handler) UpdateItinerary(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}
	it, err := h.service.UpdateItinerary(c.Request.Context(), userID, id, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) DeleteItinerary(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteItinerary(c.Request.Context(), userID, id); err != nil {
		h.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetMap renders the itinerary's map view for a container of width x height
// pixels. A reported size of zero means the container is missing.
func (h *Handler) GetMap(c *gin.Context) {
	userID, ok := h.UserID(c)
	if !ok {
		return
	}
	id, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	width, err1 := queryInt(c, "width", DefaultMapWidth)
	height, err2 := queryInt(c, "height", DefaultMapHeight)
	if err1 != nil || err2 != nil {
		h.Error(c, models.ErrBadRequest)
		return
	}

	view, err := h.service.RenderMap(c.Request.Context(), userID, id, mapview.Viewport{Width: width, Height: height})
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func queryUint(c *gin.Context, key string) (uint64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
