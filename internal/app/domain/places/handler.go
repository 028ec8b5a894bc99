package places

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/observability/metrics"
)

type Handler struct {
	resolver *Resolver
	log      *zap.Logger
}

func NewHandler(resolver *Resolver, log *zap.Logger) *Handler {
	return &Handler{resolver: resolver, log: log}
}

// ListPlaces returns the points-of-interest catalogue.
func (h *Handler) ListPlaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"places": h.resolver.Places()})
}

type resolveResponse struct {
	Query      string            `json:"query"`
	Coordinate models.Coordinate `json:"coordinate"`
	Match      models.MatchKind  `json:"match"`
	ImageURL   string            `json:"image_url"`
}

// ResolvePlace resolves the q query parameter to a coordinate.
func (h *Handler) ResolvePlace(c *gin.Context) {
	q := c.Query("q")
	coord, kind := h.resolver.Resolve(q)
	metrics.RecordResolution(c.Request.Context(), kind)
	h.log.Debug("Resolved place", zap.String("query", q), zap.String("match", string(kind)))

	c.JSON(http.StatusOK, resolveResponse{
		Query:      q,
		Coordinate: coord,
		Match:      kind,
		ImageURL:   h.resolver.Image(q),
	})
}
