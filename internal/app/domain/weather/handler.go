package weather

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/handlers"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

type Handler struct {
	*handlers.BaseHandler
	service Service
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{BaseHandler: handlers.NewBaseHandler(logger), service: service}
}

type weatherResponse struct {
	Reading models.WeatherReading `json:"reading"`
	Message string                `json:"message,omitempty"`
}

// GetWeather returns the current weather for the place query parameter.
// Provider failures still answer 200 with the placeholder reading and a
// message.
func (h *Handler) GetWeather(c *gin.Context) {
	reading, err := h.service.Current(c.Request.Context(), c.Query("place"))
	if err != nil && !reading.Placeholder {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, weatherResponse{Reading: reading, Message: models.UserMessage(err)})
}
