package models

import (
	"time"

	"github.com/google/uuid"
)

// ExportedDocument is the generated PDF for an itinerary.
type ExportedDocument struct {
	ItineraryID uuid.UUID `json:"itinerary_id"`
	Name        string    `json:"name"`
	Pages       int       `json:"pages"`
	Location    string    `json:"location,omitempty"`
	Data        []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExportEvent is published after a document was generated.
type ExportEvent struct {
	ItineraryID uuid.UUID `json:"itinerary_id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Pages       int       `json:"pages"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
