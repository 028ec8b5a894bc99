package models

import (
	"time"

	"github.com/google/uuid"
)

// ItineraryActivity is a single stop within a day.
type ItineraryActivity struct {
	Time        string `json:"time" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category"`
}

// ItineraryDay groups the activities of one day. Day is 1-based.
type ItineraryDay struct {
	Day        int                 `json:"day" binding:"required,gte=1"`
	Activities []ItineraryActivity `json:"activities" binding:"dive"`
}

// Itinerary is the persisted trip owned by a user.
type Itinerary struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"user_id"`
	Title       string         `json:"title"`
	Destination string         `json:"destination"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	Days        []ItineraryDay `json:"days"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ItinerarySummary is the list view of an itinerary.
type ItinerarySummary struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Destination   string     `json:"destination"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	DayCount      int        `json:"day_count"`
	ActivityCount int        `json:"activity_count"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SaveItineraryRequest is the payload for create and update.
type SaveItineraryRequest struct {
	Title       string         `json:"title" binding:"required,max=200"`
	Destination string         `json:"destination" binding:"max=200"`
	StartDate   *time.Time     `json:"start_date,omitempty"`
	Days        []ItineraryDay `json:"days" binding:"dive"`
}

// ActivityCount returns the number of activities across all days.
func (i Itinerary) ActivityCount() int {
	n := 0
	for _, d := range i.Days {
		n += len(d.Activities)
	}
	return n
}
