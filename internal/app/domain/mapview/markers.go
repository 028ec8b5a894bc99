package mapview

import (
	"fmt"
	"strconv"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// Palette holds the day colors. Day d uses Palette[(d-1) mod len(Palette)].
var Palette = []string{
	"#FF6B6B",
	"#4ECDC4",
	"#45B7D1",
	"#96CEB4",
	"#FFA07A",
	"#DDA0DD",
	"#98D8C8",
}

// Resolver maps a free-text location to a coordinate.
type Resolver interface {
	Resolve(location string) (models.Coordinate, models.MatchKind)
}

// DayColor returns the palette entry for a 1-based day number.
func DayColor(day int) string {
	n := len(Palette)
	i := (day - 1) % n
	if i < 0 {
		i += n
	}
	return Palette[i]
}

// BuildMarkers resolves every activity and returns one marker per activity in
// itinerary order: day ascending as given, then activity order.
func BuildMarkers(days []models.ItineraryDay, resolver Resolver) []models.ResolvedMarker {
	markers := make([]models.ResolvedMarker, 0)
	for dayIndex, day := range days {
		color := DayColor(day.Day)
		for _, activity := range day.Activities {
			coord, kind := resolver.Resolve(activity.Location)
			markers = append(markers, models.ResolvedMarker{
				Day:        day.Day,
				DayIndex:   dayIndex,
				Label:      strconv.Itoa(day.Day),
				Color:      color,
				Coordinate: coord,
				Popup:      popupText(day.Day, activity),
				Title:      activity.Title,
				Time:       activity.Time,
				Location:   activity.Location,
				Match:      kind,
			})
		}
	}
	return markers
}

func popupText(day int, a models.ItineraryActivity) string {
	return fmt.Sprintf("%s\n%s • Day %d\n%s", a.Title, a.Time, day, a.Location)
}
