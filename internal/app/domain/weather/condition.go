package weather

import "github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"

// Categorize maps an OpenWeatherMap condition code to its group. Codes
// outside the documented ranges (1xx, 4xx and anything below 200) are unknown.
func Categorize(code int) models.WeatherCondition {
	switch {
	case code >= 200 && code < 300:
		return models.ConditionThunderstorm
	case code >= 300 && code < 400:
		return models.ConditionDrizzle
	case code >= 500 && code < 600:
		return models.ConditionRain
	case code >= 600 && code < 700:
		return models.ConditionSnow
	case code >= 700 && code < 800:
		return models.ConditionAtmosphere
	case code == 800:
		return models.ConditionClear
	case code > 800:
		return models.ConditionClouds
	default:
		return models.ConditionUnknown
	}
}
