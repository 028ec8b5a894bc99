package models

import "time"

// WeatherCondition is the coarse category derived from a provider condition code.
type WeatherCondition string

const (
	ConditionThunderstorm WeatherCondition = "thunderstorm"
	ConditionDrizzle      WeatherCondition = "drizzle"
	ConditionRain         WeatherCondition = "rain"
	ConditionSnow         WeatherCondition = "snow"
	ConditionAtmosphere   WeatherCondition = "atmosphere"
	ConditionClear        WeatherCondition = "clear"
	ConditionClouds       WeatherCondition = "clouds"
	ConditionUnknown      WeatherCondition = "unknown"
)

// WeatherReading is the current weather at a place.
type WeatherReading struct {
	Location    string           `json:"location"`
	Code        int              `json:"code"`
	Description string           `json:"description"`
	Temperature float64          `json:"temperature"`
	Humidity    float64          `json:"humidity"`
	WindSpeed   float64          `json:"wind_speed"`
	Condition   WeatherCondition `json:"condition"`
	Placeholder bool             `json:"placeholder"`
	FetchedAt   time.Time        `json:"fetched_at"`
}
