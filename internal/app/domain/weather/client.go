package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// Provider fetches the current weather for a place name.
type Provider interface {
	Current(ctx context.Context, place string) (models.WeatherReading, error)
}

// ClientConfig configures the OpenWeatherMap client.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	CountryCode string
	Timeout     time.Duration
	RetryMax    int
}

// OpenWeatherClient calls the current weather API with retries on transient
// failures.
type OpenWeatherClient struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
	country string
}

func NewOpenWeatherClient(cfg ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	client := retryablehttp.NewClient()
	client.Logger = zapLeveledLogger{logger.Sugar().With(zap.String("component", "weather-http"))}
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &OpenWeatherClient{http: client, baseURL: baseURL, apiKey: cfg.APIKey, country: cfg.CountryCode}
}

type currentResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (c *OpenWeatherClient) Current(ctx context.Context, place string) (models.WeatherReading, error) {
	if c.apiKey == "" {
		return models.WeatherReading{}, fmt.Errorf("weather api key not configured: %w", models.ErrDataFetch)
	}
	q := place
	if c.country != "" {
		q = place + "," + c.country
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.WeatherReading{}, fmt.Errorf("build weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport errors embed the request URL.
		msg := strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED")
		return models.WeatherReading{}, fmt.Errorf("weather request: %s: %w", msg, models.ErrDataFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.WeatherReading{}, fmt.Errorf("weather provider returned %d: %s: %w", resp.StatusCode, body, models.ErrDataFetch)
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.WeatherReading{}, fmt.Errorf("decode weather response: %v: %w", err, models.ErrDataFetch)
	}

	reading := models.WeatherReading{
		Location:    place,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		reading.Code = payload.Weather[0].ID
		reading.Description = payload.Weather[0].Description
	}
	return reading, nil
}

// zapLeveledLogger adapts zap to retryablehttp.LeveledLogger. Request URLs
// carry the api key, so url fields are dropped and debug output is ignored.
type zapLeveledLogger struct {
	s *zap.SugaredLogger
}

func (l zapLeveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, withoutURL(kv)...) }
func (l zapLeveledLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, withoutURL(kv)...) }
func (l zapLeveledLogger) Debug(string, ...interface{})        {}
func (l zapLeveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, withoutURL(kv)...) }

func withoutURL(kv []interface{}) []interface{} {
	out := make([]interface{}, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok && key == "url" {
			continue
		}
		out = append(out, kv[i], kv[i+1])
	}
	return out
}

var _ retryablehttp.LeveledLogger = zapLeveledLogger{}
