package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/observability/metrics"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/pkg/cache"
)

// DefaultPlace is looked up when no place is given.
const DefaultPlace = "Navi Mumbai"

// Placeholder is the reading shown when the provider cannot be reached.
func Placeholder(place string, now time.Time) models.WeatherReading {
	return models.WeatherReading{
		Location:    place,
		Code:        801,
		Description: "Partly Cloudy",
		Temperature: 28,
		Humidity:    65,
		WindSpeed:   12,
		Condition:   models.ConditionClouds,
		Placeholder: true,
		FetchedAt:   now,
	}
}

// Service returns the current weather for a place. On provider failure it
// returns the placeholder reading together with an error wrapping
// models.ErrDataFetch, so callers can show both.
type Service interface {
	Current(ctx context.Context, place string) (models.WeatherReading, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	provider Provider
	cache    cache.Cache[models.WeatherReading]
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(provider Provider, c cache.Cache[models.WeatherReading], logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		provider: provider,
		cache:    c,
		logger:   logger,
		now:      time.Now,
	}
}

func cacheKey(place string) string {
	return strings.ToLower(place)
}

func normalizePlace(place string) string {
	place = strings.Join(strings.Fields(place), " ")
	if place == "" {
		return DefaultPlace
	}
	return place
}

func (s *ServiceImpl) Current(ctx context.Context, place string) (models.WeatherReading, error) {
	place = normalizePlace(place)
	ctx, span := otel.Tracer("WeatherService").Start(ctx, "Current", trace.WithAttributes(
		attribute.String("weather.place", place),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "Current"), zap.String("place", place))

	if s.cache != nil {
		reading, found, err := s.cache.Get(ctx, cacheKey(place))
		if err != nil {
			l.Warn("Weather cache unavailable", zap.Error(err))
		} else if found {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			metrics.RecordWeather(ctx, "cache")
			return reading, nil
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	reading, err := s.fetch(ctx, place)
	if err != nil {
		// A cancelled request is not a provider failure.
		if ctx.Err() != nil {
			return models.WeatherReading{}, ctx.Err()
		}
		if !errors.Is(err, models.ErrDataFetch) {
			err = fmt.Errorf("%w: %v", models.ErrDataFetch, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "weather fetch failed")
		metrics.RecordWeatherFailure(ctx, "provider")
		metrics.RecordWeather(ctx, "placeholder")
		l.Warn("Weather fetch failed, using placeholder", zap.Error(err))
		return Placeholder(place, s.now()), err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(place), reading); err != nil {
			l.Warn("Failed to cache weather", zap.Error(err))
		}
	}
	metrics.RecordWeather(ctx, "provider")
	l.Debug("Weather fetched", zap.Int("code", reading.Code), zap.String("condition", string(reading.Condition)))
	return reading, nil
}

// Refresh fetches place from the provider and overwrites the cached reading.
func (s *ServiceImpl) Refresh(ctx context.Context, place string) error {
	place = normalizePlace(place)
	reading, err := s.fetch(ctx, place)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, cacheKey(place), reading)
}

func (s *ServiceImpl) fetch(ctx context.Context, place string) (models.WeatherReading, error) {
	if s.provider == nil {
		return models.WeatherReading{}, fmt.Errorf("no weather provider: %w", models.ErrDataFetch)
	}
	reading, err := s.provider.Current(ctx, place)
	if err != nil {
		return models.WeatherReading{}, err
	}
	reading.Location = place
	reading.Condition = Categorize(reading.Code)
	// A Caser is stateful, so one is created per call.
	reading.Description = cases.Title(language.English).String(reading.Description)
	reading.FetchedAt = s.now()
	return reading, nil
}
