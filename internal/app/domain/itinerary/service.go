package itinerary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/mapview"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/observability/metrics"
)

// DefaultListLimit caps list pages when the caller does not.
const DefaultListLimit = 50

// ImageResolver supplies a fallback image for a free-text location.
type ImageResolver interface {
	Image(location string) string
}

// MapRenderer turns itinerary days into a rendered map view.
type MapRenderer interface {
	Render(ctx context.Context, surface mapview.Surface, days []models.ItineraryDay) (models.MapView, error)
}

type Service interface {
	CreateItinerary(ctx context.Context, userID uuid.UUID, req models.SaveItineraryRequest) (*models.Itinerary, error)
	GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, limit, offset uint64) ([]models.ItinerarySummary, error)
	UpdateItinerary(ctx context.Context, userID, id uuid.UUID, req models.SaveItineraryRequest) (*models.Itinerary, error)
	DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error
	RenderMap(ctx context.Context, userID, id uuid.UUID, surface mapview.Surface) (models.MapView, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	repo     Repository
	images   ImageResolver
	renderer MapRenderer
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, images ImageResolver, renderer MapRenderer, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		images:   images,
		renderer: renderer,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// normalize validates req and returns its days sorted by day number, with
// whitespace trimmed and missing activity images filled from the fallback
// table. The input is not modified.
func (s *ServiceImpl) normalize(req models.SaveItineraryRequest) (models.SaveItineraryRequest, error) {
	out := req
	out.Title = strings.TrimSpace(req.Title)
	out.Destination = strings.TrimSpace(req.Destination)
	if out.Title == "" {
		return out, fmt.Errorf("title is required: %w", models.ErrValidation)
	}

	seen := make(map[int]struct{}, len(req.Days))
	days := make([]models.ItineraryDay, len(req.Days))
	for i, d := range req.Days {
		if d.Day < 1 {
			return out, fmt.Errorf("day %d must be at least 1: %w", d.Day, models.ErrValidation)
		}
		if _, dup := seen[d.Day]; dup {
			return out, fmt.Errorf("day %d appears more than once: %w", d.Day, models.ErrValidation)
		}
		seen[d.Day] = struct{}{}

		activities := make([]models.ItineraryActivity, len(d.Activities))
		for j, a := range d.Activities {
			a.Time = strings.TrimSpace(a.Time)
			a.Title = strings.TrimSpace(a.Title)
			a.Location = strings.TrimSpace(a.Location)
			if a.Title == "" {
				return out, fmt.Errorf("day %d activity %d has no title: %w", d.Day, j+1, models.ErrValidation)
			}
			if a.Image == "" && s.images != nil {
				a.Image = s.images.Image(a.Location)
			}
			activities[j] = a
		}
		days[i] = models.ItineraryDay{Day: d.Day, Activities: activities}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	out.Days = days
	return out, nil
}

func (s *ServiceImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, req models.SaveItineraryRequest) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "CreateItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "CreateItinerary"), zap.String("userID", userID.String()))

	req, err := s.normalize(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid itinerary")
		return nil, err
	}

	now := s.now()
	it := models.Itinerary{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		Days:        req.Days,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateItinerary(ctx, it); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create itinerary")
		l.Error("Failed to create itinerary", zap.Error(err))
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}

	span.SetAttributes(attribute.String("itinerary.id", it.ID.String()))
	l.Info("Itinerary created", zap.String("itineraryID", it.ID.String()), zap.Int("days", len(it.Days)))
	return &it, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	it, err := s.repo.GetItinerary(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get itinerary")
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("Failed to get itinerary", zap.String("method", "GetItinerary"), zap.String("itineraryID", id.String()), zap.Error(err))
		}
		return nil, err
	}
	return it, nil
}

func (s *ServiceImpl) ListItineraries(ctx context.Context, userID uuid.UUID, limit, offset uint64) ([]models.ItinerarySummary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	if limit == 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	summaries, err := s.repo.ListItineraries(ctx, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list itineraries")
		s.logger.Error("Failed to list itineraries", zap.String("method", "ListItineraries"), zap.Error(err))
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	if summaries == nil {
		summaries = []models.ItinerarySummary{}
	}
	return summaries, nil
}

func (s *ServiceImpl) UpdateItinerary(ctx context.Context, userID, id uuid.UUID, req models.SaveItineraryRequest) (*models.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "UpdateItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "UpdateItinerary"), zap.String("itineraryID", id.String()))

	req, err := s.normalize(req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	existing, err := s.repo.GetItinerary(ctx, userID, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	existing.Title = req.Title
	existing.Destination = req.Destination
	existing.StartDate = req.StartDate
	existing.Days = req.Days
	existing.UpdatedAt = s.now()

	if err := s.repo.UpdateItinerary(ctx, *existing); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update itinerary")
		if !errors.Is(err, models.ErrNotFound) {
			l.Error("Failed to update itinerary", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	l.Info("Itinerary updated", zap.Int("days", len(existing.Days)))
	return existing, nil
}

func (s *ServiceImpl) DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()

	if err := s.repo.DeleteItinerary(ctx, userID, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete itinerary")
		return err
	}
	s.logger.Info("Itinerary deleted", zap.String("method", "DeleteItinerary"), zap.String("itineraryID", id.String()))
	return nil
}

// RenderMap runs one map session for the itinerary on surface.
func (s *ServiceImpl) RenderMap(ctx context.Context, userID, id uuid.UUID, surface mapview.Surface) (models.MapView, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "RenderMap", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "RenderMap"), zap.String("itineraryID", id.String()))

	it, err := s.GetItinerary(ctx, userID, id)
	if err != nil {
		return models.MapView{}, err
	}

	view, err := s.renderer.Render(ctx, surface, it.Days)
	if err != nil {
		outcome := "errored"
		switch {
		case errors.Is(err, models.ErrRenderSurfaceMissing):
			outcome = "surface_missing"
		case errors.Is(err, models.ErrDependencyLoad):
			outcome = "dependency_failure"
		case ctx.Err() != nil:
			outcome = "cancelled"
		}
		metrics.RecordMapRender(ctx, outcome, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "map render failed")
		l.Warn("Map render failed", zap.String("outcome", outcome), zap.Error(err))
		return models.MapView{}, err
	}

	for _, m := range view.Markers {
		metrics.RecordResolution(ctx, m.Match)
	}
	metrics.RecordMapRender(ctx, "rendered", len(view.Markers))
	span.SetAttributes(attribute.Int("map.markers", len(view.Markers)), attribute.Bool("map.fitted", view.Bounds != nil))
	l.Debug("Map rendered", zap.Int("markers", len(view.Markers)))
	return view, nil
}
