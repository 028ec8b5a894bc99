package export

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/observability/metrics"
)

// Service turns itineraries into paginated PDF documents.
type Service interface {
	Export(ctx context.Context, itinerary models.Itinerary, capturer Capturer) (*models.ExportedDocument, error)
}

var _ Service = (*ServiceImpl)(nil)

// ServiceImpl captures, paginates and renders the document, then stores it
// and announces it when a store and a publisher are configured.
type ServiceImpl struct {
	store  DocumentStore
	events Publisher
	logger *zap.Logger
	now    func() time.Time
}

// Option configures ServiceImpl.
type Option func(*ServiceImpl)

// WithStore persists every document.
func WithStore(store DocumentStore) Option {
	return func(s *ServiceImpl) { s.store = store }
}

// WithPublisher announces every document.
func WithPublisher(p Publisher) Option {
	return func(s *ServiceImpl) { s.events = p }
}

// WithClock overrides the time source used for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(s *ServiceImpl) { s.now = now }
}

func NewService(logger *zap.Logger, opts ...Option) *ServiceImpl {
	s := &ServiceImpl{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ServiceImpl) Export(ctx context.Context, itinerary models.Itinerary, capturer Capturer) (*models.ExportedDocument, error) {
	ctx, span := otel.Tracer("ExportService").Start(ctx, "Export", trace.WithAttributes(
		attribute.String("itinerary.id", itinerary.ID.String()),
		attribute.Int("itinerary.days", len(itinerary.Days)),
	))
	defer span.End()
	l := s.logger.With(zap.String("method", "Export"), zap.String("itineraryID", itinerary.ID.String()))

	doc, err := s.render(ctx, itinerary, capturer)
	if err != nil {
		outcome := "failed"
		if ctx.Err() != nil {
			outcome = "cancelled"
		}
		metrics.RecordExport(ctx, outcome, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "export failed")
		l.Warn("Export failed", zap.Error(err))
		return nil, err
	}

	// Storage and events are best effort: the caller still gets the document.
	if s.store != nil {
		key := objectKey(itinerary, doc)
		location, err := s.store.Save(ctx, key, doc.Data)
		if err != nil {
			span.RecordError(err)
			l.Warn("Failed to store exported document", zap.String("key", key), zap.Error(err))
		} else {
			doc.Location = location
		}
	}
	if s.events != nil {
		event := models.ExportEvent{
			ItineraryID: itinerary.ID,
			UserID:      itinerary.UserID,
			Name:        doc.Name,
			Pages:       doc.Pages,
			Location:    doc.Location,
			CreatedAt:   doc.CreatedAt,
		}
		if err := s.events.PublishExport(ctx, event); err != nil {
			span.RecordError(err)
			l.Warn("Failed to publish export event", zap.Error(err))
		}
	}

	metrics.RecordExport(ctx, "exported", doc.Pages)
	span.SetAttributes(attribute.Int("document.pages", doc.Pages), attribute.Int("document.bytes", len(doc.Data)))
	span.SetStatus(codes.Ok, "")
	l.Info("Itinerary exported", zap.String("name", doc.Name), zap.Int("pages", doc.Pages), zap.String("location", doc.Location))
	return doc, nil
}

func (s *ServiceImpl) render(ctx context.Context, itinerary models.Itinerary, capturer Capturer) (*models.ExportedDocument, error) {
	if capturer == nil {
		return nil, fmt.Errorf("no capturer: %w", models.ErrCaptureFailure)
	}
	capture, err := capturer.Capture(ctx, itinerary)
	if err != nil {
		return nil, err
	}
	// A teardown during the capture means no page is ever created.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	placements, err := Paginate(capture.Width, capture.Height)
	if err != nil {
		return nil, err
	}
	createdAt := s.now()
	data, err := RenderPDF(ctx, itinerary.Title, createdAt, capture, placements)
	if err != nil {
		return nil, err
	}
	return &models.ExportedDocument{
		ItineraryID: itinerary.ID,
		Name:        DocumentName(itinerary.Title),
		Pages:       len(placements),
		Data:        data,
		CreatedAt:   createdAt,
	}, nil
}

func objectKey(itinerary models.Itinerary, doc *models.ExportedDocument) string {
	return fmt.Sprintf("itineraries/%s/%s/%d-%s", itinerary.UserID, itinerary.ID, doc.CreatedAt.Unix(), doc.Name)
}
