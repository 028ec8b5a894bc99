package itinerary

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/observability/metrics"
)

// DBTX is the part of *pgxpool.Pool the repository uses. pgxmock pools
// satisfy it too.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists itineraries. Every read and write is scoped to the
// owning user; another user's itinerary is reported as models.ErrNotFound.
type Repository interface {
	CreateItinerary(ctx context.Context, itinerary models.Itinerary) error
	GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error)
	ListItineraries(ctx context.Context, userID uuid.UUID, limit, offset uint64) ([]models.ItinerarySummary, error)
	UpdateItinerary(ctx context.Context, itinerary models.Itinerary) error
	DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error
}

var _ Repository = (*RepositoryImpl)(nil)

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool DBTX
	psql   sq.StatementBuilderType
}

func NewRepository(pgpool DBTX, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *RepositoryImpl) observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("db.operation", op), attribute.String("db.table", "itineraries"))
	m.DBQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		m.DBQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) CreateItinerary(ctx context.Context, itinerary models.Itinerary) (err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "CreateItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("itinerary.id", itinerary.ID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "insert", start, err) }(time.Now())

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	query, args, err := r.psql.Insert("itineraries").
		Columns("id", "user_id", "title", "destination", "start_date", "created_at", "updated_at").
		Values(itinerary.ID, itinerary.UserID, itinerary.Title, itinerary.Destination, itinerary.StartDate,
			itinerary.CreatedAt, itinerary.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert itinerary")
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}

	if err = r.insertDays(ctx, tx, itinerary.ID, itinerary.Days); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to insert days")
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	span.SetStatus(codes.Ok, "")
	return nil
}

// insertDays writes the day rows first, then every activity in one statement.
func (r *RepositoryImpl) insertDays(ctx context.Context, tx pgx.Tx, itineraryID uuid.UUID, days []models.ItineraryDay) error {
	if len(days) == 0 {
		return nil
	}

	dayInsert := r.psql.Insert("itinerary_days").Columns("itinerary_id", "day")
	activityInsert := r.psql.Insert("itinerary_activities").
		Columns("id", "itinerary_id", "day", "position", "time", "title", "location", "description", "image", "category")
	activities := 0
	for _, d := range days {
		dayInsert = dayInsert.Values(itineraryID, d.Day)
		for pos, a := range d.Activities {
			activityInsert = activityInsert.Values(uuid.New(), itineraryID, d.Day, pos,
				a.Time, a.Title, a.Location, a.Description, a.Image, a.Category)
			activities++
		}
	}

	query, args, err := dayInsert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build day insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert itinerary days: %w", err)
	}
	if activities == 0 {
		return nil
	}

	query, args, err = activityInsert.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build activity insert: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert itinerary activities: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetItinerary(ctx context.Context, userID, id uuid.UUID) (_ *models.Itinerary, err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "select", start, err) }(time.Now())

	query, args, err := r.psql.
		Select("id", "user_id", "title", "destination", "start_date", "created_at", "updated_at").
		From("itineraries").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	var it models.Itinerary
	err = r.pgpool.QueryRow(ctx, query, args...).Scan(
		&it.ID, &it.UserID, &it.Title, &it.Destination, &it.StartDate, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("itinerary %s: %w", id, models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itinerary")
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}

	days, err := r.loadDays(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch days")
		return nil, err
	}
	it.Days = days
	span.SetAttributes(attribute.Int("itinerary.days", len(days)))
	return &it, nil
}

// loadDays returns the days ordered by day number, each with its activities
// ordered by time and then by saved position.
func (r *RepositoryImpl) loadDays(ctx context.Context, itineraryID uuid.UUID) ([]models.ItineraryDay, error) {
	query, args, err := r.psql.Select("day").From("itinerary_days").
		Where(sq.Eq{"itinerary_id": itineraryID}).OrderBy("day").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build day select: %w", err)
	}
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary days: %w", err)
	}
	dayNumbers, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to scan itinerary days: %w", err)
	}

	days := make([]models.ItineraryDay, len(dayNumbers))
	index := make(map[int]int, len(dayNumbers))
	for i, d := range dayNumbers {
		days[i] = models.ItineraryDay{Day: d, Activities: []models.ItineraryActivity{}}
		index[d] = i
	}
	if len(days) == 0 {
		return days, nil
	}

	query, args, err = r.psql.
		Select("day", "time", "title", "location", "description", "image", "category").
		From("itinerary_activities").
		Where(sq.Eq{"itinerary_id": itineraryID}).
		OrderBy("day", "time", "position").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build activity select: %w", err)
	}
	rows, err = r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day int
		var a models.ItineraryActivity
		if err := rows.Scan(&day, &a.Time, &a.Title, &a.Location, &a.Description, &a.Image, &a.Category); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary activity: %w", err)
		}
		i, ok := index[day]
		if !ok {
			r.logger.Warn("Activity references a missing day", zap.String("itineraryID", itineraryID.String()), zap.Int("day", day))
			continue
		}
		days[i].Activities = append(days[i].Activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating itinerary activities: %w", err)
	}
	return days, nil
}

func (r *RepositoryImpl) ListItineraries(ctx context.Context, userID uuid.UUID, limit, offset uint64) (_ []models.ItinerarySummary, err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "ListItineraries", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "select", start, err) }(time.Now())

	builder := r.psql.
		Select("i.id", "i.title", "i.destination", "i.start_date", "i.updated_at",
			"(SELECT COUNT(*) FROM itinerary_days d WHERE d.itinerary_id = i.id) AS day_count",
			"(SELECT COUNT(*) FROM itinerary_activities a WHERE a.itinerary_id = i.id) AS activity_count").
		From("itineraries i").
		Where(sq.Eq{"i.user_id": userID}).
		OrderBy("i.updated_at DESC", "i.id")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	if offset > 0 {
		builder = builder.Offset(offset)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list itineraries")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ItinerarySummary, error) {
		var s models.ItinerarySummary
		err := row.Scan(&s.ID, &s.Title, &s.Destination, &s.StartDate, &s.UpdatedAt, &s.DayCount, &s.ActivityCount)
		return s, err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to scan itineraries: %w", err)
	}
	span.SetAttributes(attribute.Int("itineraries.count", len(summaries)))
	return summaries, nil
}

func (r *RepositoryImpl) UpdateItinerary(ctx context.Context, itinerary models.Itinerary) (err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "UpdateItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("itinerary.id", itinerary.ID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "update", start, err) }(time.Now())

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			r.logger.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	query, args, err := r.psql.Update("itineraries").
		Set("title", itinerary.Title).
		Set("destination", itinerary.Destination).
		Set("start_date", itinerary.StartDate).
		Set("updated_at", itinerary.UpdatedAt).
		Where(sq.Eq{"id": itinerary.ID, "user_id": itinerary.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %s: %w", itinerary.ID, models.ErrNotFound)
	}

	// Activities cascade from their days.
	query, args, err = r.psql.Delete("itinerary_days").Where(sq.Eq{"itinerary_id": itinerary.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build day delete: %w", err)
	}
	if _, err = tx.Exec(ctx, query, args...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to clear itinerary days: %w", err)
	}
	if err = r.insertDays(ctx, tx, itinerary.ID, itinerary.Days); err != nil {
		span.RecordError(err)
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *RepositoryImpl) DeleteItinerary(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "DeleteItinerary", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("itinerary.id", id.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, "delete", start, err) }(time.Now())

	query, args, err := r.psql.Delete("itineraries").Where(sq.Eq{"id": id, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	tag, err := r.pgpool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete itinerary")
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("itinerary %s: %w", id, models.ErrNotFound)
	}
	return nil
}
