package itinerary

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *RepositoryImpl) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock, zap.NewNop())
}

func sampleRecord() models.Itinerary {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return models.Itinerary{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Weekend in Navi Mumbai",
		Destination: "Navi Mumbai",
		Days: []models.ItineraryDay{
			{Day: 1, Activities: []models.ItineraryActivity{
				{Time: "09:00", Title: "Sunrise walk", Location: "Palm Beach Road", Category: "outdoors"},
				{Time: "13:00", Title: "Lunch", Location: "Vashi", Category: "food"},
			}},
			{Day: 2, Activities: []models.ItineraryActivity{}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_CreateItinerary(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO itineraries (id,user_id,title,destination,start_date,created_at,updated_at)")).
		WithArgs(it.ID, it.UserID, it.Title, it.Destination, pgxmock.AnyArg(), it.CreatedAt, it.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO itinerary_days (itinerary_id,day)")).
		WithArgs(it.ID, 1, it.ID, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO itinerary_activities")).
		WithArgs(anyArgs(20)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateItinerary(context.Background(), it))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateItinerary_NoActivities(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()
	it.Days = []models.ItineraryDay{{Day: 1}}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO itineraries").WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO itinerary_days").WithArgs(it.ID, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateItinerary(context.Background(), it))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_CreateItinerary_RollsBackOnFailure(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO itineraries").WithArgs(anyArgs(7)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO itinerary_days").WithArgs(anyArgs(4)...).
		WillReturnError(errors.New("violates check constraint"))
	mock.ExpectRollback()

	err := repo.CreateItinerary(context.Background(), it)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert itinerary days")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetItinerary(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, title, destination, start_date, created_at, updated_at FROM itineraries WHERE id = $1 AND user_id = $2")).
		WithArgs(it.ID, it.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "destination", "start_date", "created_at", "updated_at"}).
			AddRow(it.ID, it.UserID, it.Title, it.Destination, nil, it.CreatedAt, it.UpdatedAt))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT day FROM itinerary_days WHERE itinerary_id = $1 ORDER BY day")).
		WithArgs(it.ID).
		WillReturnRows(pgxmock.NewRows([]string{"day"}).AddRow(1).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("FROM itinerary_activities WHERE itinerary_id = $1 ORDER BY day, time, position")).
		WithArgs(it.ID).
		WillReturnRows(pgxmock.NewRows([]string{"day", "time", "title", "location", "description", "image", "category"}).
			AddRow(1, "09:00", "Sunrise walk", "Palm Beach Road", "", "", "outdoors").
			AddRow(1, "13:00", "Lunch", "Vashi", "", "", "food"))

	got, err := repo.GetItinerary(context.Background(), it.UserID, it.ID)
	require.NoError(t, err)
	assert.Equal(t, it.Title, got.Title)
	assert.Nil(t, got.StartDate)
	require.Len(t, got.Days, 2)
	assert.Equal(t, 1, got.Days[0].Day)
	require.Len(t, got.Days[0].Activities, 2)
	assert.Equal(t, "Lunch", got.Days[0].Activities[1].Title)
	assert.Equal(t, 2, got.Days[1].Day)
	assert.Empty(t, got.Days[1].Activities)
	assert.NotNil(t, got.Days[1].Activities)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetItinerary_NoDaysSkipsActivityQuery(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectQuery("FROM itineraries").WithArgs(it.ID, it.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "destination", "start_date", "created_at", "updated_at"}).
			AddRow(it.ID, it.UserID, it.Title, it.Destination, nil, it.CreatedAt, it.UpdatedAt))
	mock.ExpectQuery("FROM itinerary_days").WithArgs(it.ID).
		WillReturnRows(pgxmock.NewRows([]string{"day"}))

	got, err := repo.GetItinerary(context.Background(), it.UserID, it.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetItinerary_NotFound(t *testing.T) {
	mock, repo := newMockRepository(t)
	id, other := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM itineraries").WithArgs(id, other).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "title", "destination", "start_date", "created_at", "updated_at"}))

	_, err := repo.GetItinerary(context.Background(), other, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetItinerary_QueryError(t *testing.T) {
	mock, repo := newMockRepository(t)
	id, user := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM itineraries").WithArgs(id, user).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetItinerary(context.Background(), user, id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListItineraries(t *testing.T) {
	mock, repo := newMockRepository(t)
	user := uuid.New()
	updated := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM itineraries i WHERE i.user_id = $1 ORDER BY i.updated_at DESC, i.id LIMIT 10 OFFSET 20")).
		WithArgs(user).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "destination", "start_date", "updated_at", "day_count", "activity_count"}).
			AddRow(first, "Beaches", "Navi Mumbai", nil, updated, 2, 5).
			AddRow(second, "Temples", "Kharghar", nil, updated.Add(-time.Hour), 1, 0))

	got, err := repo.ListItineraries(context.Background(), user, 10, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first, got[0].ID)
	assert.Equal(t, 2, got[0].DayCount)
	assert.Equal(t, 5, got[0].ActivityCount)
	assert.Equal(t, "Kharghar", got[1].Destination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateItinerary(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE itineraries SET title = $1, destination = $2, start_date = $3, updated_at = $4 WHERE id = $5 AND user_id = $6")).
		WithArgs(it.Title, it.Destination, pgxmock.AnyArg(), it.UpdatedAt, it.ID, it.UserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM itinerary_days WHERE itinerary_id = $1")).
		WithArgs(it.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("INSERT INTO itinerary_days").WithArgs(anyArgs(4)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec("INSERT INTO itinerary_activities").WithArgs(anyArgs(20)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateItinerary(context.Background(), it))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateItinerary_NotOwned(t *testing.T) {
	mock, repo := newMockRepository(t)
	it := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE itineraries").WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err := repo.UpdateItinerary(context.Background(), it)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteItinerary(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "missing or foreign", affected: 0, wantErr: models.ErrNotFound},
		{name: "database failure", execErr: errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepository(t)
			id, user := uuid.New(), uuid.New()

			exp := mock.ExpectExec(regexp.QuoteMeta("DELETE FROM itineraries WHERE id = $1 AND user_id = $2")).WithArgs(id, user)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))
			}

			err := repo.DeleteItinerary(context.Background(), user, id)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
