package itinerary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/mapview"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/domain/places"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateItinerary(ctx context.Context, it models.Itinerary) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockRepository) GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

func (m *MockRepository) ListItineraries(ctx context.Context, userID uuid.UUID, limit, offset uint64) ([]models.ItinerarySummary, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ItinerarySummary), args.Error(1)
}

func (m *MockRepository) UpdateItinerary(ctx context.Context, it models.Itinerary) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}

func (m *MockRepository) DeleteItinerary(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, surface mapview.Surface, days []models.ItineraryDay) (models.MapView, error) {
	args := m.Called(ctx, surface, days)
	return args.Get(0).(models.MapView), args.Error(1)
}

var fixedTime = time.Date(2025, 4, 12, 8, 30, 0, 0, time.UTC)

func newTestService(repo Repository, renderer MapRenderer) *ServiceImpl {
	s := NewService(repo, places.NewResolver(places.WithSeed(7)), renderer, zap.NewNop())
	s.now = func() time.Time { return fixedTime }
	return s
}

func validRequest() models.SaveItineraryRequest {
	return models.SaveItineraryRequest{
		Title:       "  Coastal weekend ",
		Destination: " Navi Mumbai ",
		Days: []models.ItineraryDay{
			{Day: 2, Activities: []models.ItineraryActivity{
				{Time: "10:00", Title: "Flamingo watching", Location: "Flamingo Sanctuary"},
			}},
			{Day: 1, Activities: []models.ItineraryActivity{
				{Time: " 09:00", Title: "Temple visit ", Location: "Balaji Temple", Image: "https://example.com/own.jpg"},
				{Time: "18:00", Title: "Dinner", Location: "somewhere unknown"},
			}},
		},
	}
}

func TestService_CreateItinerary(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	user := uuid.New()

	var saved models.Itinerary
	repo.On("CreateItinerary", mock.Anything, mock.AnythingOfType("models.Itinerary")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(models.Itinerary) }).
		Return(nil)

	req := validRequest()
	it, err := svc.CreateItinerary(context.Background(), user, req)
	require.NoError(t, err)

	assert.Equal(t, user, it.UserID)
	assert.NotEqual(t, uuid.Nil, it.ID)
	assert.Equal(t, "Coastal weekend", it.Title)
	assert.Equal(t, "Navi Mumbai", it.Destination)
	assert.Equal(t, fixedTime, it.CreatedAt)
	assert.Equal(t, fixedTime, it.UpdatedAt)

	require.Len(t, it.Days, 2)
	assert.Equal(t, 1, it.Days[0].Day)
	assert.Equal(t, 2, it.Days[1].Day)
	assert.Equal(t, "09:00", it.Days[0].Activities[0].Time)
	assert.Equal(t, "Temple visit", it.Days[0].Activities[0].Title)
	assert.Equal(t, "https://example.com/own.jpg", it.Days[0].Activities[0].Image)
	assert.Equal(t, places.DefaultImage, it.Days[0].Activities[1].Image)
	assert.NotEqual(t, places.DefaultImage, it.Days[1].Activities[0].Image)
	assert.NotEmpty(t, it.Days[1].Activities[0].Image)

	assert.Equal(t, *it, saved)
	// The caller's request is left untouched.
	assert.Equal(t, 2, req.Days[0].Day)
	assert.Equal(t, "Temple visit ", req.Days[1].Activities[0].Title)
	repo.AssertExpectations(t)
}

func TestService_CreateItinerary_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SaveItineraryRequest)
	}{
		{name: "blank title", mutate: func(r *models.SaveItineraryRequest) { r.Title = "   " }},
		{name: "day zero", mutate: func(r *models.SaveItineraryRequest) { r.Days[0].Day = 0 }},
		{name: "duplicate day", mutate: func(r *models.SaveItineraryRequest) { r.Days[0].Day = 1 }},
		{name: "untitled activity", mutate: func(r *models.SaveItineraryRequest) { r.Days[1].Activities[1].Title = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, nil)
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.CreateItinerary(context.Background(), uuid.New(), req)
			assert.ErrorIs(t, err, models.ErrValidation)
			repo.AssertNotCalled(t, "CreateItinerary", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateItinerary_RepositoryError(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	repo.On("CreateItinerary", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := svc.CreateItinerary(context.Background(), uuid.New(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create itinerary")
}

func TestService_ListItineraries_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     uint64
		wantLimit uint64
	}{
		{name: "unset", limit: 0, wantLimit: DefaultListLimit},
		{name: "too large", limit: 500, wantLimit: DefaultListLimit},
		{name: "within range", limit: 5, wantLimit: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			svc := newTestService(repo, nil)
			user := uuid.New()
			repo.On("ListItineraries", mock.Anything, user, tt.wantLimit, uint64(3)).Return(nil, nil)

			got, err := svc.ListItineraries(context.Background(), user, tt.limit, 3)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateItinerary(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	user, id := uuid.New(), uuid.New()
	created := fixedTime.Add(-48 * time.Hour)

	repo.On("GetItinerary", mock.Anything, user, id).Return(&models.Itinerary{
		ID: id, UserID: user, Title: "Old", CreatedAt: created, UpdatedAt: created,
	}, nil)
	repo.On("UpdateItinerary", mock.Anything, mock.MatchedBy(func(it models.Itinerary) bool {
		return it.ID == id && it.Title == "Coastal weekend" && it.CreatedAt.Equal(created) && it.UpdatedAt.Equal(fixedTime)
	})).Return(nil)

	it, err := svc.UpdateItinerary(context.Background(), user, id, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, it.Days[0].Day)
	repo.AssertExpectations(t)
}

func TestService_UpdateItinerary_NotOwned(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	user, id := uuid.New(), uuid.New()
	repo.On("GetItinerary", mock.Anything, user, id).Return(nil, models.ErrNotFound)

	_, err := svc.UpdateItinerary(context.Background(), user, id, validRequest())
	assert.ErrorIs(t, err, models.ErrNotFound)
	repo.AssertNotCalled(t, "UpdateItinerary", mock.Anything, mock.Anything)
}

func TestService_DeleteItinerary(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil)
	user, id := uuid.New(), uuid.New()
	repo.On("DeleteItinerary", mock.Anything, user, id).Return(models.ErrNotFound).Once()
	repo.On("DeleteItinerary", mock.Anything, user, id).Return(nil).Once()

	assert.ErrorIs(t, svc.DeleteItinerary(context.Background(), user, id), models.ErrNotFound)
	assert.NoError(t, svc.DeleteItinerary(context.Background(), user, id))
	repo.AssertExpectations(t)
}

func TestService_RenderMap_WithViewEngine(t *testing.T) {
	repo := new(MockRepository)
	resolver := places.NewResolver(places.WithSeed(11))
	tiles := models.TileLayer{URLTemplate: "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", MaxZoom: 19}
	renderer := mapview.NewRenderer(mapview.NewViewEngine(tiles), resolver, mapview.Options{
		Center:    places.DefaultCenter,
		Zoom:      12,
		Padding:   50,
		TileLayer: tiles,
	}, zap.NewNop())
	svc := newTestService(repo, renderer)
	user, id := uuid.New(), uuid.New()

	repo.On("GetItinerary", mock.Anything, user, id).Return(&models.Itinerary{
		ID: id, UserID: user, Title: "Trip",
		Days: []models.ItineraryDay{
			{Day: 1, Activities: []models.ItineraryActivity{
				{Time: "09:00", Title: "Walk", Location: "Central Park"},
				{Time: "12:00", Title: "Mall", Location: "Inorbit Mall, Vashi"},
			}},
			{Day: 2, Activities: []models.ItineraryActivity{
				{Time: "10:00", Title: "Mystery", Location: "nowhere in particular"},
			}},
		},
	}, nil)

	view, err := svc.RenderMap(context.Background(), user, id, mapview.Viewport{Width: 800, Height: 600})
	require.NoError(t, err)
	require.Len(t, view.Markers, 3)
	assert.Equal(t, models.MatchExact, view.Markers[0].Match)
	assert.Equal(t, models.MatchFuzzy, view.Markers[1].Match)
	assert.Equal(t, models.MatchFallback, view.Markers[2].Match)
	assert.NotNil(t, view.Bounds)
	assert.Equal(t, 800, view.Width)
}

func TestService_RenderMap_Errors(t *testing.T) {
	user, id := uuid.New(), uuid.New()

	t.Run("not found skips render", func(t *testing.T) {
		repo := new(MockRepository)
		renderer := new(MockRenderer)
		svc := newTestService(repo, renderer)
		repo.On("GetItinerary", mock.Anything, user, id).Return(nil, models.ErrNotFound)

		_, err := svc.RenderMap(context.Background(), user, id, mapview.Viewport{Width: 10, Height: 10})
		assert.ErrorIs(t, err, models.ErrNotFound)
		renderer.AssertNotCalled(t, "Render", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("renderer failure is returned", func(t *testing.T) {
		repo := new(MockRepository)
		renderer := new(MockRenderer)
		svc := newTestService(repo, renderer)
		repo.On("GetItinerary", mock.Anything, user, id).Return(&models.Itinerary{ID: id, UserID: user}, nil)
		renderer.On("Render", mock.Anything, mock.Anything, mock.Anything).
			Return(models.MapView{}, models.ErrRenderSurfaceMissing)

		_, err := svc.RenderMap(context.Background(), user, id, mapview.Viewport{})
		assert.ErrorIs(t, err, models.ErrRenderSurfaceMissing)
	})
}
