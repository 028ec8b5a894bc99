package export

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/middleware"
	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

func setupExportRouter(h *Handler, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(string(middleware.UserIDKey), userID)
		}
		c.Next()
	})
	r.GET("/itineraries/:id/export", h.ExportRendered)
	r.POST("/itineraries/:id/export", h.ExportUploaded)
	return r
}

func TestExportRenderedStreamsPDF(t *testing.T) {
	itineraries := new(MockItineraries)
	svc := NewService(zap.NewNop(), WithClock(func() time.Time { return fixedNow }))
	h := NewHandler(svc, itineraries, nil, zap.NewNop())

	it := newTestItinerary()
	itineraries.On("GetItinerary", mock.Anything, it.UserID, it.ID).Return(&it, nil)

	w := httptest.NewRecorder()
	setupExportRouter(h, it.UserID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/itineraries/"+it.ID.String()+"/export", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Weekend_in_Navi_Mumbai.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Document-Pages"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestExportUploadedMultipart(t *testing.T) {
	itineraries := new(MockItineraries)
	svc := NewService(zap.NewNop())
	h := NewHandler(svc, itineraries, nil, zap.NewNop())

	it := newTestItinerary()
	itineraries.On("GetItinerary", mock.Anything, it.UserID, it.ID).Return(&it, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "capture.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t, 210, 561))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/itineraries/"+it.ID.String()+"/export", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	setupExportRouter(h, it.UserID).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-Document-Pages"))
	assert.Equal(t, 3, pageCount(w.Body.Bytes()))
}

func TestExportUploadedRawBody(t *testing.T) {
	itineraries := new(MockItineraries)
	h := NewHandler(NewService(zap.NewNop()), itineraries, nil, zap.NewNop())

	it := newTestItinerary()
	itineraries.On("GetItinerary", mock.Anything, it.UserID, it.ID).Return(&it, nil)

	req := httptest.NewRequest(http.MethodPost, "/itineraries/"+it.ID.String()+"/export", bytes.NewReader(pngBytes(t, 100, 50)))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	setupExportRouter(h, it.UserID).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Document-Pages"))
}

func TestExportHandlerErrors(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	tests := []struct {
		name       string
		user       uuid.UUID
		method     string
		path       string
		body       []byte
		setup      func(m *MockItineraries, svc *MockService)
		wantStatus int
		wantMsg    string
	}{
		{
			name: "unauthenticated", user: uuid.Nil, method: http.MethodGet,
			path: "/itineraries/" + id.String() + "/export", setup: func(*MockItineraries, *MockService) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "bad id", user: userID, method: http.MethodGet,
			path: "/itineraries/not-a-uuid/export", setup: func(*MockItineraries, *MockService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "not found", user: userID, method: http.MethodGet,
			path: "/itineraries/" + id.String() + "/export",
			setup: func(m *MockItineraries, _ *MockService) {
				m.On("GetItinerary", mock.Anything, userID, id).Return(nil, models.ErrNotFound)
			},
			wantStatus: http.StatusNotFound, wantMsg: "Itinerary not found.",
		},
		{
			name: "garbage upload", user: userID, method: http.MethodPost,
			path: "/itineraries/" + id.String() + "/export", body: []byte("garbage"),
			setup: func(m *MockItineraries, _ *MockService) {
				m.On("GetItinerary", mock.Anything, userID, id).Return(&models.Itinerary{ID: id, UserID: userID}, nil)
			},
			wantStatus: http.StatusUnprocessableEntity, wantMsg: "Failed to generate PDF. Please try again.",
		},
		{
			name: "service failure", user: userID, method: http.MethodGet,
			path: "/itineraries/" + id.String() + "/export",
			setup: func(m *MockItineraries, svc *MockService) {
				m.On("GetItinerary", mock.Anything, userID, id).Return(&models.Itinerary{ID: id, UserID: userID}, nil)
				svc.On("Export", mock.Anything, mock.Anything, mock.Anything).Return(nil, models.ErrCaptureFailure)
			},
			wantStatus: http.StatusUnprocessableEntity, wantMsg: "Failed to generate PDF. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			itineraries := new(MockItineraries)
			svc := new(MockService)
			tt.setup(itineraries, svc)
			h := NewHandler(svc, itineraries, nil, zap.NewNop())

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewReader(tt.body))
			w := httptest.NewRecorder()
			setupExportRouter(h, tt.user).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				assert.Contains(t, w.Body.String(), tt.wantMsg)
			}
			itineraries.AssertExpectations(t)
			svc.AssertExpectations(t)
		})
	}
}
