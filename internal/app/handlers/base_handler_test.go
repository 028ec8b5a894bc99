package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{fmt.Errorf("days: %w", models.ErrValidation), http.StatusBadRequest},
		{models.ErrCaptureFailure, http.StatusUnprocessableEntity},
		{models.ErrRenderSurfaceMissing, http.StatusUnprocessableEntity},
		{models.ErrDependencyLoad, http.StatusServiceUnavailable},
		{context.Canceled, StatusClientClosedRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
