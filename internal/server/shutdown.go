package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Shutdown stops srv, giving in-flight requests up to timeout to finish.
func Shutdown(srv *http.Server, timeout time.Duration, logger *zap.Logger) error {
	logger.Info("Shutting down gracefully", zap.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}
