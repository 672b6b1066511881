// Package http arma y corre el servidor del servicio.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/baggiolabs/baggio/internal/observability/logger"
)

// Serve corre el servidor hasta que ctx se cancele; entonces hace shutdown
// graceful con un timeout corto.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log := logger.Named("http")
	log.Info("server listening", logger.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
