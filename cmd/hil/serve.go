//go:build !test

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/allocator"
	"github.com/jbweber/homelab/hil/internal/api"
	"github.com/jbweber/homelab/hil/internal/config"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/switches/builtin"
)

func serve(ctx context.Context, cfg *config.Config) error {
	ctx = log.WithModule(ctx, "api")

	ds, err := cfg.InitializeDatabase()
	if err != nil {
		return err
	}
	defer ds.Close()

	alloc, err := allocator.New(cfg.AllocatorOptions())
	if err != nil {
		return err
	}
	registry, err := builtin.NewRegistry(cfg.SwitchDrivers)
	if err != nil {
		return err
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(ctx))
	r.Use(middleware.Recoverer)

	// Register API routes
	api.NewAPI(ds, alloc, registry).RegisterRoutes(r)

	// Health check endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "hil is running"); err != nil {
			log.G(r.Context()).WithError(err).Warn("failed to write response")
		}
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.G(ctx).WithField("addr", srv.Addr).Info("serving api")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.G(ctx).Info("api stopped")
	return nil
}

// requestLogger puts a request scoped logger in each request context and
// logs the outcome
func requestLogger(base context.Context) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := log.WithLogger(r.Context(), log.G(base).WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
			}))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			log.G(ctx).WithFields(logrus.Fields{
				"status":   ww.Status(),
				"duration": time.Since(start),
			}).Info("request served")
		})
	}
}
