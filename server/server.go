// Package server is the dashboard API: rendered views, operator actions and
// the event stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/pipeline"
)

const shutdownTimeout = 5 * time.Second

// Server serves the dashboard API for one pipeline.
type Server struct {
	conf *config.Config
	pipe *pipeline.Pipeline
	hub  *Hub
}

// New creates a Server. hub must be the pipeline's publisher.
func New(conf *config.Config, pipe *pipeline.Pipeline, hub *Hub) *Server {
	return &Server{conf: conf, pipe: pipe, hub: hub}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/physical", s.getPhysical)
		r.Get("/virtual", s.getVirtual)
		r.Get("/networks", s.listNetworks)
		r.Put("/networks/selected", s.selectNetwork)
		r.Post("/links/{action:up|down}", s.toggleLink)
		r.Post("/ping", s.startPing)
		r.Delete("/ping", s.stopPing)
		r.Post("/pause", s.pause)
		r.Post("/resume", s.resume)
		r.Put("/flowtable", s.selectFlowtable)
		r.Get("/flowtable", s.getFlowtable)
		r.Get("/highlight/{elementID}", s.highlight)
		r.Get("/stats", s.stats)
		r.Get("/config", s.viewerConfig)
		r.Handle("/events", s.hub)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Serve listens on conf.Listen until ctx is done. Open requests, event
// streams included, see their context canceled on shutdown.
func (s *Server) Serve(ctx context.Context) error {
	logger := log.WithFunc("server.Serve")
	srv := &http.Server{
		Addr:              s.conf.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof(ctx, "dashboard API listening on %s", s.conf.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve %s: %w", s.conf.Listen, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
