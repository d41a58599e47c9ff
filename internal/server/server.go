package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tartampluch/go-yeartiles/internal/config"
	"github.com/tartampluch/go-yeartiles/internal/engine"
	"github.com/tartampluch/go-yeartiles/internal/locale"
	"github.com/tartampluch/go-yeartiles/internal/profile"
)

// APIServer serves the profile, wallpaper and calendar endpoints.
// Requests share no mutable state besides the profile store.
type APIServer struct {
	Store   profile.Store
	Clock   engine.Clock
	Locales *locale.Bundle
	Addr    string

	router *mux.Router
}

// NewAPIServer wires the routes. A nil clock means the wall clock.
func NewAPIServer(store profile.Store, clock engine.Clock, locales *locale.Bundle) *APIServer {
	if clock == nil {
		clock = engine.RealClock{}
	}
	if locales == nil {
		locales = locale.Load()
	}
	s := &APIServer{
		Store:   store,
		Clock:   clock,
		Locales: locales,
	}
	s.router = s.routes()
	return s
}

func (s *APIServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(recoverMiddleware, requestIDMiddleware, observeMiddleware)

	r.HandleFunc(config.RouteImage, s.handleImage).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteCalendar, s.handleCalendar).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteProfile, s.handleCreateProfile).Methods(http.MethodPost)
	r.HandleFunc(config.RouteProfileByID, s.handleGetProfile).Methods(http.MethodGet)
	r.HandleFunc(config.RouteProfileByID, s.handleUpdateProfile).Methods(http.MethodPut)
	r.HandleFunc(config.RouteImportVCard, s.handleImportVCard).Methods(http.MethodPost)
	r.HandleFunc(config.RouteHealth, s.handleHealth).Methods(http.MethodGet)
	r.Handle(config.RouteMetrics, promhttp.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, config.CodeNotFound)
	})
	return r
}

// Handler exposes the router, for tests and the lambda adapter.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// Start listens on Addr and blocks until the context is cancelled.
func (s *APIServer) Start(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
			config.LogKeyBackend, s.Store.Kind(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}
