// Package server exposes read-only status endpoints over HTTP.
package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RouteRegistrar accepts GET routes
type RouteRegistrar interface {
	RegisterGet(path string, h http.HandlerFunc)
}

// Router is a RouteRegistrar backed by gorilla/mux
type Router struct {
	mux    *mux.Router
	logger zerolog.Logger
}

// NewRouter creates an empty router
func NewRouter(logger zerolog.Logger) *Router {
	return &Router{
		mux:    mux.NewRouter(),
		logger: logger.With().Str("component", "http").Logger(),
	}
}

// RegisterGet registers h for GET requests to path
func (r *Router) RegisterGet(path string, h http.HandlerFunc) {
	r.mux.HandleFunc(path, h).Methods(http.MethodGet)
	r.logger.Debug().Str("path", path).Msg("Registered route")
}

// Handler returns the router wrapped with panic recovery and request logging
func (r *Router) Handler() http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{r.logger}),
		handlers.PrintRecoveryStack(false),
	)
	return handlers.CustomLoggingHandler(io.Discard, recovery(r.mux), r.logRequest)
}

func (r *Router) logRequest(_ io.Writer, params handlers.LogFormatterParams) {
	r.logger.Debug().
		Str("method", params.Request.Method).
		Str("path", params.URL.Path).
		Int("status", params.StatusCode).
		Int("size", params.Size).
		Msg("Request")
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
