// Package server exposes the two pipeline stages over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/hyperifyio/goenhance/internal/app"
	"github.com/hyperifyio/goenhance/internal/enhance"
	"github.com/hyperifyio/goenhance/internal/render"
)

// Request body caps.
const (
	maxEnhanceBody = 1 << 20
	maxPDFBody     = 8 << 20
)

// Service runs the pipeline stages. *app.App satisfies it.
type Service interface {
	Enhance(ctx context.Context, req app.EnhanceRequest) (app.EnhanceResponse, error)
	RenderPDF(meta render.Meta, out enhance.Result) ([]byte, error)
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	svc      Service
	validate *validator.Validate
}

// New creates and configures the HTTP server.
func New(svc Service) *Server {
	s := &Server{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger)

	r.Get("/health", s.handleHealth)
	r.Post("/api/enhance", s.handleEnhance)
	r.Post("/api/pdf", s.handlePDF)

	s.router = r
}
