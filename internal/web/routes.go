package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/kozaktomas/face-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	recognizeHandler := handlers.NewRecognizeHandler(s.config, s.engine, s.frames, s.records)
	sessionsHandler := handlers.NewSessionsHandler(s.records)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/recognize/upload", recognizeHandler.Upload)
		r.Post("/recognize/url", recognizeHandler.FromURL)
		r.Get("/sessions/{sessionID}", sessionsHandler.Get)
	})
}
