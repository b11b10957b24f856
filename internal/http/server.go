// README: API gateway; builds the gin engine and wraps it with request id and CORS.
package http

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"cabbook/internal/http/middleware"
	"cabbook/internal/infra"
	"cabbook/internal/modules/booking"
	"cabbook/internal/modules/directory"
	"cabbook/internal/modules/report"
)

type ServerDeps struct {
	Bookings    *booking.Service
	Directory   *directory.Service
	Reports     *report.Service
	Verifier    infra.TokenVerifier
	Logger      *slog.Logger
	CORSOrigins []string
}

type Server struct {
	bookings    *booking.Service
	directory   *directory.Service
	reports     *report.Service
	verifier    infra.TokenVerifier
	log         *slog.Logger
	corsOrigins []string
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		bookings:    deps.Bookings,
		directory:   deps.Directory,
		reports:     deps.Reports,
		verifier:    deps.Verifier,
		log:         log,
		corsOrigins: origins,
	}
}

func (s *Server) Routes() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.HeaderToken},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         300,
	})
	return c.Handler(chimw.RequestID(s.router()))
}
