package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/attendance-analyzer/internal/config"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger builds the JSON logger shared by request logging and services.
func NewLogger(out io.Writer, app config.AppConfig) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       parseLevel(app.LogLevel),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app.Name),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func NewRouter(logger *slog.Logger, m *metrics.Metrics, allowedOrigins []string, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: false,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(m.Middleware)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/attendance", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(chiMiddleware.AllowContentType("multipart/form-data"))
				r.Post("/analyze", attendanceHandler.Analyze)
				r.Post("/export", attendanceHandler.Export)
			})
			r.Get("/profiles", attendanceHandler.ListProfiles)
			r.Get("/reports/{id}", attendanceHandler.GetReport)
		})
	})
	return r
}
