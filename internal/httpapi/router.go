// Package httpapi exposes the scoring service as JSON over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/godilite/qa-scorecard/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// ScoringService is the part of the scoring service exposed over HTTP.
type ScoringService interface {
	CalculateScore(ctx context.Context, req service.ScoreRequest) (service.ScoreResult, error)
	ExplainScore(ctx context.Context, req service.ScoreRequest) (service.ScoreExplanation, error)
	Roles() []string
	ListVariants(role string) service.VariantInfo
	GetRubric(role, variant string) (service.RubricView, error)
	ApplyTemplate(ctx context.Context, req service.TemplateRequest) (service.ScoreResult, error)
	SaveTemplate(ctx context.Context, req service.SaveTemplateRequest) error
	ListTemplates(ctx context.Context, role string) ([]service.TemplateSummary, error)
}

type Options struct {
	AllowedOrigins []string
	Gatherer       prometheus.Gatherer
}

// NewRouter builds the HTTP routes. A nil Gatherer serves the default registry.
func NewRouter(scoring ScoringService, logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{scoring: scoring, logger: logger.Named("http-handler")}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID, chiMiddleware.RealIP, chiMiddleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(requestTimeout))

		r.Post("/score", h.CalculateScore)
		r.Post("/score/explain", h.ExplainScore)

		r.Get("/roles", h.ListRoles)
		r.Get("/roles/{role}/variants", h.ListVariants)
		r.Get("/roles/{role}/rubric", h.GetRubric)
		r.Get("/roles/{role}/templates", h.ListTemplates)

		r.Post("/templates/{id}/apply", h.ApplyTemplate)
		r.Put("/templates/{id}/scorecard", h.SaveTemplate)
	})

	return r
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		})
	}
}
