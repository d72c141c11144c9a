package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/kioku/internal/api"
	apiMiddleware "github.com/phrazzld/kioku/internal/api/middleware"
	"github.com/phrazzld/kioku/internal/api/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(spanMiddleware)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout))

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)
	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	userHandler := api.NewUserHandler(app.studyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Post("/study/sessions", studyHandler.SubmitSession)

		r.Get("/user/stats", userHandler.GetStats)
		r.Get("/user/review-history", userHandler.GetReviewHistory)
		r.Get("/user/progress", userHandler.ListProgress)

		r.Get("/reviews/due", userHandler.ListDue)
	})

	r.Get("/health", healthHandler(app.db))

	return r
}

// spanMiddleware starts a server span per request so that store and service
// spans have a parent. It is a no-op while tracing is disabled.
func spanMiddleware(next http.Handler) http.Handler {
	tracer := otel.Tracer("github.com/phrazzld/kioku/cmd/server")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()
		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
		)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// healthHandler reports whether the database answers.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
