package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/pagelift/backend/internal/api/handlers"
	"github.com/pagelift/backend/pkg/config"
	"github.com/pagelift/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, scoreHandler *handlers.ScoreHandler, analysisHandler *handlers.AnalysisHandler, hub *Hub, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Analysis ingest and deployment
	api.HandleFunc("/pages/{pageId}/analysis", analysisHandler.Ingest).Methods("POST")
	api.HandleFunc("/pages/{pageId}/deploy", analysisHandler.Deploy).Methods("POST")
	api.HandleFunc("/pages/{pageId}/deployments", analysisHandler.GetDeployments).Methods("GET")

	// Scores and recommendations
	api.HandleFunc("/pages/{pageId}/ratings", scoreHandler.GetRatings).Methods("GET")
	api.HandleFunc("/pages/{pageId}/recommendations/{section}", scoreHandler.GetRecommendations).Methods("GET")
	api.HandleFunc("/pages/{pageId}/score", scoreHandler.GetPageScore).Methods("GET")
	api.HandleFunc("/pages/{pageId}/score/recompute", scoreHandler.RecomputePageScore).Methods("POST")
	api.HandleFunc("/sites/{siteId}/metrics", scoreHandler.GetSiteMetrics).Methods("GET")
	api.HandleFunc("/sites/{siteId}/recompute", scoreHandler.RecomputeSite).Methods("POST")
	api.HandleFunc("/recompute", scoreHandler.RecomputeAll).Methods("POST")

	// Dashboard event stream
	r.HandleFunc("/ws/scores", hub.ServeWS)

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(rateLimitMiddleware(rate.Limit(cfg.Scoring.RateLimitRPS), cfg.Scoring.RateBurst))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "pagelift-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies a server-wide request rate limit
func rateLimitMiddleware(limit rate.Limit, burst int) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
