package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/momentum-scanner/internal/api/handlers"
	"github.com/wonny/momentum-scanner/pkg/logger"
)

// Handlers groups the endpoint handlers. Nil members leave their routes
// unregistered.
type Handlers struct {
	Scan      *handlers.ScanHandler
	Quote     *handlers.QuoteHandler
	Universe  *handlers.UniverseHandler
	Scheduler *handlers.SchedulerHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Scan endpoints
	if h.Scan != nil {
		api.HandleFunc("/scan/latest", h.Scan.GetLatest).Methods("GET")
		api.HandleFunc("/scan/top", h.Scan.GetTop).Methods("GET")
		api.HandleFunc("/scan/momentum", h.Scan.GetMomentum).Methods("GET")
		api.HandleFunc("/scan/symbols/{symbol}", h.Scan.GetSymbol).Methods("GET")
		api.HandleFunc("/scan/run", h.Scan.Run).Methods("POST")
	}

	// Live NSE lookups
	if h.Quote != nil {
		api.HandleFunc("/quote/{symbol}", h.Quote.GetPrice).Methods("GET")
		api.HandleFunc("/quote/{symbol}/promoter", h.Quote.GetPromoter).Methods("GET")
	}

	// Universe endpoints
	if h.Universe != nil {
		api.HandleFunc("/universe/default", h.Universe.GetDefault).Methods("GET")
		api.HandleFunc("/universe/search", h.Universe.Search).Methods("GET")
		api.HandleFunc("/universe/default/{symbol}", h.Universe.GetMember).Methods("GET")
	}

	// Scheduler endpoints
	if h.Scheduler != nil {
		api.HandleFunc("/scheduler/jobs", h.Scheduler.GetJobs).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/history", h.Scheduler.GetJobHistory).Methods("GET")
		api.HandleFunc("/scheduler/jobs/{name}/run", h.Scheduler.RunJob).Methods("POST")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "momentum-scanner",
	})
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
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
