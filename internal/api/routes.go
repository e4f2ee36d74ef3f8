package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all API routes. Only GET is routed; CORS preflight is
// answered before the router and every other method gets a JSON 405.
// Metrics wrap the whole router so 404 and 405 responses are counted too.
func SetupRoutes(handler *Handler, limiter *RateLimiter, log *logrus.Entry) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/scan", handler.Scan).Methods("GET")
	r.HandleFunc("/scrape", handler.Scrape).Methods("GET")
	r.HandleFunc("/history", handler.History).Methods("GET")

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not found")
	})

	var h http.Handler = metricsMiddleware(r)
	if limiter != nil {
		h = limiter.Handler(h)
	}
	return requestLogger(log)(cors(h))
}
