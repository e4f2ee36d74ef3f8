package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"dealscan/internal/history"
	"dealscan/internal/retailer"
	"dealscan/internal/service"
)

type Scanner interface {
	Scan(ctx context.Context, req service.ScanRequest) service.ScanResult
	History(ctx context.Context, sessionID string) []history.Entry
}

type Scraper interface {
	Scrape(ctx context.Context, req service.ScrapeRequest) (service.ScrapeResult, error)
}

// Handler handles HTTP requests
type Handler struct {
	scanner Scanner
	scraper Scraper
	log     *logrus.Entry
}

func NewHandler(scanner Scanner, scraper Scraper, log *logrus.Entry) *Handler {
	return &Handler{scanner: scanner, scraper: scraper, log: log}
}

type historyResponse struct {
	SessionID string          `json:"session_id"`
	Scans     []history.Entry `json:"scans"`
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Scan handles GET /scan?barcode=
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	barcode := r.URL.Query().Get("barcode")
	if barcode == "" {
		respondError(w, http.StatusBadRequest, "Missing barcode parameter")
		return
	}

	result := h.scanner.Scan(r.Context(), service.ScanRequest{
		Barcode:   barcode,
		SessionID: sessionID(r),
	})
	respondJSON(w, http.StatusOK, result)
}

// Scrape handles GET /scrape?product=[&product_id=]
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	product := q.Get("product")
	if product == "" {
		respondError(w, http.StatusBadRequest, "Missing product parameter")
		return
	}

	result, err := h.scraper.Scrape(r.Context(), service.ScrapeRequest{
		Product:   product,
		ProductID: q.Get("product_id"),
	})
	if err != nil {
		if errors.Is(err, retailer.ErrMissingCredential) {
			h.log.WithError(err).Error("scrape misconfigured")
			respondError(w, http.StatusInternalServerError, "Retailer search credentials not configured")
			return
		}
		h.log.WithError(err).Error("scrape failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// History handles GET /history?session_id=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	if id == "" {
		respondError(w, http.StatusBadRequest, "Missing session_id parameter")
		return
	}
	respondJSON(w, http.StatusOK, historyResponse{SessionID: id, Scans: h.scanner.History(r.Context(), id)})
}

func sessionID(r *http.Request) string {
	if id := r.URL.Query().Get("session_id"); id != "" {
		return id
	}
	return r.Header.Get("X-Session-ID")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
