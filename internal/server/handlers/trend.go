// internal/server/handlers/trend.go

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"newsradar/internal/domain/trend"
)

// TrendHandler handles trend-related HTTP requests
type TrendHandler struct {
	aggregator trend.Aggregator
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(aggregator trend.Aggregator) *TrendHandler {
	return &TrendHandler{
		aggregator: aggregator,
	}
}

// GetTrends returns the composite trend result for ad-hoc keywords.
// GET /api/v1/trends?keywords=a,b,c&months=6
func (h *TrendHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	var keywords []string
	if raw := r.URL.Query().Get("keywords"); raw != "" {
		for _, kw := range strings.Split(raw, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
	}

	months, _ := strconv.Atoi(r.URL.Query().Get("months"))

	result := h.aggregator.GetTrends(r.Context(), keywords, months)
	respondWithJSON(w, http.StatusOK, result)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	response := map[string]string{"error": message}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}
