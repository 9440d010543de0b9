package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Limits    HealthLimits `json:"limits"`
}

// HealthLimits tells clients what a resize request may carry.
type HealthLimits struct {
	MaxUploadBytes int64   `json:"max_upload_bytes"`
	MaxDimension   int     `json:"max_dimension"`
	DefaultQuality float64 `json:"default_quality"`
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Limits: HealthLimits{
			MaxUploadBytes: h.config.MaxUploadBytes,
			MaxDimension:   h.config.MaxDimension,
			DefaultQuality: h.config.Quality,
		},
	})
}
