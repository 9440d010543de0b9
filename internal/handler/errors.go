package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"jpegscaler/internal/pipeline"
	"jpegscaler/internal/scale"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps pipeline failures onto HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, scale.ErrInvalidDimensions),
		errors.Is(err, scale.ErrNoDimensions),
		errors.Is(err, pipeline.ErrInvalidQuality):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrDecode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// friendlyError returns the message shown to API clients. Internal
// failures are not echoed back.
func friendlyError(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		if errors.Is(err, pipeline.ErrEncode) {
			return pipeline.ErrEncode.Error()
		}
		return "internal error"
	case http.StatusServiceUnavailable:
		return "request timed out"
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Handler: %s %s failed: %v", r.Method, r.URL.Path, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: friendlyError(err, status)})
}
