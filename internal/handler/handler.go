package handler

import (
	"fmt"
	"log"
	"time"

	"jpegscaler/internal/config"
	"jpegscaler/internal/middleware"
	"jpegscaler/internal/pipeline"
	"jpegscaler/internal/requestip"
)

// requestTimeout bounds a single measure or resize request.
const requestTimeout = 2 * time.Minute

type Handler struct {
	config  *config.Config
	limiter *middleware.RateLimiter
}

// New builds the HTTP handlers from cfg. A nil cfg uses config.Load defaults
// from an empty environment.
func New(cfg *config.Config) (*Handler, error) {
	if cfg == nil {
		cfg = &config.Config{Quality: float64(pipeline.DefaultQuality), MaxDimension: pipeline.MaxDimension}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{config: cfg}
	if cfg.RateLimitResize > 0 {
		proxies, err := requestip.ParseTrustedProxyCIDRs(cfg.TrustedProxyCIDRs)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXY_CIDRS: %w", err)
		}
		h.limiter = middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimitResize,
			TrustedProxyCIDRs: proxies,
		})
		log.Printf("Handler: /v1 limited to %d requests/min per client", cfg.RateLimitResize)
	}
	return h, nil
}

// Close releases the rate limiter's background goroutine.
func (h *Handler) Close() {
	if h.limiter != nil {
		h.limiter.Close()
	}
}
