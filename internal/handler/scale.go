package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"jpegscaler/internal/pipeline"
	"jpegscaler/internal/scale"
)

// Measure reports the dimensions of the JPEG in the request body without
// decoding its pixels.
func (h *Handler) Measure(w http.ResponseWriter, r *http.Request) {
	data, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	measure := pipeline.Measure
	if h.config.AutoOrient {
		measure = pipeline.MeasureOriented
	}
	d, err := measure(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(d)
}

// Resize scales the JPEG in the request body according to the width,
// height, max_width, max_height and quality query parameters and returns
// the encoded result.
func (h *Handler) Resize(w http.ResponseWriter, r *http.Request) {
	// Set per-request timeout to avoid hung requests
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	req, quality, err := h.parseResizeQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	data, err := h.readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := pipeline.Process(ctx, data, pipeline.Options{
		Request:      req,
		Quality:      quality,
		Workers:      h.config.Workers,
		MaxDimension: h.config.MaxDimension,
		AutoOrient:   h.config.AutoOrient,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.Header().Set("X-Source-Dimensions", res.Source.String())
	w.Header().Set("X-Target-Dimensions", res.Target.String())
	if _, err := w.Write(res.Data); err != nil {
		log.Printf("Handler: write resize response: %v", err)
	}
}

func (h *Handler) parseResizeQuery(r *http.Request) (scale.Request, pipeline.Quality, error) {
	q := r.URL.Query()

	var dims [4]int
	for i, key := range []string{"width", "height", "max_width", "max_height"} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %s=%q is not an integer", scale.ErrInvalidDimensions, key, v)
		}
		dims[i] = n
	}

	quality := pipeline.Quality(h.config.Quality)
	if v := q.Get("quality"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w, got %q", pipeline.ErrInvalidQuality, v)
		}
		quality = pipeline.Quality(f)
	}
	if err := quality.Validate(); err != nil {
		return nil, 0, err
	}

	req, err := scale.ParseRequest(dims[0], dims[1], dims[2], dims[3])
	if err != nil {
		return nil, 0, err
	}
	return req, quality, nil
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	limit := h.config.MaxUploadBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+1)
	}
	return pipeline.ReadLimited(r.Body, limit)
}
