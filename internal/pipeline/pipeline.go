package pipeline

import (
	"context"
	"fmt"

	"jpegscaler/internal/scale"
)

// Options control a single Process run.
type Options struct {
	Request scale.Request
	Quality Quality
	// Workers is the resample parallelism; <= 0 uses all CPUs.
	Workers int
	// MaxDimension bounds source and target width/height; 0 disables the check.
	MaxDimension int
	// AutoOrient applies the EXIF orientation before resolving dimensions.
	AutoOrient bool
}

// Result is the outcome of a successful Process run.
type Result struct {
	Data   []byte
	Source scale.Dimensions
	Target scale.Dimensions
}

// Process runs the full pipeline on JPEG data:
// validate quality -> measure -> decode -> orient -> resolve -> resample -> encode.
// Quality is checked before any decoding work. ctx is checked between stages.
func Process(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if err := opts.Quality.Validate(); err != nil {
		return nil, err
	}
	if opts.Request == nil {
		return nil, scale.ErrNoDimensions
	}

	// Probe the header first so oversized sources are rejected before
	// allocating their pixels.
	measured, err := Measure(data)
	if err != nil {
		return nil, fmt.Errorf("measure: %w", err)
	}
	if err := checkLimit(measured, opts.MaxDimension, "source"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buf, src, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if opts.AutoOrient {
		buf = ApplyOrientation(buf, Orientation(data))
		src = buf.Dimensions()
	}

	target, err := scale.Resolve(src, opts.Request)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Request, err)
	}
	if err := checkLimit(target, opts.MaxDimension, "target"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resized := ResampleParallel(buf, target, opts.Workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := Encode(resized, opts.Quality)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &Result{Data: out, Source: src, Target: target}, nil
}

func checkLimit(d scale.Dimensions, limit int, what string) error {
	if limit > 0 && (d.Width > limit || d.Height > limit) {
		return fmt.Errorf("%w: %s %s exceeds %d pixels per side", ErrTooLarge, what, d, limit)
	}
	return nil
}
