package scale

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrNoDimensions      = errors.New("at least one dimension parameter is required")
)

// DefaultMaxBound is used for the unset side of a bounding box when the caller
// only constrains one axis.
const DefaultMaxBound = 10000

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both sides are strictly positive.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Request describes how the caller wants the output sized. It is one of
// Exact, SingleAxis or BoundingBox.
type Request interface {
	fmt.Stringer
	resolve(src Dimensions) (Dimensions, error)
}

// Exact sets both output dimensions. The aspect ratio is not preserved.
type Exact struct {
	Width  int
	Height int
}

// SingleAxis sets exactly one of Width or Height; the other side is derived
// from the source aspect ratio.
type SingleAxis struct {
	Width  int
	Height int
}

// BoundingBox scales the source to fit within MaxWidth x MaxHeight while
// preserving the aspect ratio. Sources smaller than the box are enlarged.
type BoundingBox struct {
	MaxWidth  int
	MaxHeight int
}

func (r Exact) String() string {
	return fmt.Sprintf("exact %dx%d", r.Width, r.Height)
}

func (r SingleAxis) String() string {
	if r.Width != 0 {
		return fmt.Sprintf("width %d", r.Width)
	}
	return fmt.Sprintf("height %d", r.Height)
}

func (r BoundingBox) String() string {
	return fmt.Sprintf("fit within %dx%d", r.MaxWidth, r.MaxHeight)
}

// Resolve computes the output dimensions for req given the source dimensions.
// On success both returned sides are > 0; every failure wraps
// ErrInvalidDimensions.
func Resolve(src Dimensions, req Request) (Dimensions, error) {
	if !src.Valid() {
		return Dimensions{}, fmt.Errorf("%w: source %s", ErrInvalidDimensions, src)
	}
	if req == nil {
		return Dimensions{}, fmt.Errorf("%w: no scale request", ErrInvalidDimensions)
	}
	return req.resolve(src)
}

func (r Exact) resolve(_ Dimensions) (Dimensions, error) {
	if r.Width <= 0 || r.Height <= 0 {
		return Dimensions{}, fmt.Errorf("%w: width and height must be positive integers, got %dx%d",
			ErrInvalidDimensions, r.Width, r.Height)
	}
	return Dimensions{Width: r.Width, Height: r.Height}, nil
}

func (r SingleAxis) resolve(src Dimensions) (Dimensions, error) {
	var out Dimensions
	switch {
	case r.Width != 0 && r.Height != 0:
		return Dimensions{}, fmt.Errorf("%w: single-axis request sets both width and height", ErrInvalidDimensions)
	case r.Width > 0:
		out = Dimensions{Width: r.Width, Height: deriveAxis(r.Width, src.Height, src.Width)}
	case r.Height > 0:
		out = Dimensions{Width: deriveAxis(r.Height, src.Width, src.Height), Height: r.Height}
	default:
		return Dimensions{}, fmt.Errorf("%w: single-axis value must be positive, got %s", ErrInvalidDimensions, r)
	}
	if !out.Valid() {
		return Dimensions{}, fmt.Errorf("%w: %s on %s derives %s", ErrInvalidDimensions, r, src, out)
	}
	return out, nil
}

func (r BoundingBox) resolve(src Dimensions) (Dimensions, error) {
	if r.MaxWidth <= 0 || r.MaxHeight <= 0 {
		return Dimensions{}, fmt.Errorf("%w: bounds must be positive, got %dx%d",
			ErrInvalidDimensions, r.MaxWidth, r.MaxHeight)
	}
	widthRatio := float64(r.MaxWidth) / float64(src.Width)
	heightRatio := float64(r.MaxHeight) / float64(src.Height)
	ratio := min(widthRatio, heightRatio)

	out := Dimensions{
		Width:  int(float64(src.Width) * ratio),
		Height: int(float64(src.Height) * ratio),
	}
	if !out.Valid() {
		return Dimensions{}, fmt.Errorf("%w: %s on %s truncates to %s", ErrInvalidDimensions, r, src, out)
	}
	return out, nil
}

// deriveAxis returns known * otherOrig / knownOrig truncated toward zero.
func deriveAxis(known, otherOrig, knownOrig int) int {
	return int(float64(known) * float64(otherOrig) / float64(knownOrig))
}

// ParseRequest maps the width, height, max-width and max-height knobs of the
// command line and HTTP front-ends onto a Request. Zero means "not set".
// Any max-* value selects a bounding box, with the unset side defaulting to
// DefaultMaxBound.
func ParseRequest(width, height, maxWidth, maxHeight int) (Request, error) {
	switch {
	case maxWidth != 0 || maxHeight != 0:
		if maxWidth == 0 {
			maxWidth = DefaultMaxBound
		}
		if maxHeight == 0 {
			maxHeight = DefaultMaxBound
		}
		return BoundingBox{MaxWidth: maxWidth, MaxHeight: maxHeight}, nil
	case width != 0 && height != 0:
		return Exact{Width: width, Height: height}, nil
	case width != 0 || height != 0:
		return SingleAxis{Width: width, Height: height}, nil
	default:
		return nil, ErrNoDimensions
	}
}
