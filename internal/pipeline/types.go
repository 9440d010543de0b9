package pipeline

import (
	"errors"
	"fmt"
	"math"

	"jpegscaler/internal/scale"
)

var (
	ErrInvalidDimensions = scale.ErrInvalidDimensions
	ErrInvalidQuality    = errors.New("quality must be between 0.0 and 1.0")
	ErrDecode            = errors.New("could not decode JPEG image")
	ErrEncode            = errors.New("could not encode JPEG image")
	ErrTooLarge          = errors.New("image exceeds size limit")
)

// DefaultQuality matches the command line default.
const DefaultQuality Quality = 0.8

// Quality is the JPEG compression knob in [0.0, 1.0]; 1.0 is highest fidelity.
type Quality float64

// Validate returns ErrInvalidQuality when q is outside [0.0, 1.0] or NaN.
func (q Quality) Validate() error {
	f := float64(q)
	if math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("%w, got %v", ErrInvalidQuality, f)
	}
	return nil
}

// jpegQuality maps q onto the 1-100 scale of the JPEG encoder.
func (q Quality) jpegQuality() int {
	n := int(math.Round(float64(q) * 100))
	return max(1, min(n, 100))
}
