package pipeline

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"
	"net/http"

	"github.com/disintegration/imaging"

	"jpegscaler/internal/scale"
)

// MaxDimension is the default maximum width or height accepted for a source
// or target image.
const MaxDimension = 16384

// DetectFormat returns the MIME type sniffed from the first 512 bytes of data.
func DetectFormat(data []byte) string {
	return http.DetectContentType(data[:min(len(data), 512)])
}

// ReadLimited reads up to maxBytes from r. It returns ErrTooLarge when r holds
// more than that. maxBytes <= 0 disables the limit.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	// read up to maxBytes+1 to detect overflow
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Measure reads only the JPEG header of data and returns the image size.
func Measure(data []byte) (scale.Dimensions, error) {
	if err := checkJPEG(data); err != nil {
		return scale.Dimensions{}, err
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return scale.Dimensions{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	d := scale.Dimensions{Width: cfg.Width, Height: cfg.Height}
	if !d.Valid() {
		return scale.Dimensions{}, fmt.Errorf("%w: empty image %s", ErrDecode, d)
	}
	return d, nil
}

// MeasureOriented is Measure with the width and height swapped when the EXIF
// orientation rotates the image by 90 degrees.
func MeasureOriented(data []byte) (scale.Dimensions, error) {
	d, err := Measure(data)
	if err != nil {
		return d, err
	}
	if swapsAxes(Orientation(data)) {
		d.Width, d.Height = d.Height, d.Width
	}
	return d, nil
}

// Decode decodes JPEG data into a new RGB buffer.
func Decode(data []byte) (*Buffer, scale.Dimensions, error) {
	if err := checkJPEG(data); err != nil {
		return nil, scale.Dimensions{}, err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, scale.Dimensions{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	buf := FromImage(img)
	d := buf.Dimensions()
	if !d.Valid() {
		return nil, scale.Dimensions{}, fmt.Errorf("%w: empty image %s", ErrDecode, d)
	}
	return buf, d, nil
}

func checkJPEG(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrDecode)
	}
	if ct := DetectFormat(data); ct != "image/jpeg" {
		return fmt.Errorf("%w: unsupported content type %s", ErrDecode, ct)
	}
	return nil
}
