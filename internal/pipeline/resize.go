package pipeline

import (
	"jpegscaler/internal/scale"
)

// Resize resolves req against the buffer size and resamples buf to the
// result. workers is passed to ResampleParallel.
func Resize(buf *Buffer, req scale.Request, workers int) (*Buffer, error) {
	target, err := scale.Resolve(buf.Dimensions(), req)
	if err != nil {
		return nil, err
	}
	return ResampleParallel(buf, target, workers), nil
}
