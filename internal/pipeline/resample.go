package pipeline

import (
	"runtime"
	"sync"

	"jpegscaler/internal/scale"
)

// Resample returns a new buffer of the target size, sampling src with
// bilinear interpolation. Destination pixel (x, y) reads the source at
// (x*W0/Wt, y*H0/Ht) so that a same-size resample reproduces src exactly.
// Upscaling and downscaling share the same path; large downscales are not
// area averaged and may alias. src is not modified.
func Resample(src *Buffer, target scale.Dimensions) *Buffer {
	return ResampleParallel(src, target, 1)
}

// ResampleParallel is Resample with destination rows split into bands across
// workers goroutines. workers <= 0 uses runtime.NumCPU(). The result does not
// depend on the worker count.
func ResampleParallel(src *Buffer, target scale.Dimensions, workers int) *Buffer {
	dst := NewBuffer(target.Width, target.Height)
	if target.Width <= 0 || target.Height <= 0 {
		return dst
	}

	xs := axisSamples(src.Width, target.Width)
	ys := axisSamples(src.Height, target.Height)

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = max(1, min(workers, target.Height))
	if workers == 1 {
		resampleRows(src, dst, xs, ys, 0, target.Height)
		return dst
	}

	rowsPerWorker := (target.Height + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < target.Height; start += rowsPerWorker {
		end := min(start+rowsPerWorker, target.Height)
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			resampleRows(src, dst, xs, ys, start, end)
		}(start, end)
	}
	wg.Wait()
	return dst
}

// sample holds the two source indices and the weight of the far one for one
// destination coordinate.
type sample struct {
	i0, i1 int
	frac   float64
}

func axisSamples(srcLen, dstLen int) []sample {
	out := make([]sample, dstLen)
	for d := range out {
		pos := float64(d) * float64(srcLen) / float64(dstLen)
		i0 := min(int(pos), srcLen-1)
		out[d] = sample{
			i0:   i0,
			i1:   min(i0+1, srcLen-1),
			frac: pos - float64(i0),
		}
	}
	return out
}

func resampleRows(src, dst *Buffer, xs, ys []sample, start, end int) {
	srcStride := 3 * src.Width
	for y := start; y < end; y++ {
		sy := ys[y]
		row0 := src.Pix[sy.i0*srcStride : (sy.i0+1)*srcStride]
		row1 := src.Pix[sy.i1*srcStride : (sy.i1+1)*srcStride]
		out := dst.Pix[dst.PixOffset(0, y):dst.PixOffset(0, y+1)]

		for x, sx := range xs {
			a, b := 3*sx.i0, 3*sx.i1
			for c := 0; c < 3; c++ {
				top := lerp(float64(row0[a+c]), float64(row0[b+c]), sx.frac)
				bottom := lerp(float64(row1[a+c]), float64(row1[b+c]), sx.frac)
				out[3*x+c] = clampUint8(lerp(top, bottom, sy.frac))
			}
		}
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
