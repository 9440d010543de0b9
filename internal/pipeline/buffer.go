package pipeline

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"jpegscaler/internal/scale"
)

// Buffer is an opaque 8-bit RGB pixel grid. Pix holds rows top to bottom,
// three bytes per pixel, with a stride of 3*Width.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a zeroed (black) buffer of the given size.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// FromImage copies img into a new Buffer, dropping any alpha channel.
// Transparent areas are composited over black.
func FromImage(img image.Image) *Buffer {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}

	buf := NewBuffer(b.Dx(), b.Dy())
	for y := 0; y < buf.Height; y++ {
		src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*buf.Width]
		dst := buf.Pix[y*3*buf.Width : (y+1)*3*buf.Width]
		for x := 0; x < buf.Width; x++ {
			dst[3*x] = src[4*x]
			dst[3*x+1] = src[4*x+1]
			dst[3*x+2] = src[4*x+2]
		}
	}
	return buf
}

// Dimensions returns the buffer size.
func (b *Buffer) Dimensions() scale.Dimensions {
	return scale.Dimensions{Width: b.Width, Height: b.Height}
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (b *Buffer) PixOffset(x, y int) int {
	return (y*b.Width + x) * 3
}

func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

func (b *Buffer) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	i := b.PixOffset(x, y)
	return color.RGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: 0xff}
}

// valid reports whether Pix holds exactly Width*Height pixels.
func (b *Buffer) valid() bool {
	return b != nil && b.Width > 0 && b.Height > 0 && len(b.Pix) == 3*b.Width*b.Height
}

// Opaque always reports true; Buffer has no alpha channel.
func (b *Buffer) Opaque() bool { return true }

// RGBA expands the buffer into an *image.RGBA, which the JPEG encoder
// handles without per-pixel interface calls.
func (b *Buffer) RGBA() *image.RGBA {
	out := image.NewRGBA(b.Bounds())
	n := min(len(b.Pix), 3*b.Width*b.Height)
	for i, j := 0, 0; i+2 < n; i, j = i+3, j+4 {
		out.Pix[j] = b.Pix[i]
		out.Pix[j+1] = b.Pix[i+1]
		out.Pix[j+2] = b.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}
