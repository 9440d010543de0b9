package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

// GradientImage returns an opaque red/green gradient with a constant blue channel.
func GradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(128)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return img
}

// NoisyImage returns an image with high-frequency detail, so that JPEG
// output size depends visibly on quality.
func NoisyImage(width, height int) *image.RGBA {
	img := GradientImage(width, height)
	seed := uint32(2463534242)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			seed ^= seed << 13
			seed ^= seed >> 17
			seed ^= seed << 5
			if seed%3 == 0 {
				img.Set(x, y, color.RGBA{R: uint8(seed), G: uint8(seed >> 8), B: uint8(seed >> 16), A: 255})
			}
		}
	}
	return img
}

// EncodeJPEG encodes img at quality 90 and fails the test on error.
func EncodeJPEG(t testing.TB, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// GradientJPEG returns JPEG bytes of a width x height gradient.
func GradientJPEG(t testing.TB, width, height int) []byte {
	t.Helper()
	return EncodeJPEG(t, GradientImage(width, height))
}

// WriteJPEG writes a width x height gradient JPEG named name into dir and
// returns its path.
func WriteJPEG(t testing.TB, dir, name string, width, height int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, GradientJPEG(t, width, height), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WithOrientation inserts a minimal EXIF APP1 segment carrying the given
// orientation tag right after the SOI marker of data.
func WithOrientation(data []byte, orientation uint16) []byte {
	var tiff bytes.Buffer
	tiff.WriteString("MM")
	binary.Write(&tiff, binary.BigEndian, uint16(0x2A))
	binary.Write(&tiff, binary.BigEndian, uint32(8))
	// IFD0 with a single SHORT entry
	binary.Write(&tiff, binary.BigEndian, uint16(1))
	binary.Write(&tiff, binary.BigEndian, uint16(0x0112))
	binary.Write(&tiff, binary.BigEndian, uint16(3))
	binary.Write(&tiff, binary.BigEndian, uint32(1))
	binary.Write(&tiff, binary.BigEndian, orientation)
	binary.Write(&tiff, binary.BigEndian, uint16(0))
	binary.Write(&tiff, binary.BigEndian, uint32(0))

	payload := append([]byte("Exif\x00\x00"), tiff.Bytes()...)

	var out bytes.Buffer
	out.Write(data[:2])
	out.Write([]byte{0xFF, 0xE1})
	binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(data[2:])
	return out.Bytes()
}
