package pipeline

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// Orientation returns the EXIF orientation tag (1-8) of JPEG data. Missing or
// unreadable EXIF yields 1, the identity orientation.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orient, err := tag.Int(0)
	if err != nil || orient < 1 || orient > 8 {
		return 1
	}
	return orient
}

// ApplyOrientation returns buf transformed to display orientation. The
// original buffer is returned when no transform is needed.
func ApplyOrientation(buf *Buffer, orientation int) *Buffer {
	if orientation <= 1 || orientation > 8 {
		return buf
	}
	return FromImage(orientationTransform(buf, orientation))
}

func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

// orientationTransform applies the flip/rotation for EXIF orientation values
// 1-8. Unknown values return the original image.
func orientationTransform(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		// stored rotated 90 CCW, display needs 90 CW
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
