package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/disintegration/imaging"
)

// EncodeJPEG encodes buf as baseline JPEG written to w at quality q.
// It logs the final encoded size.
func EncodeJPEG(buf *Buffer, w io.Writer, q Quality) error {
	if !buf.valid() {
		return fmt.Errorf("%w: degenerate buffer", ErrEncode)
	}
	if w == nil {
		return fmt.Errorf("%w: nil writer", ErrEncode)
	}
	if err := q.Validate(); err != nil {
		return err
	}

	// counting writer to capture encoded size
	c := &countingWriter{w: w}
	if err := imaging.Encode(c, buf.RGBA(), imaging.JPEG, imaging.JPEGQuality(q.jpegQuality())); err != nil {
		return errors.Join(ErrEncode, err)
	}

	log.Printf("jpeg encoded size=%d dims=%dx%d quality=%.2f", c.n, buf.Width, buf.Height, float64(q))
	return nil
}

// Encode returns the JPEG encoding of buf at quality q.
func Encode(buf *Buffer, q Quality) ([]byte, error) {
	var out bytes.Buffer
	if err := EncodeJPEG(buf, &out, q); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// countingWriter wraps an io.Writer and counts bytes written.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	m, err := c.w.Write(p)
	c.n += int64(m)
	return m, err
}
