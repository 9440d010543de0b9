package scale

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		src  Dimensions
		req  Request
		want Dimensions
	}{
		{"exact ignores aspect", Dimensions{200, 100}, Exact{50, 50}, Dimensions{50, 50}},
		{"box landscape", Dimensions{200, 100}, BoundingBox{100, 100}, Dimensions{100, 50}},
		{"box portrait", Dimensions{100, 200}, BoundingBox{100, 100}, Dimensions{50, 100}},
		{"box tiny bound", Dimensions{10, 10}, BoundingBox{1, 1}, Dimensions{1, 1}},
		{"box upscales", Dimensions{50, 25}, BoundingBox{200, 200}, Dimensions{200, 100}},
		{"width derives height", Dimensions{100, 200}, SingleAxis{Width: 50}, Dimensions{50, 100}},
		{"height derives width", Dimensions{200, 100}, SingleAxis{Height: 50}, Dimensions{100, 50}},
		{"derived axis truncates", Dimensions{3, 2}, SingleAxis{Width: 2}, Dimensions{2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.src, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_SingleAxisEvenWidthHalves(t *testing.T) {
	src := Dimensions{200, 100}
	for w := 2; w <= 400; w += 2 {
		got, err := Resolve(src, SingleAxis{Width: w})
		require.NoError(t, err)
		assert.Equal(t, w/2, got.Height, "width %d", w)
	}
}

func TestResolve_BoundingBoxFitsAndKeepsRatio(t *testing.T) {
	sources := []Dimensions{{200, 100}, {100, 200}, {640, 480}, {37, 1013}, {4000, 3000}, {1, 1}}
	bounds := []BoundingBox{{100, 100}, {1920, 1080}, {50, 500}, {333, 7}, {10000, 10000}}

	for _, src := range sources {
		for _, box := range bounds {
			got, err := Resolve(src, box)
			if err != nil {
				require.ErrorIs(t, err, ErrInvalidDimensions)
				continue
			}
			assert.LessOrEqual(t, got.Width, box.MaxWidth, "%s %s", src, box)
			assert.LessOrEqual(t, got.Height, box.MaxHeight, "%s %s", src, box)

			// Truncation moves each side by less than one pixel.
			ratio := math.Min(float64(box.MaxWidth)/float64(src.Width), float64(box.MaxHeight)/float64(src.Height))
			assert.InDelta(t, float64(src.Width)*ratio, float64(got.Width), 1, "%s %s", src, box)
			assert.InDelta(t, float64(src.Height)*ratio, float64(got.Height), 1, "%s %s", src, box)
		}
	}
}

func TestResolve_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		src  Dimensions
		req  Request
	}{
		{"exact negative width", Dimensions{100, 100}, Exact{-1, 50}},
		{"exact zero height", Dimensions{100, 100}, Exact{50, 0}},
		{"single axis negative", Dimensions{100, 100}, SingleAxis{Width: -3}},
		{"single axis empty", Dimensions{100, 100}, SingleAxis{}},
		{"single axis both set", Dimensions{100, 100}, SingleAxis{Width: 10, Height: 10}},
		{"single axis derives zero", Dimensions{1000, 10}, SingleAxis{Width: 50}},
		{"box zero bound", Dimensions{100, 100}, BoundingBox{0, 100}},
		{"box truncates to zero", Dimensions{1000, 10}, BoundingBox{50, 50}},
		{"zero source", Dimensions{0, 100}, Exact{10, 10}},
		{"nil request", Dimensions{100, 100}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.src, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDimensions), "got %v", err)
		})
	}
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest(800, 600, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Exact{800, 600}, req)

	req, err = ParseRequest(50, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, SingleAxis{Width: 50}, req)

	req, err = ParseRequest(0, 40, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, SingleAxis{Height: 40}, req)

	req, err = ParseRequest(800, 600, 1024, 0)
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{1024, DefaultMaxBound}, req)

	req, err = ParseRequest(0, 0, 0, 300)
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{DefaultMaxBound, 300}, req)

	_, err = ParseRequest(0, 0, 0, 0)
	assert.ErrorIs(t, err, ErrNoDimensions)
}

func TestRequestString(t *testing.T) {
	assert.Equal(t, "exact 50x40", Exact{50, 40}.String())
	assert.Equal(t, "width 50", SingleAxis{Width: 50}.String())
	assert.Equal(t, "height 7", SingleAxis{Height: 7}.String())
	assert.Equal(t, "fit within 100x100", BoundingBox{100, 100}.String())
	assert.Equal(t, "640x480", Dimensions{640, 480}.String())
}
