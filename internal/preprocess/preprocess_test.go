package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haze-estimator/internal/grid"
)

func uniformImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("decodes png bytes", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, uniformImage(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})))

		img, format, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 4, img.Bounds().Dx())
	})

	t.Run("undecodable bytes fail with ErrImageDecode", func(t *testing.T) {
		t.Parallel()
		_, _, err := Decode([]byte("not an image"))
		assert.ErrorIs(t, err, ErrImageDecode)
	})
}

func TestFromImage(t *testing.T) {
	t.Parallel()

	t.Run("normalizes samples to the unit range", func(t *testing.T) {
		t.Parallel()
		img := uniformImage(2, 2, color.NRGBA{R: 255, G: 0, B: 51, A: 255})

		g, err := FromImage(img)
		require.NoError(t, err)
		assert.Equal(t, grid.OrderRGB, g.Order)
		assert.InDelta(t, 1.0, g.At(0, 0, 0), 1e-9)
		assert.InDelta(t, 0.0, g.At(0, 0, 1), 1e-9)
		assert.InDelta(t, 0.2, g.At(0, 0, 2), 1e-9)
	})

	t.Run("zero dimension fails with ErrEmptyImage", func(t *testing.T) {
		t.Parallel()
		img := image.NewNRGBA(image.Rect(0, 0, 0, 5))
		_, err := FromImage(img)
		assert.ErrorIs(t, err, ErrEmptyImage)
	})
}

func TestResizeArea(t *testing.T) {
	t.Parallel()

	t.Run("never upscales a small image", func(t *testing.T) {
		t.Parallel()
		g, err := FromImage(uniformImage(100, 100, color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
		require.NoError(t, err)

		out := ResizeArea(g, 640)
		assert.Equal(t, 100, out.Width)
		assert.Equal(t, 100, out.Height)
	})

	t.Run("bounds the larger dimension at exactly 640", func(t *testing.T) {
		t.Parallel()
		g, err := FromImage(uniformImage(2000, 1000, color.NRGBA{R: 128, G: 128, B: 128, A: 255}))
		require.NoError(t, err)

		out := ResizeArea(g, 640)
		assert.Equal(t, 640, out.Width)
		assert.Equal(t, 320, out.Height)
	})

	t.Run("preserves a uniform color", func(t *testing.T) {
		t.Parallel()
		g, err := FromImage(uniformImage(1300, 700, color.NRGBA{R: 102, G: 51, B: 153, A: 255}))
		require.NoError(t, err)

		out := ResizeArea(g, 640)
		for i := 0; i < len(out.Pix); i += 3 {
			assert.InDelta(t, 102.0/255, out.Pix[i], 1e-9)
			assert.InDelta(t, 51.0/255, out.Pix[i+1], 1e-9)
			assert.InDelta(t, 153.0/255, out.Pix[i+2], 1e-9)
		}
	})

	t.Run("averages source regions", func(t *testing.T) {
		t.Parallel()
		// 2x1 black/white downscaled to 1x1 must average to mid grey.
		g := grid.NewPixelGrid(2, 1, grid.OrderRGB)
		g.Set(1, 0, 0, 1)
		g.Set(1, 0, 1, 1)
		g.Set(1, 0, 2, 1)

		out := ResizeArea(g, 1)
		require.Equal(t, 1, out.Width)
		require.Equal(t, 1, out.Height)
		assert.InDelta(t, 0.5, out.At(0, 0, 0), 1e-9)
	})
}

func TestGaussianSmooth(t *testing.T) {
	t.Parallel()

	t.Run("uniform grid is unchanged", func(t *testing.T) {
		t.Parallel()
		g := grid.NewPixelGrid(5, 5, grid.OrderRGB)
		for i := range g.Pix {
			g.Pix[i] = 0.6
		}
		out := GaussianSmooth(g)
		for _, v := range out.Pix {
			assert.InDelta(t, 0.6, v, 1e-9)
		}
	})

	t.Run("preserves total mass away from extremes", func(t *testing.T) {
		t.Parallel()
		g := grid.NewPixelGrid(5, 5, grid.OrderRGB)
		g.Set(2, 2, 0, 1.0)

		out := GaussianSmooth(g)
		assert.InDelta(t, 0.25, out.At(2, 2, 0), 1e-9)
		assert.InDelta(t, 0.125, out.At(1, 2, 0), 1e-9)
		assert.InDelta(t, 0.0625, out.At(1, 1, 0), 1e-9)

		var sum float64
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				sum += out.At(x, y, 0)
			}
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func TestRunBoundsDimension(t *testing.T) {
	t.Parallel()

	g, err := Run(uniformImage(2000, 1000, color.NRGBA{R: 200, G: 200, B: 200, A: 255}), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 640, g.Width)
	assert.Equal(t, 320, g.Height)
	for _, v := range g.Pix {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
