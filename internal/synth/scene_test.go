package synth

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUrbanScene(t *testing.T) {
	t.Parallel()

	t.Run("has the requested dimensions", func(t *testing.T) {
		t.Parallel()
		img := UrbanScene(320, 240, 0.4)
		assert.Equal(t, 320, img.Bounds().Dx())
		assert.Equal(t, 240, img.Bounds().Dy())
	})

	t.Run("generation is deterministic", func(t *testing.T) {
		t.Parallel()
		a := UrbanScene(160, 120, 0.4)
		b := UrbanScene(160, 120, 0.4)
		assert.Equal(t, a.Pix, b.Pix)
	})

	t.Run("haze lifts the scene toward the veil color", func(t *testing.T) {
		t.Parallel()
		clear := UrbanScene(160, 120, 0.1)
		heavy := UrbanScene(160, 120, 0.8)

		// Road pixels are dark; under heavy haze they brighten toward
		// the whitish atmospheric light.
		y := 110
		var clearSum, heavySum int
		for x := 0; x < 160; x++ {
			c := clear.NRGBAAt(x, y)
			h := heavy.NRGBAAt(x, y)
			clearSum += int(c.R) + int(c.G) + int(c.B)
			heavySum += int(h.R) + int(h.G) + int(h.B)
		}
		assert.Greater(t, heavySum, clearSum)
	})

	t.Run("clear scene keeps dark road pixels", func(t *testing.T) {
		t.Parallel()
		img := UrbanScene(160, 120, 0.0)
		px := img.NRGBAAt(5, 110)
		require.NotEqual(t, color.NRGBA{}, px)
		assert.Less(t, int(px.R), 130)
	})
}
