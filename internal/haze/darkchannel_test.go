package haze

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haze-estimator/internal/grid"
)

// naiveMinFilter is the O(P^2)-per-pixel reference the separable
// implementation must match exactly.
func naiveMinFilter(f *grid.ScalarField, size int) *grid.ScalarField {
	radius := size / 2
	out := grid.NewScalarField(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			m := f.At(x, y)
			for dy := -radius; dy <= radius; dy++ {
				sy := y + dy
				if sy < 0 || sy >= f.Height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					sx := x + dx
					if sx < 0 || sx >= f.Width {
						continue
					}
					if v := f.At(sx, sy); v < m {
						m = v
					}
				}
			}
			out.Set(x, y, m)
		}
	}
	return out
}

func randomField(t *testing.T, w, h int, seed int64) *grid.ScalarField {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	f := grid.NewScalarField(w, h)
	for i := range f.Data {
		f.Data[i] = rng.Float64()
	}
	return f
}

func randomGrid(t *testing.T, w, h int, seed int64) *grid.PixelGrid {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := grid.NewPixelGrid(w, h, grid.OrderRGB)
	for i := range g.Pix {
		g.Pix[i] = rng.Float64()
	}
	return g
}

func TestChannelMin(t *testing.T) {
	t.Parallel()

	g := grid.NewPixelGrid(2, 1, grid.OrderRGB)
	g.Set(0, 0, 0, 0.7)
	g.Set(0, 0, 1, 0.2)
	g.Set(0, 0, 2, 0.5)
	g.Set(1, 0, 0, 0.1)
	g.Set(1, 0, 1, 0.9)
	g.Set(1, 0, 2, 0.4)

	f := ChannelMin(g)
	assert.Equal(t, 0.2, f.At(0, 0))
	assert.Equal(t, 0.1, f.At(1, 0))
}

func TestMinFilterMatchesNaive(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		w, h int
		size int
	}{
		{"small odd window", 17, 11, 3},
		{"default patch", 40, 30, 15},
		{"window larger than image", 7, 5, 15},
		{"single row", 25, 1, 7},
		{"single column", 1, 25, 7},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := randomField(t, tc.w, tc.h, 7)
			got := MinFilter(f, tc.size)
			want := naiveMinFilter(f, tc.size)
			assert.Equal(t, want.Data, got.Data)
		})
	}
}

func TestMinFilterBorderShrinks(t *testing.T) {
	t.Parallel()

	// A low value in the far corner must not leak past its radius: the
	// border window shrinks, it does not wrap.
	f := grid.NewScalarField(9, 9)
	for i := range f.Data {
		f.Data[i] = 1.0
	}
	f.Set(0, 0, 0.0)

	out := MinFilter(f, 3)
	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.0, out.At(1, 1))
	assert.Equal(t, 1.0, out.At(2, 2))
	assert.Equal(t, 1.0, out.At(8, 8))
}

func TestDarkChannel(t *testing.T) {
	t.Parallel()

	t.Run("rejects even patch size", func(t *testing.T) {
		t.Parallel()
		g := randomGrid(t, 8, 8, 1)
		_, err := DarkChannel(g, 4)
		assert.ErrorIs(t, err, ErrInvalidPatchSize)
	})

	t.Run("rejects non-positive patch size", func(t *testing.T) {
		t.Parallel()
		g := randomGrid(t, 8, 8, 1)
		_, err := DarkChannel(g, 0)
		assert.ErrorIs(t, err, ErrInvalidPatchSize)
	})

	t.Run("patch size one is the channel minimum", func(t *testing.T) {
		t.Parallel()
		g := randomGrid(t, 12, 9, 2)
		dc, err := DarkChannel(g, 1)
		require.NoError(t, err)
		assert.Equal(t, ChannelMin(g).Data, dc.Data)
	})

	t.Run("values stay within the input range", func(t *testing.T) {
		t.Parallel()
		g := randomGrid(t, 32, 24, 3)
		dc, err := DarkChannel(g, 15)
		require.NoError(t, err)
		for _, v := range dc.Data {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	})
}

func TestMinFilterRepeatedApplicationIsNonIncreasing(t *testing.T) {
	t.Parallel()

	f := randomField(t, 30, 20, 11)
	once := MinFilter(f, 7)
	twice := MinFilter(once, 7)

	for i := range once.Data {
		assert.LessOrEqual(t, twice.Data[i], once.Data[i])
	}
}
