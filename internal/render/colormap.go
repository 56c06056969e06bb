// Package render visualizes scalar fields as color-mapped images:
// blue for clear air, red for dense haze.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"haze-estimator/internal/grid"
)

// Jet maps v in [0,1] onto the blue-to-red jet colormap. Out-of-range
// values are clamped.
func Jet(v float64) color.NRGBA {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	r := clampUnit(minf(4*v-1.5, -4*v+4.5))
	g := clampUnit(minf(4*v-0.5, -4*v+3.5))
	b := clampUnit(minf(4*v+0.5, -4*v+2.5))
	return color.NRGBA{
		R: uint8(r*255 + 0.5),
		G: uint8(g*255 + 0.5),
		B: uint8(b*255 + 0.5),
		A: 255,
	}
}

// HazeMap renders a scalar field with the jet colormap.
func HazeMap(field *grid.ScalarField) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, field.Width, field.Height))
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			img.SetNRGBA(x, y, Jet(field.At(x, y)))
		}
	}
	return img
}

// WritePNG renders the field and writes it to path.
func WritePNG(path string, field *grid.ScalarField) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, HazeMap(field)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
