// Package synth generates deterministic outdoor test scenes with a
// controllable haze level. The scenes are functional fixtures, not
// realistic renders: a gradient sky, building silhouettes with lit
// windows, and a road, blended toward a whitish atmospheric light.
package synth

import (
	"image"
	"image/color"
	"math/rand"
)

const sceneSeed = 123

// atmLight is the whitish veil color the scene blends toward as haze
// increases (RGB).
var atmLight = [3]float64{240, 235, 235}

// UrbanScene renders a synthetic urban scene. hazeLevel is in [0,1]:
// 0 is perfectly clear, 1 a near whiteout. Haze follows the Koschmieder
// blend I = J*t + A*(1-t) with a mild depth gradient so the dominant
// signal stays the overall haze level, not the spatial variation.
func UrbanScene(width, height int, hazeLevel float64) *image.NRGBA {
	canvas := make([][3]float64, width*height)

	drawSky(canvas, width, height)
	drawBuildings(canvas, width, height)
	drawRoad(canvas, width, height)

	// Blend toward the atmospheric light row by row.
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		depthFactor := 1.0 - (float64(y)/float64(height))*0.15
		t := 1.0 - hazeLevel*depthFactor
		if t < 0.05 {
			t = 0.05
		}
		for x := 0; x < width; x++ {
			px := canvas[y*width+x]
			img.SetNRGBA(x, y, color.NRGBA{
				R: clamp8(px[0]*t + atmLight[0]*(1-t)),
				G: clamp8(px[1]*t + atmLight[1]*(1-t)),
				B: clamp8(px[2]*t + atmLight[2]*(1-t)),
				A: 255,
			})
		}
	}
	return img
}

// drawSky fills the top 40% with a deep-blue-to-light gradient.
func drawSky(canvas [][3]float64, width, height int) {
	skyEnd := int(float64(height) * 0.40)
	for y := 0; y < skyEnd; y++ {
		ratio := float64(y) / float64(skyEnd)
		r := 135 + 100*ratio
		g := 180 + 60*ratio
		b := 235.0
		for x := 0; x < width; x++ {
			canvas[y*width+x] = [3]float64{r, g, b}
		}
	}
}

// drawBuildings fills the 40-75% band with background structures and a
// fixed-seed arrangement of darker silhouettes with lit windows.
func drawBuildings(canvas [][3]float64, width, height int) {
	start := int(float64(height) * 0.40)
	end := int(float64(height) * 0.75)

	for y := start; y < end; y++ {
		for x := 0; x < width; x++ {
			canvas[y*width+x] = [3]float64{160, 160, 160}
		}
	}

	rng := rand.New(rand.NewSource(sceneSeed))
	numBuildings := 8
	gap := width / (numBuildings + 2)

	for i := 0; i < numBuildings; i++ {
		bw := width/12 + rng.Intn(width/6-width/12+1)
		bh := int(float64(height)*0.15) + rng.Intn(int(float64(height)*0.20)+1)
		bx := gap*(i+1) + rng.Intn(41) - 20
		if bx < 0 {
			bx = 0
		}
		if bx > width-bw {
			bx = width - bw
		}
		by := end - bh

		shade := float64(50 + rng.Intn(71))
		col := [3]float64{
			shade + float64(rng.Intn(21)-5),
			shade + float64(rng.Intn(21)-10),
			shade,
		}
		fillRect(canvas, width, bx, by, bx+bw, end, col)

		// Lit windows, some left dark.
		const winSize = 6
		for wy := by + 8; wy < end-8; wy += 14 {
			for wx := bx + 6; wx < bx+bw-6; wx += 12 {
				if rng.Float64() > 0.3 {
					fillRect(canvas, width, wx, wy, wx+winSize, wy+winSize, [3]float64{220, 200, 180})
				}
			}
		}
	}
}

// drawRoad fills the bottom 25% with asphalt and dashed lane markings.
func drawRoad(canvas [][3]float64, width, height int) {
	start := int(float64(height) * 0.75)
	for y := start; y < height; y++ {
		for x := 0; x < width; x++ {
			canvas[y*width+x] = [3]float64{95, 90, 90}
		}
	}
	for x := 0; x < width; x += 60 {
		fillRect(canvas, width, x, height-20, x+30, height-16, [3]float64{200, 200, 200})
	}
}

func fillRect(canvas [][3]float64, width, x0, y0, x1, y1 int, col [3]float64) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if x >= 0 && x < width && y >= 0 && y*width+x < len(canvas) {
				canvas[y*width+x] = col
			}
		}
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
