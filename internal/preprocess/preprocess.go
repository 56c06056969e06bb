// Package preprocess turns raw image bytes into the normalized pixel
// grid consumed by the haze stages: decode, bound the largest dimension,
// smooth, scale to [0,1].
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"haze-estimator/internal/grid"
)

// MaxDimension bounds the larger image dimension after preprocessing.
// Larger inputs are downscaled; smaller inputs are never enlarged.
const MaxDimension = 640

// Params controls the preprocessing stage.
type Params struct {
	// MaxDimension caps max(width, height). Zero means DefaultParams().
	MaxDimension int
	// SkipSmoothing disables the 3x3 Gaussian pass. Diagnostics only.
	SkipSmoothing bool
}

func DefaultParams() Params {
	return Params{MaxDimension: MaxDimension}
}

// Decode parses raw bytes into an image. The format is resolved from the
// registered decoders (jpeg, png, gif, bmp, tiff, webp).
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return img, format, nil
}

// DecodeReader is Decode over a stream.
func DecodeReader(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return Decode(data)
}

// Run executes the full preprocessing stage on a decoded image:
// downscale to the bounded dimension, apply the 3x3 Gaussian smoothing
// pass, and return a normalized RGB pixel grid.
func Run(img image.Image, params Params) (*grid.PixelGrid, error) {
	if params.MaxDimension <= 0 {
		params.MaxDimension = MaxDimension
	}

	g, err := FromImage(img)
	if err != nil {
		return nil, err
	}

	g = ResizeArea(g, params.MaxDimension)

	if !params.SkipSmoothing {
		g = GaussianSmooth(g)
	}

	return g, nil
}

// FromImage converts a decoded image into a normalized [0,1] RGB pixel
// grid. Grayscale and paletted sources come through the color model as
// three identical channels; no further validation is applied.
func FromImage(img image.Image) (*grid.PixelGrid, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrEmptyImage, w, h)
	}

	g := grid.NewPixelGrid(w, h, grid.OrderRGB)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, gr, b, _ := img.At(x, y).RGBA()
			g.Pix[i] = float64(r>>8) / 255.0
			g.Pix[i+1] = float64(gr>>8) / 255.0
			g.Pix[i+2] = float64(b>>8) / 255.0
			i += 3
		}
	}
	return g, nil
}

// ResizeArea downscales the grid so its larger dimension equals maxDim,
// preserving aspect ratio, using area averaging (each destination pixel
// is the coverage-weighted mean of the source region it spans). Grids
// already within bounds are returned as an untouched copy; upscaling
// never happens.
func ResizeArea(g *grid.PixelGrid, maxDim int) *grid.PixelGrid {
	larger := g.Width
	if g.Height > larger {
		larger = g.Height
	}
	if larger <= maxDim {
		return g.Clone()
	}

	// The larger dimension lands exactly on maxDim; the other scales by
	// integer ratio to dodge float truncation at the boundary.
	var dstW, dstH int
	if g.Width >= g.Height {
		dstW = maxDim
		dstH = g.Height * maxDim / g.Width
	} else {
		dstH = maxDim
		dstW = g.Width * maxDim / g.Height
	}
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	out := grid.NewPixelGrid(dstW, dstH, g.Order)
	xRatio := float64(g.Width) / float64(dstW)
	yRatio := float64(g.Height) / float64(dstH)

	for dy := 0; dy < dstH; dy++ {
		sy0 := float64(dy) * yRatio
		sy1 := float64(dy+1) * yRatio
		for dx := 0; dx < dstW; dx++ {
			sx0 := float64(dx) * xRatio
			sx1 := float64(dx+1) * xRatio

			var acc [3]float64
			var area float64

			for sy := int(sy0); sy < g.Height && float64(sy) < sy1; sy++ {
				hCov := rowCoverage(float64(sy), sy0, sy1)
				if hCov <= 0 {
					continue
				}
				for sx := int(sx0); sx < g.Width && float64(sx) < sx1; sx++ {
					wCov := rowCoverage(float64(sx), sx0, sx1)
					if wCov <= 0 {
						continue
					}
					weight := hCov * wCov
					base := (sy*g.Width + sx) * 3
					acc[0] += g.Pix[base] * weight
					acc[1] += g.Pix[base+1] * weight
					acc[2] += g.Pix[base+2] * weight
					area += weight
				}
			}

			base := (dy*dstW + dx) * 3
			out.Pix[base] = acc[0] / area
			out.Pix[base+1] = acc[1] / area
			out.Pix[base+2] = acc[2] / area
		}
	}
	return out
}

// rowCoverage returns how much of the unit cell starting at pos lies
// inside the interval [lo, hi).
func rowCoverage(pos, lo, hi float64) float64 {
	start := pos
	if lo > start {
		start = lo
	}
	end := pos + 1
	if hi < end {
		end = hi
	}
	if end <= start {
		return 0
	}
	return end - start
}

// gaussian3 is the 1-D half of the 3x3 binomial smoothing kernel
// (1 2 1)/4; the two separable passes compose to the standard
// (1 2 1) x (1 2 1) / 16 window.
var gaussian3 = [3]float64{0.25, 0.5, 0.25}

// GaussianSmooth applies the 3x3 Gaussian-weighted smoothing pass with
// mirrored borders.
func GaussianSmooth(g *grid.PixelGrid) *grid.PixelGrid {
	w, h := g.Width, g.Height
	tmp := grid.NewPixelGrid(w, h, g.Order)
	out := grid.NewPixelGrid(w, h, g.Order)

	// Horizontal pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for k := -1; k <= 1; k++ {
					sx := reflect(x+k, w)
					sum += gaussian3[k+1] * g.Pix[(y*w+sx)*3+c]
				}
				tmp.Pix[(y*w+x)*3+c] = sum
			}
		}
	}

	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for c := 0; c < 3; c++ {
				var sum float64
				for k := -1; k <= 1; k++ {
					sy := reflect(y+k, h)
					sum += gaussian3[k+1] * tmp.Pix[(sy*w+x)*3+c]
				}
				out.Pix[(y*w+x)*3+c] = sum
			}
		}
	}
	return out
}

// reflect mirrors an out-of-range index back into [0, n) without
// repeating the border sample (-1 maps to 1, n maps to n-2).
func reflect(i, n int) int {
	if n == 1 {
		return 0
	}
	if i < 0 {
		return -i
	}
	if i >= n {
		return 2*n - i - 2
	}
	return i
}
