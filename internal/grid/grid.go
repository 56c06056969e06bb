package grid

import "fmt"

// ChannelOrder tags the channel layout of a PixelGrid or AtmosphericLight.
// The pipeline convention is RGB; BGR exists only for boundaries that
// require it (external tooling, legacy formats).
type ChannelOrder int

const (
	OrderRGB ChannelOrder = iota
	OrderBGR
)

func (o ChannelOrder) String() string {
	switch o {
	case OrderRGB:
		return "RGB"
	case OrderBGR:
		return "BGR"
	default:
		return fmt.Sprintf("ChannelOrder(%d)", int(o))
	}
}

// PixelGrid is a height x width x 3 array of intensities in [0,1],
// stored interleaved (3 floats per pixel), row-major.
type PixelGrid struct {
	Width  int
	Height int
	Order  ChannelOrder
	Pix    []float64
}

func NewPixelGrid(width, height int, order ChannelOrder) *PixelGrid {
	return &PixelGrid{
		Width:  width,
		Height: height,
		Order:  order,
		Pix:    make([]float64, width*height*3),
	}
}

// At returns the value of channel c at (x, y). Channel indices follow
// the grid's Order tag.
func (g *PixelGrid) At(x, y, c int) float64 {
	return g.Pix[(y*g.Width+x)*3+c]
}

func (g *PixelGrid) Set(x, y, c int, v float64) {
	g.Pix[(y*g.Width+x)*3+c] = v
}

// Clone returns an independent copy. Stages never alias pixel storage
// across boundaries.
func (g *PixelGrid) Clone() *PixelGrid {
	out := NewPixelGrid(g.Width, g.Height, g.Order)
	copy(out.Pix, g.Pix)
	return out
}

// ToOrder returns a copy of the grid with channels rearranged to the
// requested order. RGB<->BGR only swaps channels 0 and 2.
func (g *PixelGrid) ToOrder(order ChannelOrder) *PixelGrid {
	out := g.Clone()
	if g.Order == order {
		return out
	}
	out.Order = order
	for i := 0; i < len(out.Pix); i += 3 {
		out.Pix[i], out.Pix[i+2] = out.Pix[i+2], out.Pix[i]
	}
	return out
}

// ScalarField is a height x width array of floats. The value range is
// stage-defined: [0,1] for dark channel, transmission and haze fields,
// unclamped for the normalized ratio inside the transmission computer.
type ScalarField struct {
	Width  int
	Height int
	Data   []float64
}

func NewScalarField(width, height int) *ScalarField {
	return &ScalarField{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

func (f *ScalarField) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

func (f *ScalarField) Set(x, y int, v float64) {
	f.Data[y*f.Width+x] = v
}

func (f *ScalarField) Clone() *ScalarField {
	out := NewScalarField(f.Width, f.Height)
	copy(out.Data, f.Data)
	return out
}

// AtmosphericLight is the estimated ambient haze color. Each component
// is the value of exactly one selected pixel's channel in the original
// grid, never an average.
type AtmosphericLight struct {
	Order ChannelOrder
	Value [3]float64
}

// Sum returns the total intensity across channels.
func (a AtmosphericLight) Sum() float64 {
	return a.Value[0] + a.Value[1] + a.Value[2]
}
