package haze

import (
	"fmt"

	"haze-estimator/internal/grid"
)

const (
	// lightEpsilon guards the per-channel division against a near-zero
	// atmospheric light component.
	lightEpsilon = 1e-8

	// degenerateLightThreshold: below this on every channel the scene is
	// essentially black and normalization carries no signal.
	degenerateLightThreshold = 1e-3

	// TransmissionFloor is the hard lower clamp on transmission. It
	// prevents downstream division by zero and reflects that real
	// transmission never reaches exactly zero.
	TransmissionFloor = 0.01
)

// Transmission derives the transmission field from the pixel grid and
// the estimated atmospheric light: normalize every channel by the light
// component, take the dark channel of the normalized grid, then
// t = 1 - omega*dark, clamped to [TransmissionFloor, 1].
func Transmission(g *grid.PixelGrid, light grid.AtmosphericLight, params Params) (*grid.ScalarField, error) {
	if light.Value[0] < degenerateLightThreshold &&
		light.Value[1] < degenerateLightThreshold &&
		light.Value[2] < degenerateLightThreshold {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateLight, light.Value)
	}

	// The normalized ratio is deliberately left unclamped; values above
	// 1 simply mean the pixel outshines the estimated light.
	normalized := grid.NewPixelGrid(g.Width, g.Height, g.Order)
	for i := 0; i < len(g.Pix); i += 3 {
		normalized.Pix[i] = g.Pix[i] / (light.Value[0] + lightEpsilon)
		normalized.Pix[i+1] = g.Pix[i+1] / (light.Value[1] + lightEpsilon)
		normalized.Pix[i+2] = g.Pix[i+2] / (light.Value[2] + lightEpsilon)
	}

	dark, err := DarkChannel(normalized, params.PatchSize)
	if err != nil {
		return nil, err
	}

	t := grid.NewScalarField(g.Width, g.Height)
	for i, d := range dark.Data {
		v := 1.0 - params.Omega*d
		if v < TransmissionFloor {
			v = TransmissionFloor
		} else if v > 1.0 {
			v = 1.0
		}
		t.Data[i] = v
	}
	return t, nil
}

// HazeMap inverts a transmission field: haze = 1 - t. Near 0 means
// clear air, near 1 means dense haze.
func HazeMap(t *grid.ScalarField) *grid.ScalarField {
	out := grid.NewScalarField(t.Width, t.Height)
	for i, v := range t.Data {
		out.Data[i] = 1.0 - v
	}
	return out
}
