// Package haze inverts the Koschmieder scattering model on a single
// outdoor image: I(x) = J(x)*t(x) + A*(1 - t(x)). The dark channel of
// the observed image estimates how far the per-patch minimum has been
// lifted by the atmospheric veil, which yields the transmission t and
// from it the per-pixel haze intensity 1 - t.
package haze

import (
	"fmt"

	"haze-estimator/internal/grid"
)

// Result holds every intermediate field of the haze estimation so
// callers can inspect or render each one.
type Result struct {
	DarkChannel      *grid.ScalarField
	AtmosphericLight grid.AtmosphericLight
	Transmission     *grid.ScalarField
	HazeMap          *grid.ScalarField
}

// Estimate runs the full haze estimation over a normalized pixel grid:
// dark channel, atmospheric light, transmission, haze map. The input
// grid is not modified.
func Estimate(g *grid.PixelGrid, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	dark, err := DarkChannel(g, params.PatchSize)
	if err != nil {
		return nil, fmt.Errorf("dark channel: %w", err)
	}

	light := EstimateAtmosphericLight(g, dark, params.TopPercent)

	t, err := Transmission(g, light, params)
	if err != nil {
		return nil, fmt.Errorf("transmission: %w", err)
	}

	return &Result{
		DarkChannel:      dark,
		AtmosphericLight: light,
		Transmission:     t,
		HazeMap:          HazeMap(t),
	}, nil
}
