package haze

import (
	"errors"
	"fmt"
)

// Defaults follow the Dark Channel Prior literature: a 15-pixel patch,
// omega 0.95 to retain a residual veil, and the top 0.1% of dark-channel
// pixels as atmospheric-light candidates.
const (
	DefaultPatchSize  = 15
	DefaultOmega      = 0.95
	DefaultTopPercent = 0.001
)

var (
	// ErrInvalidPatchSize reports a patch size that is even or < 1.
	ErrInvalidPatchSize = errors.New("patch size must be odd and >= 1")

	// ErrDegenerateLight reports an atmospheric light whose components
	// are all near zero, which makes channel normalization unstable.
	ErrDegenerateLight = errors.New("atmospheric light is degenerate")
)

// Params controls the haze estimation stages.
type Params struct {
	// PatchSize is the side of the square dark-channel window. Odd, >= 1.
	PatchSize int
	// Omega is the haze retention factor in (0,1). Values below 1 keep a
	// residual veil; 1 would over-sharpen and halo at depth edges.
	Omega float64
	// TopPercent is the fraction of brightest dark-channel pixels used
	// as atmospheric-light candidates, in (0,1].
	TopPercent float64
}

func DefaultParams() Params {
	return Params{
		PatchSize:  DefaultPatchSize,
		Omega:      DefaultOmega,
		TopPercent: DefaultTopPercent,
	}
}

func (p Params) Validate() error {
	if p.PatchSize < 1 || p.PatchSize%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPatchSize, p.PatchSize)
	}
	if p.Omega <= 0 || p.Omega >= 1 {
		return fmt.Errorf("omega must be in (0,1): got %g", p.Omega)
	}
	if p.TopPercent <= 0 || p.TopPercent > 1 {
		return fmt.Errorf("top percent must be in (0,1]: got %g", p.TopPercent)
	}
	return nil
}
