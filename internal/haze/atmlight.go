package haze

import (
	"sort"

	"haze-estimator/internal/grid"
)

// EstimateAtmosphericLight selects the ambient haze color. Candidates
// are the brightest topPercent fraction of dark-channel pixels; among
// them, the pixel with the highest total intensity in the original grid
// wins, and its channel triple is returned verbatim. Selecting from a
// small high-dark-channel set rather than the single brightest pixel
// filters specular outliers while still targeting pure haze or sky.
//
// At least one candidate is always selected, even when the fraction
// rounds down to zero pixels.
func EstimateAtmosphericLight(g *grid.PixelGrid, dark *grid.ScalarField, topPercent float64) grid.AtmosphericLight {
	n := len(dark.Data)
	numTop := int(float64(n) * topPercent)
	if numTop < 1 {
		numTop = 1
	}
	if numTop > n {
		numTop = n
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return dark.Data[indices[a]] > dark.Data[indices[b]]
	})

	best := indices[0]
	bestSum := -1.0
	for _, idx := range indices[:numTop] {
		base := idx * 3
		sum := g.Pix[base] + g.Pix[base+1] + g.Pix[base+2]
		if sum > bestSum {
			bestSum = sum
			best = idx
		}
	}

	base := best * 3
	return grid.AtmosphericLight{
		Order: g.Order,
		Value: [3]float64{g.Pix[base], g.Pix[base+1], g.Pix[base+2]},
	}
}
