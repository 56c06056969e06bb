// Package features reduces a haze field to the fixed four-scalar
// descriptor consumed by the downstream predictor.
package features

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"haze-estimator/internal/grid"
)

// ErrEmptyField reports a zero-size scalar field.
var ErrEmptyField = errors.New("scalar field is empty")

// FeatureVector is the four-scalar summary of a haze map. Field meaning:
// MeanHaze is the average scattering across the scene; HazeVariance its
// spatial uniformity (uniform thick smog scores low variance, patchy
// haze high); MaxHaze the densest region; Contrast the max-min spread
// (a low contrast with a high mean indicates whiteout conditions).
type FeatureVector struct {
	MeanHaze     float64
	HazeVariance float64
	MaxHaze      float64
	Contrast     float64
}

// Vector returns the canonical serialization order
// [mean_haze, haze_variance, max_haze, contrast]. Every consumer,
// including the predictor, reads features in exactly this order.
func (f FeatureVector) Vector() [4]float64 {
	return [4]float64{f.MeanHaze, f.HazeVariance, f.MaxHaze, f.Contrast}
}

// Extract computes the descriptor from a haze field. Intensity-scale
// values are rounded to 4 decimals and the variance to 6 so downstream
// comparisons stay stable.
func Extract(field *grid.ScalarField) (FeatureVector, error) {
	if field == nil || len(field.Data) == 0 {
		return FeatureVector{}, ErrEmptyField
	}

	n := float64(len(field.Data))
	mean, variance := stat.MeanVariance(field.Data, nil)
	if len(field.Data) == 1 {
		variance = 0
	} else {
		// MeanVariance is the unbiased sample estimate; the descriptor
		// uses the population variance of the field itself.
		variance *= (n - 1) / n
	}

	maxHaze := floats.Max(field.Data)
	minHaze := floats.Min(field.Data)

	return FeatureVector{
		MeanHaze:     round(mean, 4),
		HazeVariance: round(variance, 6),
		MaxHaze:      round(maxHaze, 4),
		Contrast:     round(maxHaze-minHaze, 4),
	}, nil
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
