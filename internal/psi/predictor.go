// Package psi is the boundary collaborator that maps the haze feature
// vector to an approximate pollution standards index. The estimate is a
// proxy trained on synthetic data; it is not a calibrated instrument.
package psi

// MaxPSI bounds the index scale.
const MaxPSI = 500.0

// Predictor maps the canonical feature vector
// [mean_haze, haze_variance, max_haze, contrast] to a PSI in [0, MaxPSI].
// Implementations must be safe for concurrent use once initialized.
type Predictor interface {
	Predict(features [4]float64) (float64, error)
}

// Category maps a PSI value to its air quality band.
func Category(psi float64) string {
	switch {
	case psi <= 50:
		return "Good"
	case psi <= 100:
		return "Moderate"
	case psi <= 200:
		return "Unhealthy"
	case psi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
