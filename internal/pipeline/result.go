package pipeline

import (
	"fmt"
	"time"

	"haze-estimator/internal/features"
	"haze-estimator/internal/grid"
	"haze-estimator/internal/haze"
)

// Analysis is the assembled output of one pipeline invocation.
type Analysis struct {
	// Grid is the preprocessed pixel grid the haze stages consumed.
	Grid *grid.PixelGrid
	// Haze holds the dark channel, atmospheric light, transmission and
	// haze fields.
	Haze *haze.Result
	// Features is the four-scalar descriptor of the haze map.
	Features features.FeatureVector

	// PSI and Category are set when a predictor was injected.
	PSI       float64
	Category  string
	Predicted bool

	Format         string
	SourceWidth    int
	SourceHeight   int
	ProcessingTime time.Duration
}

func (a *Analysis) SourceSize() string {
	return fmt.Sprintf("%dx%d", a.SourceWidth, a.SourceHeight)
}

func (a *Analysis) ProcessedSize() string {
	return fmt.Sprintf("%dx%d", a.Grid.Width, a.Grid.Height)
}
