package pipeline

import (
	"context"
	"fmt"

	"haze-estimator/internal/features"
	"haze-estimator/internal/grid"
	"haze-estimator/internal/haze"
	"haze-estimator/internal/psi"
)

// analyzeGrid runs the numeric stages over a preprocessed pixel grid.
// The context is checked between stages only; individual stages run to
// completion once started.
func (c *Coordinator) analyzeGrid(ctx context.Context, g *grid.PixelGrid) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := haze.Estimate(g, c.params.Haze)
	if err != nil {
		c.logger.Error("HazeEstimator", err, nil)
		return nil, fmt.Errorf("haze estimation failed: %w", err)
	}

	c.logger.Debug("HazeEstimator", "haze fields computed", map[string]interface{}{
		"atmospheric_light": result.AtmosphericLight.Value,
		"channel_order":     result.AtmosphericLight.Order.String(),
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vector, err := features.Extract(result.HazeMap)
	if err != nil {
		c.logger.Error("FeatureExtractor", err, nil)
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}

	analysis := &Analysis{
		Grid:     g,
		Haze:     result,
		Features: vector,
	}

	if c.predictor == nil {
		return analysis, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	value, err := c.predictor.Predict(vector.Vector())
	if err != nil {
		c.logger.Error("Predictor", err, nil)
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	analysis.PSI = value
	analysis.Category = psi.Category(value)
	analysis.Predicted = true
	return analysis, nil
}
