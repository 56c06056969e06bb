// Package pipeline wires the stages of the haze estimation into a
// single linear pass: preprocess, dark channel, atmospheric light,
// transmission, haze map, feature extraction, prediction. Each stage is
// a pure function of its inputs; the coordinator adds logging, context
// cancellation between stages, and the injected predictor.
package pipeline

import (
	"context"
	"image"
	"time"

	"haze-estimator/internal/haze"
	"haze-estimator/internal/logger"
	"haze-estimator/internal/preprocess"
	"haze-estimator/internal/psi"
)

// Analyzer is the surface the embedding layer (CLI, service) consumes.
type Analyzer interface {
	AnalyzeBytes(ctx context.Context, data []byte) (*Analysis, error)
	AnalyzeImage(ctx context.Context, img image.Image) (*Analysis, error)
}

// Params bundles the per-stage configuration.
type Params struct {
	Preprocess preprocess.Params
	Haze       haze.Params
}

func DefaultParams() Params {
	return Params{
		Preprocess: preprocess.DefaultParams(),
		Haze:       haze.DefaultParams(),
	}
}

// Coordinator runs the pipeline. It holds no per-image state: every
// invocation allocates fresh grids and fields, so one coordinator may
// serve concurrent callers. The predictor is caller-constructed and
// must be safe for concurrent use after its one-time initialization.
type Coordinator struct {
	params    Params
	predictor psi.Predictor
	logger    logger.Logger
}

// NewCoordinator builds a pipeline with an injected predictor. A nil
// predictor is allowed; analyses then stop after feature extraction.
func NewCoordinator(params Params, predictor psi.Predictor, log logger.Logger) (*Coordinator, error) {
	if log == nil {
		log = logger.Nop{}
	}
	if err := params.Haze.Validate(); err != nil {
		return nil, err
	}

	log.Info("PipelineCoordinator", "initialized", map[string]interface{}{
		"patch_size":  params.Haze.PatchSize,
		"omega":       params.Haze.Omega,
		"top_percent": params.Haze.TopPercent,
	})

	return &Coordinator{
		params:    params,
		predictor: predictor,
		logger:    log,
	}, nil
}

// AnalyzeBytes decodes raw image bytes and analyzes them.
func (c *Coordinator) AnalyzeBytes(ctx context.Context, data []byte) (*Analysis, error) {
	img, format, err := preprocess.Decode(data)
	if err != nil {
		c.logger.Error("PipelineCoordinator", err, nil)
		return nil, err
	}

	c.logger.Debug("PipelineCoordinator", "image decoded", map[string]interface{}{
		"format": format,
	})

	analysis, err := c.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, err
	}
	analysis.Format = format
	return analysis, nil
}

// AnalyzeImage runs the pipeline over a decoded image.
func (c *Coordinator) AnalyzeImage(ctx context.Context, img image.Image) (*Analysis, error) {
	start := time.Now()

	g, err := preprocess.Run(img, c.params.Preprocess)
	if err != nil {
		c.logger.Error("Preprocessor", err, nil)
		return nil, err
	}

	analysis, err := c.analyzeGrid(ctx, g)
	if err != nil {
		return nil, err
	}

	analysis.ProcessingTime = time.Since(start)
	bounds := img.Bounds()
	analysis.SourceWidth = bounds.Dx()
	analysis.SourceHeight = bounds.Dy()

	c.logger.Info("PipelineCoordinator", "analysis completed", map[string]interface{}{
		"source_size":    analysis.SourceSize(),
		"processed_size": analysis.ProcessedSize(),
		"mean_haze":      analysis.Features.MeanHaze,
		"psi":            analysis.PSI,
		"category":       analysis.Category,
		"elapsed":        analysis.ProcessingTime.String(),
	})
	return analysis, nil
}
