// Command haze-estimator analyzes an outdoor photograph and reports an
// approximate pollution standards index derived from atmospheric haze.
//
// Usage:
//
//	haze-estimator -image photo.jpg [-out haze.png] [-model psi.json]
//	haze-estimator -synth [-synth-dir samples]
//
// The -synth mode generates three canonical scenes (haze 0.1 / 0.4 /
// 0.8), analyzes each and verifies that the estimate preserves their
// ordering.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"haze-estimator/internal/haze"
	"haze-estimator/internal/logger"
	"haze-estimator/internal/pipeline"
	"haze-estimator/internal/psi"
	"haze-estimator/internal/render"
	"haze-estimator/internal/synth"
)

func main() {
	var (
		imagePath  = flag.String("image", "", "path of the outdoor image to analyze")
		outPath    = flag.String("out", "", "write the haze map visualization to this PNG path")
		modelPath  = flag.String("model", "psi_model.json", "path of the persisted predictor model")
		patchSize  = flag.Int("patch", haze.DefaultPatchSize, "dark channel patch size (odd, >= 1)")
		omega      = flag.Float64("omega", haze.DefaultOmega, "haze retention factor in (0,1)")
		topPercent = flag.Float64("top", haze.DefaultTopPercent, "atmospheric light candidate fraction in (0,1]")
		synthMode  = flag.Bool("synth", false, "run the synthetic three-scene ordering check")
		synthDir   = flag.String("synth-dir", "", "also write the generated scenes to this directory")
	)
	flag.Parse()

	log := logger.NewConsoleLogger(logger.LevelFromEnv())

	params := pipeline.DefaultParams()
	params.Haze.PatchSize = *patchSize
	params.Haze.Omega = *omega
	params.Haze.TopPercent = *topPercent

	coordinator, err := pipeline.NewCoordinator(params, psi.NewHandle(*modelPath), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid parameters: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	switch {
	case *synthMode:
		if err := runSyntheticCheck(ctx, coordinator, *synthDir); err != nil {
			fmt.Fprintf(os.Stderr, "synthetic check failed: %v\n", err)
			os.Exit(1)
		}
	case *imagePath != "":
		if err := analyzeFile(ctx, coordinator, *imagePath, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-sigChan
		cancel()
	}()
}

func analyzeFile(ctx context.Context, coordinator *pipeline.Coordinator, path, outPath string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	analysis, err := coordinator.AnalyzeBytes(ctx, data)
	if err != nil {
		return err
	}

	printAnalysis(path, analysis)

	if outPath != "" {
		if err := render.WritePNG(outPath, analysis.Haze.HazeMap); err != nil {
			return err
		}
		fmt.Printf("haze map written to %s\n", outPath)
	}
	return nil
}

func printAnalysis(label string, a *pipeline.Analysis) {
	fmt.Printf("%s (%s -> %s)\n", label, a.SourceSize(), a.ProcessedSize())
	fmt.Printf("  mean_haze      %.4f\n", a.Features.MeanHaze)
	fmt.Printf("  haze_variance  %.6f\n", a.Features.HazeVariance)
	fmt.Printf("  max_haze       %.4f\n", a.Features.MaxHaze)
	fmt.Printf("  contrast       %.4f\n", a.Features.Contrast)
	if a.Predicted {
		fmt.Printf("  PSI            %.1f (%s)\n", a.PSI, a.Category)
	}
	fmt.Println("  note: the PSI value is an uncalibrated proxy, not a sensor reading")
}

// runSyntheticCheck mirrors the pipeline's ordering self-check: three
// fixed scenes with increasing haze must produce strictly increasing
// mean haze and strictly increasing PSI.
func runSyntheticCheck(ctx context.Context, coordinator *pipeline.Coordinator, dir string) error {
	levels := []float64{0.1, 0.4, 0.8}
	labels := []string{"clear", "medium", "heavy"}

	var meanHaze, psiValues []float64
	for i, level := range levels {
		img := synth.UrbanScene(640, 480, level)

		if dir != "" {
			if err := writeScene(dir, labels[i], img); err != nil {
				return err
			}
		}

		analysis, err := coordinator.AnalyzeImage(ctx, img)
		if err != nil {
			return fmt.Errorf("scene %s: %w", labels[i], err)
		}
		printAnalysis(fmt.Sprintf("%s (haze=%.1f)", labels[i], level), analysis)
		meanHaze = append(meanHaze, analysis.Features.MeanHaze)
		psiValues = append(psiValues, analysis.PSI)
	}

	if !(meanHaze[0] < meanHaze[1] && meanHaze[1] < meanHaze[2]) {
		return fmt.Errorf("mean haze not increasing: %v", meanHaze)
	}
	if !(psiValues[0] < psiValues[1] && psiValues[1] < psiValues[2]) {
		return fmt.Errorf("PSI not increasing: %v", psiValues)
	}
	fmt.Println("ordering check passed: clear < medium < heavy")
	return nil
}

func writeScene(dir, label string, img *image.NRGBA) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("sample_%s.png", label))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return err
	}
	fmt.Printf("scene written to %s\n", path)
	return nil
}
