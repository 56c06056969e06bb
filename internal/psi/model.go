package psi

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const (
	syntheticSamples = 500
	randomSeed       = 42

	// Basis columns: intercept, mean_haze^1.2, haze_variance, max_haze,
	// contrast. The exponent matches the non-linear response of the
	// synthetic target, so the least-squares fit recovers it closely.
	basisSize = 5
)

// Model is a least-squares regressor over a fixed basis of the haze
// features. It is immutable after fitting and safe for concurrent use.
type Model struct {
	Coefficients [basisSize]float64 `json:"coefficients"`
}

// modelFile is the serialized coefficient set written next to wherever
// the caller points the handle.
type modelFile struct {
	Coefficients []float64 `json:"coefficients"`
}

// Handle is an explicit, caller-constructed predictor with one-time
// idempotent load-or-train initialization. Concurrent first use triggers
// at most one initialization; afterwards Predict is read-only.
type Handle struct {
	// Path of the persisted model. Empty means train-only, no persistence.
	Path string

	once  sync.Once
	model *Model
	err   error
}

// NewHandle returns a lazy predictor backed by the model file at path.
func NewHandle(path string) *Handle {
	return &Handle{Path: path}
}

func (h *Handle) init() {
	h.model, h.err = loadOrTrain(h.Path)
}

// Predict maps the feature vector to a PSI value, initializing the model
// on first use.
func (h *Handle) Predict(features [4]float64) (float64, error) {
	h.once.Do(h.init)
	if h.err != nil {
		return 0, h.err
	}
	return h.model.Predict(features), nil
}

// Predict evaluates the fitted basis, clamps to [0, MaxPSI] and rounds
// to one decimal.
func (m *Model) Predict(features [4]float64) float64 {
	b := basis(features)
	var psi float64
	for i, c := range m.Coefficients {
		psi += c * b[i]
	}
	if psi < 0 {
		psi = 0
	} else if psi > MaxPSI {
		psi = MaxPSI
	}
	return math.Round(psi*10) / 10
}

func basis(features [4]float64) [basisSize]float64 {
	meanHaze := features[0]
	if meanHaze < 0 {
		meanHaze = 0
	}
	return [basisSize]float64{
		1,
		math.Pow(meanHaze, 1.2),
		features[1],
		features[2],
		features[3],
	}
}

func loadOrTrain(path string) (*Model, error) {
	if path != "" {
		if m, err := Load(path); err == nil {
			return m, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	m := Train()

	if path != "" {
		if err := m.Save(path); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Load reads a persisted model.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f modelFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}
	if len(f.Coefficients) != basisSize {
		return nil, fmt.Errorf("model file %s: expected %d coefficients, got %d", path, basisSize, len(f.Coefficients))
	}
	m := &Model{}
	copy(m.Coefficients[:], f.Coefficients)
	return m, nil
}

// Save persists the model as JSON, creating parent directories.
func (m *Model) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(modelFile{Coefficients: m.Coefficients[:]}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Train fits the model on synthetic (features -> PSI) observations.
// No paired (image, ground-truth PSI) dataset exists, so the target is
// a hand-tuned, physically plausible mapping: mean haze dominates, peak
// haze adds, visible contrast and patchiness subtract. The fixed seed
// keeps training reproducible.
func Train() *Model {
	rng := rand.New(rand.NewSource(randomSeed))

	X := mat.NewDense(syntheticSamples, basisSize, nil)
	y := mat.NewDense(syntheticSamples, 1, nil)

	for i := 0; i < syntheticSamples; i++ {
		meanHaze := 0.05 + rng.Float64()*0.80

		// Denser haze tends to be more uniform, so variance shrinks as
		// the mean grows.
		variance := (0.001 + rng.Float64()*0.079) * (1 - 0.5*meanHaze)

		maxHaze := meanHaze + 0.05 + rng.Float64()*0.15
		if maxHaze > 1 {
			maxHaze = 1
		}

		contrast := (0.1 + rng.Float64()*0.8) * (1.2 - meanHaze)
		if contrast > 1 {
			contrast = 1
		}

		target := 350*math.Pow(meanHaze, 1.2) +
			50*maxHaze -
			10*contrast -
			500*variance +
			rng.NormFloat64()*8
		if target < 0 {
			target = 0
		} else if target > MaxPSI {
			target = MaxPSI
		}

		b := basis([4]float64{meanHaze, variance, maxHaze, contrast})
		X.SetRow(i, b[:])
		y.Set(i, 0, target)
	}

	var qr mat.QR
	qr.Factorize(X)

	var coef mat.Dense
	if err := qr.SolveTo(&coef, false, y); err != nil {
		// The basis columns are linearly independent by construction;
		// a rank failure here would mean a broken generator.
		panic(fmt.Sprintf("psi: least squares solve failed: %v", err))
	}

	m := &Model{}
	for i := 0; i < basisSize; i++ {
		m.Coefficients[i] = coef.At(i, 0)
	}
	return m
}
