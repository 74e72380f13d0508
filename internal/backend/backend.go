package backend

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"cropsight/internal/entity"
)

// Config locates the model artifacts. Either model path may be empty; the
// corresponding variant is then simply not loaded.
type Config struct {
	PrimaryPath string
	CompactPath string
	LabelsPath  string
	ImageSize   int
}

// engine runs one loaded model representation.
type engine interface {
	infer(t *entity.ImageTensor) ([]float32, error)
	close() error
}

// Backend owns the loaded model artifacts for the process lifetime. Both
// variants are independently optional; at least one must load, and the label
// table must be non-empty, or New fails so the process can refuse to serve.
type Backend struct {
	primary   engine
	compact   engine
	labels    []string
	inputSize int
	logger    *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Backend, error) {
	logger = logger.Named("backend")

	labels, err := loadLabels(cfg.LabelsPath)
	if err != nil {
		return nil, err
	}

	r := &Backend{
		labels:    labels,
		inputSize: cfg.ImageSize,
		logger:    logger,
	}

	if cfg.PrimaryPath != "" {
		primary, err := newGraphEngine(cfg.PrimaryPath, cfg.ImageSize)
		if err != nil {
			logger.Warn("primary model not loaded", zap.String("path", cfg.PrimaryPath), zap.Error(err))
		} else {
			r.primary = primary
			logger.Info("primary model loaded", zap.String("path", cfg.PrimaryPath))
		}
	}

	if cfg.CompactPath != "" {
		compact, err := newInterpreterEngine(cfg.CompactPath, cfg.ImageSize, len(labels))
		if err != nil {
			logger.Warn("compact model not loaded", zap.String("path", cfg.CompactPath), zap.Error(err))
		} else {
			r.compact = compact
			logger.Info("compact model loaded", zap.String("path", cfg.CompactPath))
		}
	}

	if r.primary == nil && r.compact == nil {
		return nil, fmt.Errorf("no model variant loaded")
	}

	if r.primary == nil || r.compact == nil {
		logger.Warn("running degraded with a single model variant")
	}

	return r, nil
}

// Predict runs the selected variant over the tensor and returns the class
// probability distribution.
func (r *Backend) Predict(t *entity.ImageTensor, variant entity.Variant) (entity.ProbabilityVector, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil tensor", entity.ErrInvalidInput)
	}

	if t.Height != r.inputSize || t.Width != r.inputSize || len(t.Data) != r.inputSize*r.inputSize*3 {
		return nil, fmt.Errorf("%w: got (1, %d, %d, 3), model expects (1, %d, %d, 3)",
			entity.ErrShapeMismatch, t.Height, t.Width, r.inputSize, r.inputSize)
	}

	var eng engine
	switch variant {
	case entity.VariantPrimary:
		eng = r.primary
	case entity.VariantCompact:
		eng = r.compact
	default:
		return nil, fmt.Errorf("%w: unknown model variant %q", entity.ErrInvalidInput, variant)
	}

	if eng == nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrModelUnavailable, variant)
	}

	vec, err := eng.infer(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %s inference: %v", entity.ErrPipeline, variant, err)
	}

	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: %s produced an empty output", entity.ErrPipeline, variant)
	}

	return normalizeScores(vec), nil
}

// Label resolves a class index defensively: an out-of-range index yields a
// placeholder instead of aborting an otherwise valid prediction.
func (r *Backend) Label(index int) string {
	if index >= 0 && index < len(r.labels) {
		return r.labels[index]
	}

	return fmt.Sprintf("unknown_class_%d", index)
}

// IsReady reports whether the backend can serve: at least one variant loaded
// and a non-empty label table.
func (r *Backend) IsReady() bool {
	return (r.primary != nil || r.compact != nil) && len(r.labels) > 0
}

func (r *Backend) Metadata() entity.ModelMetadata {
	meta := entity.ModelMetadata{
		NumClasses:    len(r.labels),
		ClassLabels:   r.labels,
		PrimaryLoaded: r.primary != nil,
		CompactLoaded: r.compact != nil,
	}

	if r.primary != nil || r.compact != nil {
		meta.InputShape = []int{1, r.inputSize, r.inputSize, 3}
		meta.OutputShape = []int{1, len(r.labels)}
	}

	return meta
}

func (r *Backend) Close() error {
	var err error
	if r.primary != nil {
		err = r.primary.close()
	}

	if r.compact != nil {
		if cerr := r.compact.close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// normalizeScores applies softmax when the output is not already a
// probability distribution. Exported graphs sometimes ship without the final
// activation layer.
func normalizeScores(vec []float32) entity.ProbabilityVector {
	var sum float32
	inRange := true
	for _, v := range vec {
		if v < 0 || v > 1 {
			inRange = false
			break
		}
		sum += v
	}

	if inRange && math.Abs(float64(sum)-1.0) < 0.01 {
		return vec
	}

	return softmax(vec)
}

func softmax(vec []float32) entity.ProbabilityVector {
	max := vec[0]
	for _, v := range vec[1:] {
		if v > max {
			max = v
		}
	}

	out := make(entity.ProbabilityVector, len(vec))
	var sum float64
	for i, v := range vec {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}

	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}

	return out
}
