package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cropsight/internal/entity"
	"cropsight/internal/knowledge"
	"cropsight/internal/preprocess"
	"cropsight/internal/publish"
)

// InferenceBackend is the model surface the pipeline consumes.
type InferenceBackend interface {
	Predict(t *entity.ImageTensor, variant entity.Variant) (entity.ProbabilityVector, error)
	Label(index int) string
	IsReady() bool
	Metadata() entity.ModelMetadata
}

// Service orchestrates the prediction pipeline: normalize, infer, rank,
// enrich. All collaborators are bound at construction and never mutated.
type Service struct {
	normalizer *preprocess.Normalizer
	backend    InferenceBackend
	store      knowledge.Store
	publisher  publish.Publisher
	logger     *zap.Logger
}

func New(
	normalizer *preprocess.Normalizer,
	backend InferenceBackend,
	store knowledge.Store,
	publisher publish.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		normalizer: normalizer,
		backend:    backend,
		store:      store,
		publisher:  publisher,
		logger:     logger.Named("predictor"),
	}
}

// PredictOne runs the full pipeline over one base64 image payload and
// returns the top-k diagnosis.
func (r *Service) PredictOne(ctx context.Context, image string, variant entity.Variant, k int) (*entity.DiagnosticResult, error) {
	tensor, err := r.normalizer.NormalizeEncoded(image)
	if err != nil {
		return nil, err
	}

	vec, err := r.backend.Predict(tensor, variant)
	if err != nil {
		return nil, err
	}

	ranked, err := r.rank(vec, k)
	if err != nil {
		return nil, err
	}

	primary := ranked[0]

	result := &entity.DiagnosticResult{
		ID:           uuid.NewString(),
		Primary:      primary,
		Alternatives: ranked[1:],
		Severity:     severityFor(primary.Confidence),
		Disease:      r.enrich(ctx, primary.Class),
		Variant:      variant,
		Timestamp:    time.Now().UTC(),
	}

	r.logger.Info("prediction complete",
		zap.String("id", result.ID),
		zap.String("class", primary.Class),
		zap.Float32("confidence", primary.Confidence),
		zap.String("variant", string(variant)),
	)

	if err := r.publisher.Publish(ctx, result); err != nil {
		// Downstream delivery is best-effort; the diagnosis still stands.
		r.logger.Error("publish result", zap.String("id", result.ID), zap.Error(err))
	}

	return result, nil
}

// Validate is the cheap pre-check exposed to the transport layer.
func (r *Service) Validate(image string) bool {
	return r.normalizer.ValidateEncoded(image)
}

func (r *Service) IsReady() bool {
	return r.backend.IsReady()
}

func (r *Service) Metadata() entity.ModelMetadata {
	return r.backend.Metadata()
}

// SearchDiseases lists knowledge-base records for one crop.
func (r *Service) SearchDiseases(ctx context.Context, crop string) ([]entity.EnrichmentRecord, error) {
	found, err := r.store.Search(ctx, crop)
	if err != nil {
		return nil, fmt.Errorf("search diseases: %w", err)
	}

	return found, nil
}
