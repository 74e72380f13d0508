package predictor

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"cropsight/internal/entity"
	"cropsight/internal/knowledge"
)

// enrich attaches disease information to the winning class. Absence of a
// knowledge-base record is a normal case, so this never fails: unknown keys
// and store errors both fall back to a generic advisory.
func (r *Service) enrich(ctx context.Context, label string) entity.EnrichmentRecord {
	key := knowledge.NormalizeKey(label)

	rec, err := r.store.Lookup(ctx, key)
	if err == nil {
		return *rec
	}

	if !errors.Is(err, knowledge.ErrNotFound) {
		r.logger.Warn("knowledge base lookup failed", zap.String("key", key), zap.Error(err))
	}

	return fallbackRecord(label)
}

func fallbackRecord(label string) entity.EnrichmentRecord {
	category := "disease"
	if strings.Contains(strings.ToLower(label), "healthy") {
		category = "healthy"
	}

	return entity.EnrichmentRecord{
		Name:           label,
		Crop:           knowledge.ExtractCropName(label),
		Category:       category,
		Message:        "Detailed information not available in database",
		Recommendation: "Consult with agricultural expert for detailed diagnosis",
	}
}
