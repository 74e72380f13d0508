package predictor

import (
	"fmt"
	"sort"

	"cropsight/internal/entity"
)

// rank selects the k most confident classes, descending. Equal confidences
// are ordered by ascending class index so the result is deterministic.
func (r *Service) rank(vec entity.ProbabilityVector, k int) ([]entity.RankedPrediction, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", entity.ErrInvalidInput, k)
	}

	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty probability vector", entity.ErrPipeline)
	}

	if k > len(vec) {
		k = len(vec)
	}

	indices := make([]int, len(vec))
	for i := range indices {
		indices[i] = i
	}

	sort.Slice(indices, func(a, b int) bool {
		if vec[indices[a]] == vec[indices[b]] {
			return indices[a] < indices[b]
		}

		return vec[indices[a]] > vec[indices[b]]
	})

	ranked := make([]entity.RankedPrediction, 0, k)
	for _, idx := range indices[:k] {
		confidence := vec[idx]
		ranked = append(ranked, entity.RankedPrediction{
			Class:      r.backend.Label(idx),
			ClassIndex: idx,
			Confidence: confidence,
			Percentage: fmt.Sprintf("%.2f%%", confidence*100),
		})
	}

	return ranked, nil
}

// severityFor maps the top confidence to a risk tier over half-open
// intervals. This is a confidence heuristic, not a measure of how far the
// disease has progressed.
func severityFor(confidence float32) entity.Severity {
	switch {
	case confidence < 0.5:
		return entity.SeverityUncertain
	case confidence < 0.7:
		return entity.SeverityMild
	case confidence < 0.85:
		return entity.SeverityModerate
	default:
		return entity.SeveritySevere
	}
}
