package predictor

import (
	"context"

	"go.uber.org/zap"

	"cropsight/internal/entity"
)

// PredictBatch runs the single-item pipeline over every image, isolating
// per-item failures: a bad image yields a failure entry at its position and
// the loop moves on. Output order always matches input order. Batch items
// report only the primary diagnosis to keep bulk payloads small.
func (r *Service) PredictBatch(ctx context.Context, images []string, variant entity.Variant) entity.BatchResult {
	items := make(entity.BatchResult, 0, len(images))

	for i, image := range images {
		res, err := r.PredictOne(ctx, image, variant, 1)
		if err != nil {
			r.logger.Error("batch item failed", zap.Int("index", i), zap.Error(err))
			items = append(items, entity.BatchItem{Index: i, Error: err.Error()})
			continue
		}

		items = append(items, entity.BatchItem{Index: i, Result: res})
	}

	return items
}
