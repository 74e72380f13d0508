package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cropsight/internal/entity"
)

const defaultTopK = 3

type predictRequest struct {
	Image   string `json:"image"`
	Variant string `json:"variant"`
	TopK    int    `json:"top_k"`
}

type batchRequest struct {
	Images  []string `json:"images"`
	Variant string   `json:"variant"`
}

func (r *Server) health(ctx *gin.Context) {
	meta := r.predictor.Metadata()

	status := http.StatusOK
	state := "healthy"
	if !r.predictor.IsReady() {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	ctx.JSON(status, gin.H{
		"status":               state,
		"primary_model_loaded": meta.PrimaryLoaded,
		"compact_model_loaded": meta.CompactLoaded,
		"num_classes":          meta.NumClasses,
		"timestamp":            time.Now().UTC(),
	})
}

func (r *Server) modelInfo(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"model_info": r.predictor.Metadata(),
		"timestamp":  time.Now().UTC(),
	})
}

func (r *Server) classes(ctx *gin.Context) {
	meta := r.predictor.Metadata()

	ctx.JSON(http.StatusOK, gin.H{
		"success":     true,
		"classes":     meta.ClassLabels,
		"num_classes": meta.NumClasses,
		"timestamp":   time.Now().UTC(),
	})
}

func (r *Server) searchDiseases(ctx *gin.Context) {
	crop := ctx.Query("crop")
	if crop == "" {
		writeError(ctx, http.StatusBadRequest, "missing 'crop' query parameter", "validation_error")
		return
	}

	found, err := r.predictor.SearchDiseases(ctx.Request.Context(), crop)
	if err != nil {
		writeError(ctx, http.StatusInternalServerError, "knowledge base search failed", "server_error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"crop":      crop,
		"diseases":  found,
		"total":     len(found),
		"timestamp": time.Now().UTC(),
	})
}

func (r *Server) predict(ctx *gin.Context) {
	var body predictRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		writeError(ctx, http.StatusBadRequest, "invalid request body", "validation_error")
		return
	}

	if body.Image == "" {
		writeError(ctx, http.StatusBadRequest, "missing 'image' field", "validation_error")
		return
	}

	variant, err := entity.ParseVariant(body.Variant, entity.VariantPrimary)
	if err != nil {
		writeError(ctx, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	topK := body.TopK
	if topK == 0 {
		topK = defaultTopK
	}

	if topK < 1 || topK > r.maxTopK {
		writeError(ctx, http.StatusBadRequest,
			fmt.Sprintf("top_k must be between 1 and %d", r.maxTopK), "validation_error")
		return
	}

	if !r.predictor.Validate(body.Image) {
		writeError(ctx, http.StatusBadRequest, "invalid image format or size", "validation_error")
		return
	}

	result, err := r.predictor.PredictOne(ctx.Request.Context(), body.Image, variant, topK)
	if err != nil {
		writePredictError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":   true,
		"result":    result,
		"timestamp": time.Now().UTC(),
	})
}

func (r *Server) predictBatch(ctx *gin.Context) {
	var body batchRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		writeError(ctx, http.StatusBadRequest, "invalid request body", "validation_error")
		return
	}

	if len(body.Images) == 0 {
		writeError(ctx, http.StatusBadRequest, "'images' list is empty", "validation_error")
		return
	}

	if len(body.Images) > r.maxBatch {
		writeError(ctx, http.StatusBadRequest,
			fmt.Sprintf("batch size exceeds maximum of %d", r.maxBatch), "validation_error")
		return
	}

	for i, image := range body.Images {
		if image == "" {
			writeError(ctx, http.StatusBadRequest,
				fmt.Sprintf("image at index %d is empty", i), "validation_error")
			return
		}
	}

	variant, err := entity.ParseVariant(body.Variant, entity.VariantPrimary)
	if err != nil {
		writeError(ctx, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	results := r.predictor.PredictBatch(ctx.Request.Context(), body.Images, variant)

	ctx.JSON(http.StatusOK, gin.H{
		"success":         true,
		"results":         results,
		"total_processed": len(results),
		"timestamp":       time.Now().UTC(),
	})
}

// writePredictError maps the pipeline's typed failures onto HTTP status
// codes: input problems are the client's fault, everything else is ours.
func writePredictError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		writeError(ctx, http.StatusBadRequest, err.Error(), "validation_error")
	case errors.Is(err, entity.ErrModelUnavailable):
		writeError(ctx, http.StatusServiceUnavailable, err.Error(), "model_unavailable")
	case errors.Is(err, entity.ErrShapeMismatch):
		writeError(ctx, http.StatusInternalServerError, err.Error(), "server_error")
	default:
		writeError(ctx, http.StatusInternalServerError, "internal server error during prediction", "server_error")
	}
}

func writeError(ctx *gin.Context, status int, msg, errType string) {
	ctx.JSON(status, gin.H{
		"success":    false,
		"error":      msg,
		"error_type": errType,
		"timestamp":  time.Now().UTC(),
	})
}
