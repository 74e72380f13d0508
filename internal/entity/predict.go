package entity

import (
	"fmt"
	"strings"
	"time"
)

// Variant selects which loaded model serves a prediction.
type Variant string

const (
	// VariantPrimary is the full-precision graph.
	VariantPrimary Variant = "primary"
	// VariantCompact is the quantized mobile interpreter.
	VariantCompact Variant = "compact"
)

// ParseVariant resolves a request value to a known variant, falling back to
// the given default when the value is empty.
func ParseVariant(s string, fallback Variant) (Variant, error) {
	clean := strings.ToLower(strings.TrimSpace(s))
	if clean == "" {
		return fallback, nil
	}

	switch Variant(clean) {
	case VariantPrimary, VariantCompact:
		return Variant(clean), nil
	}

	return "", fmt.Errorf("%w: unknown model variant %q", ErrInvalidInput, s)
}

// Severity is a confidence-derived risk tier. It is a heuristic over the
// classifier's confidence, not a clinical severity measurement.
type Severity string

const (
	SeverityUncertain Severity = "uncertain"
	SeverityMild      Severity = "mild"
	SeverityModerate  Severity = "moderate"
	SeveritySevere    Severity = "severe"
)

// RankedPrediction is one candidate class with its confidence.
type RankedPrediction struct {
	Class      string  `json:"class"`
	ClassIndex int     `json:"class_index"`
	Confidence float32 `json:"confidence"`
	Percentage string  `json:"confidence_percentage"`
}

// EnrichmentRecord carries descriptive and remediation information for one
// disease, pest, or healthy class.
type EnrichmentRecord struct {
	Name           string              `json:"name"`
	Crop           string              `json:"crop"`
	Category       string              `json:"type"`
	Pathogen       string              `json:"pathogen,omitempty"`
	Symptoms       []string            `json:"symptoms,omitempty"`
	Treatment      map[string][]string `json:"treatment,omitempty"`
	Prevention     []string            `json:"prevention,omitempty"`
	Message        string              `json:"message,omitempty"`
	Recommendation string              `json:"recommendation,omitempty"`
}

// DiagnosticResult is the full outcome for one image.
type DiagnosticResult struct {
	ID           string             `json:"id"`
	Primary      RankedPrediction   `json:"primary_prediction"`
	Alternatives []RankedPrediction `json:"alternative_predictions"`
	Severity     Severity           `json:"severity"`
	Disease      EnrichmentRecord   `json:"disease_information"`
	Variant      Variant            `json:"model_used"`
	Timestamp    time.Time          `json:"timestamp"`
}

// BatchItem is one per-image outcome inside a batch: either a result or an
// error message, tagged with the image's position in the request.
type BatchItem struct {
	Index  int               `json:"image_index"`
	Result *DiagnosticResult `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// BatchResult lists per-image outcomes in request order.
type BatchResult []BatchItem

// ModelMetadata describes the loaded models and label table.
type ModelMetadata struct {
	NumClasses    int      `json:"num_classes"`
	ClassLabels   []string `json:"class_labels"`
	PrimaryLoaded bool     `json:"primary_loaded"`
	CompactLoaded bool     `json:"compact_loaded"`
	InputShape    []int    `json:"input_shape,omitempty"`
	OutputShape   []int    `json:"output_shape,omitempty"`
}
