package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cropsight/internal/entity"
	"cropsight/internal/knowledge"
	"cropsight/internal/predictor"
	"cropsight/internal/preprocess"
	"cropsight/internal/publish"
)

type stubBackend struct {
	vec    entity.ProbabilityVector
	err    error
	labels []string
	ready  bool
}

func (s *stubBackend) Predict(*entity.ImageTensor, entity.Variant) (entity.ProbabilityVector, error) {
	return s.vec, s.err
}

func (s *stubBackend) Label(index int) string {
	if index >= 0 && index < len(s.labels) {
		return s.labels[index]
	}

	return fmt.Sprintf("unknown_class_%d", index)
}

func (s *stubBackend) IsReady() bool {
	return s.ready
}

func (s *stubBackend) Metadata() entity.ModelMetadata {
	return entity.ModelMetadata{
		NumClasses:    len(s.labels),
		ClassLabels:   s.labels,
		PrimaryLoaded: s.ready,
	}
}

func newTestAPI(t *testing.T, b *stubBackend) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := predictor.New(
		preprocess.New(8, 1<<20, zap.NewNop()),
		b,
		knowledge.NewMemoryStore(map[string]entity.EnrichmentRecord{
			"tomato_early_blight": {Name: "Tomato Early Blight", Crop: "Tomato", Category: "disease"},
		}),
		publish.NopPublisher{},
		zap.NewNop(),
	)

	srv := New("127.0.0.1", "0", svc, 3, 10, zap.NewNop())

	return srv.newAPI()
}

func healthyBackend() *stubBackend {
	return &stubBackend{
		vec:    entity.ProbabilityVector{0.1, 0.9},
		labels: []string{"Tomato_healthy", "Tomato_Early_blight"},
		ready:  true,
	}
}

func testImage(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func doJSON(t *testing.T, api *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	return body
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	rec := doJSON(t, api, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "healthy" || body["num_classes"] != float64(2) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHealthNotReady(t *testing.T) {
	api := newTestAPI(t, &stubBackend{})

	rec := doJSON(t, api, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestClasses(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	rec := doJSON(t, api, http.MethodGet, "/v1/classes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	body := decodeBody(t, rec)
	classes, ok := body["classes"].([]any)
	if !ok || len(classes) != 2 {
		t.Fatalf("unexpected classes: %v", body["classes"])
	}
}

func TestPredict(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	payload := fmt.Sprintf(`{"image": %q, "top_k": 2}`, testImage(t))

	rec := doJSON(t, api, http.MethodPost, "/v1/predict", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Fatalf("unexpected body: %v", body)
	}

	result, ok := body["result"].(map[string]any)
	if !ok {
		t.Fatalf("missing result: %v", body)
	}

	primary := result["primary_prediction"].(map[string]any)
	if primary["class"] != "Tomato_Early_blight" {
		t.Fatalf("primary class %v", primary["class"])
	}

	if result["severity"] != "severe" {
		t.Fatalf("severity %v", result["severity"])
	}
}

func TestPredictValidation(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing image", `{"top_k": 3}`},
		{"unknown variant", fmt.Sprintf(`{"image": %q, "variant": "tflite"}`, testImage(t))},
		{"top_k too large", fmt.Sprintf(`{"image": %q, "top_k": 99}`, testImage(t))},
		{"top_k negative", fmt.Sprintf(`{"image": %q, "top_k": -2}`, testImage(t))},
		{"corrupt image", `{"image": "bm90IGFuIGltYWdl"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, api, http.MethodPost, "/v1/predict", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}

			body := decodeBody(t, rec)
			if body["success"] != false || body["error_type"] != "validation_error" {
				t.Fatalf("unexpected body: %v", body)
			}
		})
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	api := newTestAPI(t, &stubBackend{err: entity.ErrModelUnavailable, ready: true})

	payload := fmt.Sprintf(`{"image": %q, "variant": "compact"}`, testImage(t))

	rec := doJSON(t, api, http.MethodPost, "/v1/predict", payload)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", rec.Code)
	}
}

func TestPredictBatch(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	img := testImage(t)
	payload := fmt.Sprintf(`{"images": [%q, "bm90IGFuIGltYWdl", %q]}`, img, img)

	rec := doJSON(t, api, http.MethodPost, "/v1/predict/batch", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	results, ok := body["results"].([]any)
	if !ok || len(results) != 3 {
		t.Fatalf("unexpected results: %v", body["results"])
	}

	middle := results[1].(map[string]any)
	if middle["image_index"] != float64(1) || middle["error"] == nil {
		t.Fatalf("corrupt item not reported as failure: %v", middle)
	}
}

func TestPredictBatchValidation(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	img := testImage(t)
	cases := []struct {
		name string
		body string
	}{
		{"empty list", `{"images": []}`},
		{"too many", fmt.Sprintf(`{"images": [%q, %q, %q, %q]}`, img, img, img, img)},
		{"empty item", fmt.Sprintf(`{"images": [%q, ""]}`, img)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, api, http.MethodPost, "/v1/predict/batch", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
		})
	}
}

func TestSearchDiseases(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	rec := doJSON(t, api, http.MethodGet, "/v1/diseases/search?crop=Tomato", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["total"] != float64(1) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSearchDiseasesMissingCrop(t *testing.T) {
	api := newTestAPI(t, healthyBackend())

	rec := doJSON(t, api, http.MethodGet, "/v1/diseases/search", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}
