package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMustNewFromFile(t *testing.T) {
	raw := `
server:
  host: 127.0.0.1
  port: "9000"
model:
  primary_path: /models/crop.onnx
  image_size: 224
  max_image_size_mb: 4
api:
  max_batch_size: 5
knowledge:
  dataset_path: /data/diseases.json
`

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := MustNew(path)

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != "9000" {
		t.Fatalf("server config %+v", cfg.Server)
	}

	if cfg.Model.PrimaryPath != "/models/crop.onnx" || cfg.Model.ImageSize != 224 {
		t.Fatalf("model config %+v", cfg.Model)
	}

	if cfg.API.MaxBatchSize != 5 {
		t.Fatalf("api config %+v", cfg.API)
	}

	if got := cfg.MaxImageBytes(); got != 4<<20 {
		t.Fatalf("MaxImageBytes() = %d", got)
	}
}

func TestMustNewDefaultsFromEnv(t *testing.T) {
	cfg := MustNew("")

	if cfg.Server.Port != "8080" {
		t.Fatalf("default port %q", cfg.Server.Port)
	}

	if cfg.Model.ImageSize != 224 || cfg.Model.MaxImageSizeMB != 10 {
		t.Fatalf("model defaults %+v", cfg.Model)
	}

	if cfg.API.MaxBatchSize != 10 || cfg.API.MaxTopK != 10 {
		t.Fatalf("api defaults %+v", cfg.API)
	}

	if cfg.Kafka.Topic != "diagnostics" {
		t.Fatalf("kafka defaults %+v", cfg.Kafka)
	}
}
