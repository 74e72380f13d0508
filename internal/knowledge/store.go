package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"cropsight/internal/entity"
)

// ErrNotFound marks an absent record. Callers treat absence as a normal
// case, not a failure.
var ErrNotFound = errors.New("knowledge: record not found")

// Store is a keyed disease/pest information base. Keys are normalized class
// labels (see NormalizeKey).
type Store interface {
	Lookup(ctx context.Context, key string) (*entity.EnrichmentRecord, error)
	Search(ctx context.Context, crop string) ([]entity.EnrichmentRecord, error)
	Close() error
}

// LoadDataset reads the disease dataset shipped with the service: a JSON
// object mapping normalized keys to records.
func LoadDataset(path string) (map[string]entity.EnrichmentRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read disease dataset: %w", err)
	}

	records := make(map[string]entity.EnrichmentRecord)
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse disease dataset: %w", err)
	}

	return records, nil
}
