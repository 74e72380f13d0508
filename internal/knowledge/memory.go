package knowledge

import (
	"context"
	"sort"
	"strings"

	"cropsight/internal/entity"
)

// MemoryStore serves records from an in-process map. It is the default store
// and the seed source for the redis and postgres stores.
type MemoryStore struct {
	records map[string]entity.EnrichmentRecord
}

func NewMemoryStore(records map[string]entity.EnrichmentRecord) *MemoryStore {
	if records == nil {
		records = make(map[string]entity.EnrichmentRecord)
	}

	return &MemoryStore{records: records}
}

func (r *MemoryStore) Lookup(_ context.Context, key string) (*entity.EnrichmentRecord, error) {
	rec, ok := r.records[key]
	if !ok {
		return nil, ErrNotFound
	}

	return &rec, nil
}

func (r *MemoryStore) Search(_ context.Context, crop string) ([]entity.EnrichmentRecord, error) {
	keys := make([]string, 0, len(r.records))
	for key, rec := range r.records {
		if strings.EqualFold(rec.Crop, crop) {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	found := make([]entity.EnrichmentRecord, 0, len(keys))
	for _, key := range keys {
		found = append(found, r.records[key])
	}

	return found, nil
}

func (r *MemoryStore) Close() error {
	return nil
}

// Records exposes the full dataset for seeding external stores.
func (r *MemoryStore) Records() map[string]entity.EnrichmentRecord {
	return r.records
}
