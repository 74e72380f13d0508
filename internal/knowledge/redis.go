package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"cropsight/internal/entity"
)

const (
	diseaseKeyPrefix = "disease:"
	cropKeyPrefix    = "crop:"
)

// RedisStore keeps records as JSON values under disease:<key>, with a set
// per crop for search.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Seed writes the dataset into redis. Existing keys are overwritten, so
// seeding is safe to repeat on every startup.
func (r *RedisStore) Seed(ctx context.Context, records map[string]entity.EnrichmentRecord) error {
	for key, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", key, err)
		}

		if err := r.client.Set(ctx, diseaseKeyPrefix+key, b, 0).Err(); err != nil {
			return fmt.Errorf("seed record %q: %w", key, err)
		}

		if rec.Crop == "" {
			continue
		}

		if err := r.client.SAdd(ctx, cropKeyPrefix+strings.ToLower(rec.Crop), key).Err(); err != nil {
			return fmt.Errorf("index record %q: %w", key, err)
		}
	}

	return nil
}

func (r *RedisStore) Lookup(ctx context.Context, key string) (*entity.EnrichmentRecord, error) {
	cmd := r.client.Get(ctx, diseaseKeyPrefix+key)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	b, err := cmd.Bytes()
	if err != nil {
		return nil, err
	}

	var rec entity.EnrichmentRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *RedisStore) Search(ctx context.Context, crop string) ([]entity.EnrichmentRecord, error) {
	keys, err := r.client.SMembers(ctx, cropKeyPrefix+strings.ToLower(crop)).Result()
	if err != nil {
		return nil, err
	}

	found := make([]entity.EnrichmentRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := r.Lookup(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}

			return nil, err
		}

		found = append(found, *rec)
	}

	return found, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
