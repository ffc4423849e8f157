package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"vize-study-service/internal/domain"
	"vize-study-service/internal/infra/memory"
	"vize-study-service/internal/question"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogRepository caches the normalized question catalog in Redis and falls
// back to a loader on cache miss. The cache holds the canonical (already
// normalized and shuffled) questions, stored as one JSON array:
// SET {namespace}:catalog {questions} EX {ttl}
type CatalogRepository struct {
	client    *redis.Client
	loader    memory.CatalogLoader
	namespace string
	ttl       time.Duration
	sf        singleflight.Group
	rnd       *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, namespace string, ttl time.Duration) *CatalogRepository {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CatalogRepository{
		client:    client,
		loader:    loader,
		namespace: namespace,
		ttl:       ttl,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetQuestions(ctx context.Context) ([]domain.Question, error) {
	cached, err := r.client.Get(ctx, r.key()).Bytes()
	if err == nil {
		if questions, ok := decodeQuestions(cached); ok {
			return questions, nil
		}
	}

	result, err, _ := r.sf.Do(r.key(), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.Get(ctx, r.key()).Bytes()
		if err == nil {
			if questions, ok := decodeQuestions(cached); ok {
				return questions, nil
			}
		}

		raws, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		questions := question.NormalizeAll(raws)

		if blob, err := json.Marshal(questions); err == nil {
			// best-effort cache fill
			_ = r.client.Set(ctx, r.key(), blob, r.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return result.([]domain.Question), nil
}

func (r *CatalogRepository) key() string {
	return r.namespace + ":catalog"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func decodeQuestions(data []byte) ([]domain.Question, bool) {
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}
