package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"vize-study-service/internal/domain"
	"vize-study-service/internal/question"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches raw question records from a backing store (file,
// Postgres, etc). Records are normalized after loading, never before.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]any, error)
}

// CatalogRepository normalizes and caches the question catalog with a TTL to
// avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetQuestions(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.questions != nil && r.expiresAt.After(now) {
		questions := r.questions
		r.mu.RUnlock()
		return questions, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.questions != nil && r.expiresAt.After(now) {
			questions := r.questions
			r.mu.RUnlock()
			return questions, nil
		}
		r.mu.RUnlock()

		raws, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		questions := question.NormalizeAll(raws)

		r.mu.Lock()
		r.questions = questions
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves raw records from memory (useful for tests/demos).
type StaticCatalogLoader struct {
	records []any
}

func NewStaticCatalogLoader(records []any) *StaticCatalogLoader {
	return &StaticCatalogLoader{records: records}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) ([]any, error) {
	if l.records == nil {
		return nil, domain.ErrCatalogNotFound
	}
	return l.records, nil
}

// FileCatalogLoader reads raw records from a JSON document, the same shape
// the original catalog ships as.
type FileCatalogLoader struct {
	path string
}

func NewFileCatalogLoader(path string) *FileCatalogLoader {
	return &FileCatalogLoader{path: path}
}

func (l *FileCatalogLoader) LoadCatalog(_ context.Context) ([]any, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var records []any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return records, nil
}
