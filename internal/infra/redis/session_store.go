package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"vize-study-service/internal/domain"
	"vize-study-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
)

// SessionStore keeps the durable learner state in Redis as a single JSON
// blob under a fixed namespace key. The in-progress quiz is never written, so
// a restart loses the quiz but keeps accumulated progress.
type SessionStore struct {
	client    *redis.Client
	namespace string
}

func NewSessionStore(client *redis.Client, namespace string) *SessionStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &SessionStore{client: client, namespace: namespace}
}

// DefaultNamespace is the storage key prefix the original client used.
const DefaultNamespace = "vizeCanavariSession"

func (s *SessionStore) Load(ctx context.Context) (domain.UserSession, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return domain.DefaultUserSession(), nil
	}
	if err != nil {
		return domain.DefaultUserSession(), fmt.Errorf("load session: %w", err)
	}
	return memory.DecodeSessionBlob(data)
}

func (s *SessionStore) Save(ctx context.Context, session domain.UserSession) error {
	inner, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	blob, err := json.Marshal(map[string]json.RawMessage{"userSession": inner})
	if err != nil {
		return fmt.Errorf("marshal session blob: %w", err)
	}
	if err := s.client.Set(ctx, s.key(), blob, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) key() string {
	return s.namespace + ":session"
}
