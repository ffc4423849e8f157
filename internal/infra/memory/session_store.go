package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"vize-study-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.UserSessionRepository.
// State lives only as long as the process; useful for tests and zero-config runs.
type SessionStore struct {
	mu    sync.RWMutex
	data  []byte
	saved bool
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Load(_ context.Context) (domain.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.saved {
		return domain.DefaultUserSession(), nil
	}
	return decodeEnvelope(s.data)
}

func (s *SessionStore) Save(_ context.Context, session domain.UserSession) error {
	data, err := encodeEnvelope(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.saved = true
	s.mu.Unlock()
	return nil
}

// FileSessionStore persists the learner state as a JSON document on disk,
// matching the single-record layout the redis store uses.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load(_ context.Context) (domain.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultUserSession(), nil
		}
		return domain.DefaultUserSession(), fmt.Errorf("read session file: %w", err)
	}
	return decodeEnvelope(data)
}

func (s *FileSessionStore) Save(_ context.Context, session domain.UserSession) error {
	data, err := encodeEnvelope(session)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// The persisted blob wraps the session in a {"userSession": ...} envelope,
// the shape the original client stored.
type sessionEnvelope struct {
	UserSession json.RawMessage `json:"userSession"`
}

func encodeEnvelope(session domain.UserSession) ([]byte, error) {
	inner, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal user session: %w", err)
	}
	return json.Marshal(sessionEnvelope{UserSession: inner})
}

// DecodeSessionBlob parses a persisted envelope, filling missing fields from
// the defaults so partial or older blobs load instead of failing.
func DecodeSessionBlob(data []byte) (domain.UserSession, error) {
	return decodeEnvelope(data)
}

func decodeEnvelope(data []byte) (domain.UserSession, error) {
	var envelope sessionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return domain.DefaultUserSession(), fmt.Errorf("parse session blob: %w", err)
	}
	if envelope.UserSession == nil {
		return domain.DefaultUserSession(), nil
	}
	session, err := domain.DecodeUserSession(envelope.UserSession)
	if err != nil {
		return domain.DefaultUserSession(), fmt.Errorf("parse user session: %w", err)
	}
	return session, nil
}
