package session

import (
	"context"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// Error messages
const (
	ErrMsgSessionNotFound = "session not found"
	ErrMsgEmptyID         = "session id is empty"
	ErrCodeSession        = "SESSION_INVALID"
	ResourceSession       = "session"
	MetaKeyID             = "session_id"
)

// Store persists session values between requests.
type Store interface {
	// Load returns the values saved under id, or a not found error.
	Load(ctx context.Context, id string) (map[string]any, error)
	// Save replaces the values saved under id.
	Save(ctx context.Context, id string, values map[string]any) error
	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]any
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]any),
	}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context, id string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	values, ok := m.sessions[id]
	if !ok {
		return nil, cuserr.NewNotFoundError(ResourceSession, ErrMsgSessionNotFound).
			WithMetadata(MetaKeyID, id)
	}
	return copyValues(values), nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, id string, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return cuserr.NewValidationError(ErrCodeSession, ErrMsgEmptyID)
	}
	m.mu.Lock()
	m.sessions[id] = copyValues(values)
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func copyValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
