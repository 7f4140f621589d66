// Package session keeps per-visitor state between requests. Keys written by
// a Session carry a prefix so several applications can share one store
// without clashing.
//
//	manager := session.NewManager(session.NewMemoryStore(), session.WithPrefix("MyApp_"))
//	http.Handle("/", manager.Middleware(handler))
//
//	// inside handler
//	s, _ := session.FromContext(r.Context())
//	s.Register(60)
//	s.Set("user", "john")
package session

import (
	"strings"
	"sync"
	"time"
)

// Reserved keys, stored with the prefix.
const (
	KeyID      = "session_id"
	KeyMinutes = "session_time"
	KeyExpires = "session_start"
	KeyFlash   = "flash_"
)

// DefaultMinutes is the validity used by Register when minutes <= 0.
const DefaultMinutes = 60

// Session is the state of one visitor. It is safe for concurrent use.
type Session struct {
	id     string
	prefix string
	now    func() time.Time

	mu        sync.RWMutex
	values    map[string]any
	destroyed bool
}

// New creates an empty session with the given store id and key prefix.
// A nil clock uses time.Now.
func New(id, prefix string, now func() time.Time) *Session {
	return newSession(id, prefix, now, nil)
}

func newSession(id, prefix string, now func() time.Time, values map[string]any) *Session {
	if now == nil {
		now = time.Now
	}
	if values == nil {
		values = make(map[string]any)
	}
	return &Session{
		id:     id,
		prefix: strings.TrimSpace(prefix),
		now:    now,
		values: values,
	}
}

func (s *Session) key(name string) string {
	return s.prefix + name
}

// StoreID returns the id the session is saved under.
func (s *Session) StoreID() string {
	return s.id
}

// Register marks the session valid for minutes from now.
func (s *Session) Register(minutes int) {
	if minutes <= 0 {
		minutes = DefaultMinutes
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[s.key(KeyID)] = s.id
	s.values[s.key(KeyMinutes)] = minutes
	s.values[s.key(KeyExpires)] = s.now().Add(time.Duration(minutes) * time.Minute)
}

// IsRegistered reports whether Register was called.
func (s *Session) IsRegistered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, _ := s.values[s.key(KeyID)].(string)
	return id != ""
}

// ID returns the registered session id, or "" before Register.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, _ := s.values[s.key(KeyID)].(string)
	return id
}

// IsExpired reports whether the validity window has passed. A session that
// was never registered is expired.
func (s *Session) IsExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expires, ok := s.values[s.key(KeyExpires)].(time.Time)
	if !ok {
		return true
	}
	return expires.Before(s.now())
}

// Renew restarts the validity window with the registered duration.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	minutes, ok := s.values[s.key(KeyMinutes)].(int)
	if !ok {
		minutes = DefaultMinutes
	}
	s.values[s.key(KeyExpires)] = s.now().Add(time.Duration(minutes) * time.Minute)
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	s.values[s.key(key)] = value
	s.mu.Unlock()
}

// Get returns the value stored under key, or def.
func (s *Session) Get(key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[s.key(key)]; ok {
		return v
	}
	return def
}

// Remove deletes key.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	delete(s.values, s.key(key))
	s.mu.Unlock()
}

// Flash stores a value that GetFlash returns only once.
func (s *Session) Flash(key string, value any) {
	s.Set(KeyFlash+key, value)
}

// GetFlash returns and removes a flash value, or def.
func (s *Session) GetFlash(key string, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(KeyFlash + key)
	v, ok := s.values[k]
	if !ok {
		return def
	}
	delete(s.values, k)
	return v
}

// All returns a copy of every value, with the prefix removed from the keys
// that carry it.
func (s *Session) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[strings.TrimPrefix(k, s.prefix)] = v
	}
	return out
}

// Destroy drops every value. The manager deletes destroyed sessions from
// the store at the end of the request.
func (s *Session) Destroy() {
	s.mu.Lock()
	s.values = make(map[string]any)
	s.destroyed = true
	s.mu.Unlock()
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}

func (s *Session) snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
