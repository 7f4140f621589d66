package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cookie defaults
const (
	DefaultCookieName = "WEBTMPLSESSID"
	cookiePath        = "/"
)

// Log messages
const (
	LogMsgSessionCreated = "session created"
	LogMsgSessionLoadErr = "session load failed"
	LogMsgSessionSaveErr = "session save failed"
	LogFieldID           = "session_id"
)

type contextKey struct{}

// Manager loads and saves the session of every request it wraps.
type Manager struct {
	store      Store
	prefix     string
	cookieName string
	secure     bool
	now        func() time.Time
	newID      func() string
	logger     *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPrefix sets the key prefix of every session.
func WithPrefix(prefix string) ManagerOption {
	return func(m *Manager) {
		m.prefix = prefix
	}
}

// WithCookieName sets the name of the session cookie.
// Default: "WEBTMPLSESSID"
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookieName = name
		}
	}
}

// WithSecureCookie marks the session cookie as https only.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithClock replaces time.Now for the sessions of this manager.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager saving sessions in store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:      store,
		cookieName: DefaultCookieName,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session saved under id, or a new session with a fresh
// id when id is empty or unknown.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		values, err := m.store.Load(ctx, id)
		if err == nil {
			return newSession(id, m.prefix, m.now, values), nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		m.logger.Debug(LogMsgSessionLoadErr, zap.String(LogFieldID, id), zap.Error(err))
	}

	s := newSession(m.newID(), m.prefix, m.now, nil)
	m.logger.Debug(LogMsgSessionCreated, zap.String(LogFieldID, s.id))
	return s, nil
}

// Save writes s to the store, or deletes it when it was destroyed.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s.Destroyed() {
		return m.store.Delete(ctx, s.id)
	}
	return m.store.Save(ctx, s.id, s.snapshot())
}

// Middleware attaches the visitor session to the request context and saves
// it once next returns.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(m.cookieName); err == nil {
			id = c.Value
		}

		s, err := m.Load(r.Context(), id)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		if s.id != id {
			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    s.id,
				Path:     cookiePath,
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))

		if err := m.Save(r.Context(), s); err != nil {
			m.logger.Warn(LogMsgSessionSaveErr, zap.String(LogFieldID, s.id), zap.Error(err))
		}
	})
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}
