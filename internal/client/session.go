package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sweetshop/internal/model"
)

// SessionTTL is how long a stored login stays valid on this machine.
const SessionTTL = 7 * 24 * time.Hour

const (
	tokenCookie = "token"
	userCookie  = "user"
)

// Session is the logged in user and their bearer token.
type Session struct {
	Token string
	User  model.UserSummary
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
}

// MemorySessionStore keeps the session for the lifetime of the process.
type MemorySessionStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Load() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	s := *m.session
	return &s, nil
}

func (m *MemorySessionStore) Save(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

type cookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Expires time.Time `json:"expires"`
}

type cookieJar struct {
	Cookies []cookie `json:"cookies"`
}

// FileSessionStore keeps the token and user as two expiring cookie records in a 0600 JSON file.
type FileSessionStore struct {
	path string
	now  func() time.Time
}

// NewFileSessionStore stores the session at path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path, now: time.Now}
}

// DefaultSessionPath is the session file under the user's config directory.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "sweetshop", "session.json"), nil
}

// Load returns nil when there is no session or the token cookie has expired.
func (f *FileSessionStore) Load() (*Session, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var jar cookieJar
	if err := json.Unmarshal(raw, &jar); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	now := f.now()
	session := &Session{}
	for _, c := range jar.Cookies {
		if !c.Expires.After(now) {
			continue
		}
		switch c.Name {
		case tokenCookie:
			session.Token = c.Value
		case userCookie:
			// a damaged user record still leaves a usable token
			_ = json.Unmarshal([]byte(c.Value), &session.User)
		}
	}
	if session.Token == "" {
		return nil, nil
	}
	return session, nil
}

// Save writes both cookies with a fresh expiry.
func (f *FileSessionStore) Save(s *Session) error {
	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	expires := f.now().Add(SessionTTL)
	jar := cookieJar{Cookies: []cookie{
		{Name: tokenCookie, Value: s.Token, Expires: expires},
		{Name: userCookie, Value: string(user), Expires: expires},
	}}

	payload, err := json.MarshalIndent(jar, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(f.path, payload, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (f *FileSessionStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
