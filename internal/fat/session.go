package fat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

const sessionKey = "session"

type sessionRecord struct {
	User       string    `json:"user"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Session tracks the acting user between invocations. It only resolves an
// identity; operations still receive the actor explicitly.
type Session struct {
	mu      sync.Mutex
	records RecordStore
	users   *UserDirectory
	clock   Clock
	logger  Logger
}

// NewSession creates a Session persisted in records.
func NewSession(records RecordStore, users *UserDirectory, clock Clock, logger Logger) *Session {
	return &Session{
		records: records,
		users:   users,
		clock:   clock,
		logger:  withComponent(logger, "session"),
	}
}

// Login verifies the credentials and makes username the acting user.
func (s *Session) Login(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.users.Verify(username, password) {
		s.logger.Warn("login failed", "user", username)
		return fmt.Errorf("%w: invalid username or password", ErrPermissionDenied)
	}

	data, err := json.Marshal(sessionRecord{User: username, LoggedInAt: s.clock.Now()})
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.records.Put(sessionKey, data); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	s.logger.Info("logged in", "user", username)
	return nil
}

// Logout clears the acting user. Logging out with no session is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Delete(sessionKey); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// Current returns the acting user, or ErrNoSession when nobody is logged in
// or the logged-in account no longer exists.
func (s *Session) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.records.Get(sessionKey)
	if errors.Is(err, ErrRecordNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("loading session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("decoding session: %w", err)
	}
	if !s.users.Exists(rec.User) {
		return "", fmt.Errorf("%w: account %q no longer exists", ErrNoSession, rec.User)
	}
	return rec.User, nil
}
