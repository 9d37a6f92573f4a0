package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// ErrNotAuthenticated is returned by session operations that need a stored
// token when none exists.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthState is the session lifecycle. Transitions are explicit: every
// rejection path ends in a state where the in-memory flag and the persisted
// token agree.
type AuthState int

const (
	StateAnonymous AuthState = iota
	StateAuthenticating
	StateAuthenticated
	StateAuthError
)

func (s AuthState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateAuthError:
		return "auth-error"
	default:
		return "unknown"
	}
}

const defaultValidateFreshness = 5 * time.Minute

// Session drives the auth lifecycle against the credential store. It is the
// injected replacement for a global auth singleton: tests construct one and
// assert transitions directly.
type Session struct {
	client *Client

	mu          sync.Mutex
	state       AuthState
	user        *models.AuthUser
	lastErr     error
	validatedAt time.Time
	freshness   time.Duration
}

func NewSession(client *Client) *Session {
	return &Session{
		client:    client,
		state:     StateAnonymous,
		freshness: defaultValidateFreshness,
	}
}

func (s *Session) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

func (s *Session) User() *models.AuthUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Err returns the failure that put the session into StateAuthError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Login authenticates and persists the token and user on success. On
// failure both the store and the persisted credentials are cleared.
func (s *Session) Login(ctx context.Context, email, password string) (*models.AuthUser, error) {
	s.setState(StateAuthenticating)

	var payload models.AuthPayload
	_, err := s.client.do(ctx, http.MethodPost, "/auth/login", nil,
		models.LoginRequest{Email: email, Password: password}, &payload)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	return s.establish(payload)
}

// Register mirrors Login.
func (s *Session) Register(ctx context.Context, email, username, password string) (*models.AuthUser, error) {
	s.setState(StateAuthenticating)

	var payload models.AuthPayload
	_, err := s.client.do(ctx, http.MethodPost, "/auth/register", nil,
		models.RegisterRequest{Email: email, Username: username, Password: password}, &payload)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	return s.establish(payload)
}

// Logout always clears local state and storage, even when the server call
// fails; the error is returned so callers can surface a notification, but
// the session is anonymous either way.
func (s *Session) Logout(ctx context.Context) error {
	_, err := s.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)

	if clearErr := s.client.creds.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}

	s.mu.Lock()
	s.state = StateAnonymous
	s.user = nil
	s.lastErr = nil
	s.validatedAt = time.Time{}
	s.mu.Unlock()

	return err
}

// Validate resolves the stored token to a user. Within the freshness window
// a second call returns the same user without a network round trip. A token
// the server rejects clears storage and leaves the session anonymous.
func (s *Session) Validate(ctx context.Context) (*models.AuthUser, error) {
	s.mu.Lock()
	if s.state == StateAuthenticated && s.user != nil && time.Since(s.validatedAt) < s.freshness {
		user := s.user
		s.mu.Unlock()
		return user, nil
	}
	s.mu.Unlock()

	creds, err := s.client.creds.Load()
	if err != nil {
		s.setState(StateAnonymous)
		return nil, err
	}
	if creds.Token == "" {
		s.setState(StateAnonymous)
		return nil, ErrNotAuthenticated
	}

	var result struct {
		Valid bool             `json:"valid"`
		User  *models.AuthUser `json:"user"`
	}
	_, err = s.client.do(ctx, http.MethodGet, "/auth/validate", nil, nil, &result)
	if err != nil {
		// The chokepoint already cleared storage on 401; make sure the
		// in-memory flag follows.
		s.mu.Lock()
		s.state = StateAnonymous
		s.user = nil
		s.validatedAt = time.Time{}
		s.mu.Unlock()
		s.client.creds.Clear()
		return nil, err
	}

	user := result.User
	if user == nil {
		// Fall back to the cached copy when the endpoint confirms validity
		// without a body, then to a fresh /auth/me fetch.
		if creds.User != nil {
			user = creds.User
		} else {
			if _, err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
				s.fail(err)
				return nil, err
			}
		}
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	s.lastErr = nil
	s.validatedAt = time.Now()
	s.mu.Unlock()

	// Refresh the cached user copy alongside the token.
	creds.User = user
	s.client.creds.Save(creds)

	return user, nil
}

// Refresh swaps the stored token for a fresh one.
func (s *Session) Refresh(ctx context.Context) error {
	var payload models.AuthPayload
	_, err := s.client.do(ctx, http.MethodPost, "/auth/refresh", nil, nil, &payload)
	if err != nil {
		s.fail(err)
		return err
	}
	_, err = s.establish(payload)
	return err
}

func (s *Session) establish(payload models.AuthPayload) (*models.AuthUser, error) {
	user := payload.User
	if err := s.client.creds.Save(Credentials{Token: payload.Token, User: &user}); err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.lastErr = nil
	s.validatedAt = time.Now()
	s.mu.Unlock()

	return &user, nil
}

func (s *Session) fail(err error) {
	s.client.creds.Clear()
	s.mu.Lock()
	s.state = StateAuthError
	s.user = nil
	s.lastErr = err
	s.validatedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Session) setState(state AuthState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
