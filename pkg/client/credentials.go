package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

// Credentials is the durable slice of session state: the bearer token and
// the cached user it belongs to. Everything else is rebuilt from the
// network.
type Credentials struct {
	Token string           `json:"authToken"`
	User  *models.AuthUser `json:"adminUser,omitempty"`
}

// CredentialStore persists credentials across process restarts. Load on a
// store holding nothing returns empty credentials, not an error.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(creds Credentials) error
	Clear() error
}

// FileCredentialStore keeps credentials in a JSON file, typically under the
// user's home directory.
type FileCredentialStore struct {
	path string
	mu   sync.Mutex
}

func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("load credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

func (s *FileCredentialStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// MemCredentialStore is the in-memory store used by tests and short-lived
// tools.
type MemCredentialStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

func NewMemCredentialStore() *MemCredentialStore {
	return &MemCredentialStore{}
}

func (s *MemCredentialStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Credentials{}, nil
	}
	return s.creds, nil
}

func (s *MemCredentialStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

func (s *MemCredentialStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.set = false
	return nil
}
