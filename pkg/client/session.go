package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys, shared with the browser client this SDK mirrors.
const (
	KeyOrganizationID = "organizationId"
	KeyAdminToken     = "adminToken"
	KeyUserID         = "userId"
	keySessionToken   = "sessionToken"
)

// ErrNotAuthenticated is returned by privileged operations when no identity
// is held. Callers should route the user to a login surface instead of
// issuing the request.
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the current actor: an organization session or an admin bearer
// token. Exactly one of SessionToken or AdminToken is set.
type Identity struct {
	OrganizationID string `json:"organizationId,omitempty"`
	SessionToken   string `json:"sessionToken,omitempty"`
	AdminToken     string `json:"adminToken,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

func (id Identity) IsOrg() bool   { return id.SessionToken != "" }
func (id Identity) IsAdmin() bool { return id.AdminToken != "" }

// SessionStore persists the current identity across operations. No expiry is
// enforced by the store; the server rejects stale credentials.
type SessionStore interface {
	Establish(identity Identity) error
	Current() (Identity, error)
	Clear() error
}

// MemoryStore holds the identity in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	identity *Identity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Establish(identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &identity
	return nil
}

func (s *MemoryStore) Current() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return Identity{}, ErrNotAuthenticated
	}
	return *s.identity, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	return nil
}

// FileStore persists the identity as a JSON file, surviving process
// restarts the way browser local storage survives page reloads. Concurrent
// processes sharing the file race last-writer-wins.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Establish(identity Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(map[string]string{
		KeyOrganizationID: identity.OrganizationID,
		keySessionToken:   identity.SessionToken,
		KeyAdminToken:     identity.AdminToken,
		KeyUserID:         identity.UserID,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Current() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, ErrNotAuthenticated
		}
		return Identity{}, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Identity{}, ErrNotAuthenticated
	}

	identity := Identity{
		OrganizationID: raw[KeyOrganizationID],
		SessionToken:   raw[keySessionToken],
		AdminToken:     raw[KeyAdminToken],
		UserID:         raw[KeyUserID],
	}
	if !identity.IsOrg() && !identity.IsAdmin() {
		return Identity{}, ErrNotAuthenticated
	}
	return identity, nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
