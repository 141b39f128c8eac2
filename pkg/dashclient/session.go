package dashclient

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

// Role is decided once when the session is created and never re-parsed from
// persisted strings.
type Role int

const (
	RoleNone Role = iota
	RoleUser
	RoleAdmin
	RoleSuperAdmin
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAdmin:
		return "admin"
	case RoleSuperAdmin:
		return "superadmin"
	default:
		return "none"
	}
}

// Session is the single owner of everything the dashboard used to scatter
// across browser storage keys.
type Session struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	Role             Role   `json:"role"`
	PrincipalID      int64  `json:"principalId"`
	Name             string `json:"name"`
	LoginIdentifier  string `json:"loginIdentifier"`
	OrganizationID   int64  `json:"organizationId,omitempty"`
	OrganizationName string `json:"organizationName,omitempty"`
	FirstLogin       bool   `json:"firstLogin,omitempty"`
	Language         string `json:"language,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// LandingRoute picks the post-login destination: first-login admins register
// their organization before anything else.
func (s Session) LandingRoute() string {
	switch s.Role {
	case RoleAdmin, RoleSuperAdmin:
		if s.FirstLogin {
			return "/register/organization"
		}
		return "/admin/users"
	case RoleUser:
		return "/dashboard"
	default:
		return "/login"
	}
}

// Store persists the session between runs. Writes replace the whole session
// so there is no partial-key state to go stale.
type Store interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// ErrNoSession is returned by Load when nothing is persisted.
var ErrNoSession = errors.New("no stored session")

type MemoryStore struct {
	mu      sync.RWMutex
	session Session
	present bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.present {
		return Session{}, ErrNoSession
	}
	return m.session, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	m.present = true
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	m.present = false
	return nil
}

// FileStore keeps the session as a JSON file, the desktop analogue of
// browser storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (f *FileStore) Save(s Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
