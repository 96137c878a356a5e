// Package user persists accounts in a users.json file under the user
// directory. Passwords are stored as bcrypt hashes; the seeded demo
// account uses the cleartext method so the file stays hand-editable.
package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

// Demo credential seeded into an empty user store so a fresh private
// wiki can be reached at all.
const (
	DemoUser     = "name"
	DemoPassword = "1234"
)

const fileName = "users.json"

var (
	// ErrNotFound means no account with that name exists.
	ErrNotFound = errors.New("user not found")
	// ErrExists means an account with that name already exists.
	ErrExists = errors.New("user already exists")
	// ErrInvalidCredentials covers unknown names, wrong passwords and
	// deactivated accounts alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store keeps user records in a JSON file under dir.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore opens the user directory, creating it when missing. A user
// file that exists but cannot be parsed is refused.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create user dir: %w", err)
	}
	s := &Store{path: filepath.Join(dir, fileName)}
	if _, err := s.read(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the user file.
func (s *Store) Path() string { return s.path }

// Get returns the named account.
func (s *Store) Get(name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := users[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return u, nil
}

// All lists every account sorted by name.
func (s *Store) All() ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Add creates an account. An empty method defaults to bcrypt.
func (s *Store) Add(name, password string, active bool, roles []string, method string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if method == "" {
		method = models.AuthBcrypt
	}
	if roles == nil {
		roles = []string{}
	}
	u := &models.User{Name: name, Active: active, AuthMethod: method, Roles: roles}
	switch method {
	case models.AuthBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.Hash = string(hash)
	case models.AuthCleartext:
		u.Password = password
	default:
		return nil, fmt.Errorf("unknown authentication method %q", method)
	}

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	if _, ok := users[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}
	users[name] = u
	if err := s.write(users); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes an account.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := users[name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	delete(users, name)
	return s.write(users)
}

// Authenticate checks name and password against the store. Unknown
// names, wrong passwords and inactive accounts all come back as
// ErrInvalidCredentials.
func (s *Store) Authenticate(name, password string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := users[name]
	if !ok || !u.Active {
		return nil, ErrInvalidCredentials
	}
	switch u.AuthMethod {
	case models.AuthBcrypt:
		if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
	case models.AuthCleartext:
		if u.Password != password {
			return nil, ErrInvalidCredentials
		}
	default:
		return nil, fmt.Errorf("unknown authentication method %q", u.AuthMethod)
	}
	return u, nil
}

// EnsureDemoUser seeds the demo credential into an empty store. Reports
// whether it had to create the account.
func (s *Store) EnsureDemoUser() (bool, error) {
	s.mu.Lock()
	users, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	empty := len(users) == 0
	s.mu.Unlock()

	if !empty {
		return false, nil
	}
	_, err = s.Add(DemoUser, DemoPassword, true, nil, models.AuthCleartext)
	return err == nil, err
}

func (s *Store) read() (map[string]*models.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*models.User{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	users := map[string]*models.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	for name, u := range users {
		u.Name = name
		if u.Roles == nil {
			u.Roles = []string{}
		}
	}
	return users, nil
}

// write replaces the user file through a rename so a crash cannot leave
// it half-written.
func (s *Store) write(users map[string]*models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
