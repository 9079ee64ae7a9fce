package devserver

import (
	"sync"

	"github.com/google/uuid"
	"github.com/maternalcare/portal-core/credential"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// UserRecord is a development account.
type UserRecord struct {
	ID                 string
	Username           string
	PasswordHash       string
	Role               credential.Role
	MustChangePassword bool
}

// UserStore holds the development accounts in memory.
type UserStore struct {
	mu         sync.RWMutex
	byUsername map[string]*UserRecord
}

func NewUserStore() *UserStore {
	return &UserStore{byUsername: make(map[string]*UserRecord)}
}

// Add creates an account with a bcrypt-hashed password.
func (s *UserStore) Add(username, password string, role credential.Role, mustChangePassword bool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "[UserStore.Add] hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUsername[username]; exists {
		return errors.Errorf("[UserStore.Add] user %q already exists", username)
	}
	s.byUsername[username] = &UserRecord{
		ID:                 uuid.New().String(),
		Username:           username,
		PasswordHash:       string(hash),
		Role:               role,
		MustChangePassword: mustChangePassword,
	}
	return nil
}

// Authenticate checks a username/password pair.
func (s *UserStore) Authenticate(username, password string) (UserRecord, bool) {
	s.mu.RLock()
	user, ok := s.byUsername[username]
	s.mu.RUnlock()
	if !ok {
		return UserRecord{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return UserRecord{}, false
	}
	return *user, true
}

// Get returns the account for a username.
func (s *UserStore) Get(username string) (UserRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byUsername[username]
	if !ok {
		return UserRecord{}, false
	}
	return *user, true
}

// UpdatePassword replaces the password hash and clears the forced-reset flag,
// mirroring the backend's behaviour after a successful password update.
func (s *UserStore) UpdatePassword(username, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "[UserStore.UpdatePassword] hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byUsername[username]
	if !ok {
		return errors.Errorf("[UserStore.UpdatePassword] user %q not found", username)
	}
	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	return nil
}

// SeedDefaults loads one demo account per role. The mother account starts with
// a temporary password that must be changed.
func (s *UserStore) SeedDefaults() error {
	seeds := []struct {
		username   string
		password   string
		role       credential.Role
		mustChange bool
	}{
		{"mother1", "Mother123", credential.RoleMother, true},
		{"provider1", "Provider123", credential.RoleProvider, false},
		{"admin1", "Admin1234", credential.RoleAdmin, false},
	}
	for _, seed := range seeds {
		if err := s.Add(seed.username, seed.password, seed.role, seed.mustChange); err != nil {
			return err
		}
	}
	return nil
}
