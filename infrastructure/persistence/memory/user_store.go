// Package memory provides in-memory implementations of the persistence
// ports. They mirror the DynamoDB repositories' observable behavior,
// including duplicate and not-found errors and snapshot semantics, and
// back the service tests and local development.
package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
)

// UserStore is an in-memory UserStore
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]*entities.User // keyed by user ID
	byEmail map[string]string         // normalized email -> user ID
}

// NewUserStore creates an empty in-memory user store
func NewUserStore() *UserStore {
	return &UserStore{
		users:   make(map[string]*entities.User),
		byEmail: make(map[string]string),
	}
}

// Create stores a snapshot of the user, enforcing both key and email
// uniqueness
func (s *UserStore) Create(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email().String()]; taken {
		return errors.NewDomainError(
			errors.DomainConflictError,
			"EMAIL_TAKEN",
			"A user with this email already exists",
		).WithDetail("email", user.Email().String())
	}
	if _, exists := s.users[user.ID().String()]; exists {
		return errors.NewDomainError(
			errors.DomainConflictError,
			"USER_EXISTS",
			"A user with this identifier already exists",
		).WithDetail("userId", user.ID().String())
	}

	snapshot, err := cloneUser(user)
	if err != nil {
		return err
	}
	s.users[user.ID().String()] = snapshot
	s.byEmail[user.Email().String()] = user.ID().String()
	return nil
}

// FindByID returns a snapshot of the user, nil when absent
func (s *UserStore) FindByID(ctx context.Context, id valueobjects.UserID) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id.String()]
	if !ok {
		return nil, nil
	}
	return cloneUser(user)
}

// FindByEmail returns a snapshot of the user with the given normalized
// email, nil when absent
func (s *UserStore) FindByEmail(ctx context.Context, email valueobjects.Email) (*entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email.String()]
	if !ok {
		return nil, nil
	}
	return cloneUser(s.users[id])
}

// Update replaces the stored snapshot, failing when the user is absent
func (s *UserStore) Update(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID().String()]
	if !ok {
		return errors.NewDomainError(
			errors.DomainNotFoundError,
			"USER_NOT_FOUND",
			"The requested user does not exist",
		).WithDetail("userId", user.ID().String())
	}

	snapshot, err := cloneUser(user)
	if err != nil {
		return err
	}

	// A changed email moves the lookup entry with the row
	if !current.Email().Equals(user.Email()) {
		delete(s.byEmail, current.Email().String())
		s.byEmail[user.Email().String()] = user.ID().String()
	}
	s.users[user.ID().String()] = snapshot
	return nil
}

// Delete removes the user, failing when absent
func (s *UserStore) Delete(ctx context.Context, id valueobjects.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id.String()]
	if !ok {
		return errors.NewDomainError(
			errors.DomainNotFoundError,
			"USER_NOT_FOUND",
			"The requested user does not exist",
		).WithDetail("userId", id.String())
	}

	delete(s.byEmail, user.Email().String())
	delete(s.users, id.String())
	return nil
}

// cloneUser rebuilds the entity so stored state and caller state never
// share memory
func cloneUser(user *entities.User) (*entities.User, error) {
	return entities.ReconstructUser(
		user.ID(),
		user.Email(),
		user.Name(),
		user.CreatedAt(),
		user.UpdatedAt(),
		user.Version(),
	)
}

var _ ports.UserStore = (*UserStore)(nil)
