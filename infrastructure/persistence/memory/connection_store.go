package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
)

// ConnectionStore is an in-memory ConnectionStore
type ConnectionStore struct {
	mu          sync.RWMutex
	connections map[string]ports.Connection // connectionID -> connection
}

// NewConnectionStore creates an empty in-memory connection registry
func NewConnectionStore() *ConnectionStore {
	return &ConnectionStore{connections: make(map[string]ports.Connection)}
}

// Save registers a connection. Reconnects with the same ID overwrite
// the previous registration.
func (s *ConnectionStore) Save(ctx context.Context, conn ports.Connection) error {
	if conn.ConnectionID == "" {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			"Connection identifier cannot be empty",
		)
	}
	if conn.UserID == "" {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			"User identifier cannot be empty",
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.connections[conn.ConnectionID] = conn
	return nil
}

// FindByUser returns every registration the user holds
func (s *ConnectionStore) FindByUser(ctx context.Context, userID valueobjects.UserID) ([]ports.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ports.Connection
	for _, conn := range s.connections {
		if conn.UserID == userID.String() {
			result = append(result, conn)
		}
	}
	return result, nil
}

// Delete removes the registration. Deleting an already-gone connection
// is not an error; disconnect notifications can arrive more than once.
func (s *ConnectionStore) Delete(ctx context.Context, connectionID string) error {
	if connectionID == "" {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"MALFORMED_IDENTIFIER",
			"Connection identifier cannot be empty",
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.connections, connectionID)
	return nil
}

var _ ports.ConnectionStore = (*ConnectionStore)(nil)
