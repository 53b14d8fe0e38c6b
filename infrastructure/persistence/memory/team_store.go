package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
)

// TeamStore is an in-memory TeamStore
type TeamStore struct {
	mu    sync.RWMutex
	teams map[string]*entities.Team // keyed by team ID
}

// NewTeamStore creates an empty in-memory team store
func NewTeamStore() *TeamStore {
	return &TeamStore{teams: make(map[string]*entities.Team)}
}

// Create stores a snapshot of the team, failing on a duplicate ID
func (s *TeamStore) Create(ctx context.Context, team *entities.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.teams[team.ID().String()]; exists {
		return errors.NewDomainError(
			errors.DomainConflictError,
			"TEAM_EXISTS",
			"A team with this identifier already exists",
		).WithDetail("teamId", team.ID().String())
	}

	snapshot, err := cloneTeam(team)
	if err != nil {
		return err
	}
	s.teams[team.ID().String()] = snapshot
	return nil
}

// FindByID returns a snapshot of the team, nil when absent
func (s *TeamStore) FindByID(ctx context.Context, id valueobjects.TeamID) (*entities.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	team, ok := s.teams[id.String()]
	if !ok {
		return nil, nil
	}
	return cloneTeam(team)
}

// Update replaces the stored snapshot, failing when the team is absent
func (s *TeamStore) Update(ctx context.Context, team *entities.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[team.ID().String()]; !ok {
		return teamNotFoundError(team.ID().String())
	}

	snapshot, err := cloneTeam(team)
	if err != nil {
		return err
	}
	s.teams[team.ID().String()] = snapshot
	return nil
}

// Delete removes the team row only. Memberships and events held by the
// other stores stay behind, matching the table's no-cascade delete.
func (s *TeamStore) Delete(ctx context.Context, id valueobjects.TeamID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teams[id.String()]; !ok {
		return teamNotFoundError(id.String())
	}
	delete(s.teams, id.String())
	return nil
}

func teamNotFoundError(teamID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"TEAM_NOT_FOUND",
		"The requested team does not exist",
	).WithDetail("teamId", teamID)
}

func cloneTeam(team *entities.Team) (*entities.Team, error) {
	return entities.ReconstructTeam(
		team.ID(),
		team.Name(),
		team.Description(),
		team.OwnerID(),
		team.SubscriptionKey(),
		team.CreatedAt(),
		team.UpdatedAt(),
		team.Version(),
	)
}

var _ ports.TeamStore = (*TeamStore)(nil)
