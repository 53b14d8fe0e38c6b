package memory

import (
	"context"
	"sync"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/pkg/errors"
)

// MemberStore is an in-memory MemberStore
type MemberStore struct {
	mu      sync.RWMutex
	members map[string]map[string]*entities.TeamMember // teamID -> userID -> membership
}

// NewMemberStore creates an empty in-memory membership store
func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]map[string]*entities.TeamMember)}
}

// Create stores a snapshot of the membership, failing when the user is
// already on the team
func (s *MemberStore) Create(ctx context.Context, member *entities.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := member.TeamID().String()
	userID := member.UserID().String()
	if _, exists := s.members[teamID][userID]; exists {
		return errors.NewDomainError(
			errors.DomainConflictError,
			"ALREADY_MEMBER",
			"The user is already a member of this team",
		).WithDetail("teamId", teamID).WithDetail("userId", userID)
	}

	snapshot, err := cloneMember(member)
	if err != nil {
		return err
	}
	if s.members[teamID] == nil {
		s.members[teamID] = make(map[string]*entities.TeamMember)
	}
	s.members[teamID][userID] = snapshot
	return nil
}

// FindByTeamAndUser returns a snapshot of the membership, nil when absent
func (s *MemberStore) FindByTeamAndUser(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) (*entities.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.members[teamID.String()][userID.String()]
	if !ok {
		return nil, nil
	}
	return cloneMember(member)
}

// FindByTeam returns snapshots of every membership on the team
func (s *MemberStore) FindByTeam(ctx context.Context, teamID valueobjects.TeamID) ([]*entities.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.TeamMember
	for _, member := range s.members[teamID.String()] {
		snapshot, err := cloneMember(member)
		if err != nil {
			return nil, err
		}
		result = append(result, snapshot)
	}
	return result, nil
}

// FindByUser returns snapshots of every membership the user holds
func (s *MemberStore) FindByUser(ctx context.Context, userID valueobjects.UserID) ([]*entities.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.TeamMember
	for _, team := range s.members {
		member, ok := team[userID.String()]
		if !ok {
			continue
		}
		snapshot, err := cloneMember(member)
		if err != nil {
			return nil, err
		}
		result = append(result, snapshot)
	}
	return result, nil
}

// Update replaces the stored snapshot, failing when the membership is absent
func (s *MemberStore) Update(ctx context.Context, member *entities.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teamID := member.TeamID().String()
	userID := member.UserID().String()
	if _, ok := s.members[teamID][userID]; !ok {
		return memberNotFoundError(teamID, userID)
	}

	snapshot, err := cloneMember(member)
	if err != nil {
		return err
	}
	s.members[teamID][userID] = snapshot
	return nil
}

// Delete removes the membership, failing when absent
func (s *MemberStore) Delete(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[teamID.String()][userID.String()]; !ok {
		return memberNotFoundError(teamID.String(), userID.String())
	}
	delete(s.members[teamID.String()], userID.String())
	return nil
}

func memberNotFoundError(teamID, userID string) error {
	return errors.NewDomainError(
		errors.DomainNotFoundError,
		"MEMBER_NOT_FOUND",
		"The user is not a member of this team",
	).WithDetail("teamId", teamID).WithDetail("userId", userID)
}

func cloneMember(member *entities.TeamMember) (*entities.TeamMember, error) {
	return entities.ReconstructTeamMember(
		member.TeamID(),
		member.UserID(),
		member.Role(),
		member.InvitedBy(),
		member.CreatedAt(),
		member.UpdatedAt(),
		member.Version(),
	)
}

var _ ports.MemberStore = (*MemberStore)(nil)
