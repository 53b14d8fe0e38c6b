package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/config"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/validators"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/events"
	"teamcal-backend/domain/permissions"
	pkgerrors "teamcal-backend/pkg/errors"
)

// CreateTeamInput is the payload for creating a team
type CreateTeamInput struct {
	Name        string
	Description string
}

// UpdateTeamInput is the partial payload for updating a team
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

// InviteMemberInput is the payload for inviting a user onto a team
type InviteMemberInput struct {
	UserID string
	Role   string
}

// TeamWithRole pairs a team with the caller's role in it
type TeamWithRole struct {
	Team *entities.Team
	Role valueobjects.Role
}

// TeamService manages teams and their memberships
type TeamService struct {
	teams      ports.TeamStore
	members    ports.MemberStore
	users      ports.UserStore
	outbox     ports.DomainEventStore
	authorizer *Authorizer
	validator  *validators.TeamValidator
	sanitizer  *validators.Sanitizer
	cfg        *config.DomainConfig
	logger     *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	teams ports.TeamStore,
	members ports.MemberStore,
	users ports.UserStore,
	outbox ports.DomainEventStore,
	authorizer *Authorizer,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *TeamService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &TeamService{
		teams:      teams,
		members:    members,
		users:      users,
		outbox:     outbox,
		authorizer: authorizer,
		validator:  validators.NewTeamValidator(),
		sanitizer:  validators.NewSanitizer(),
		cfg:        cfg,
		logger:     logger,
	}
}

// Create creates a team and its owner membership. The two writes are
// not transactional; if the membership write fails the team row is
// compensated away so no team exists without an owner row.
func (s *TeamService) Create(ctx context.Context, actorID string, input CreateTeamInput) (*entities.Team, error) {
	ownerID, err := valueobjects.NewUserIDFromString(actorID)
	if err != nil {
		return nil, malformedID("userId", err)
	}
	if err := s.validator.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	team, err := entities.NewTeamWithConfig(
		s.sanitizer.Text(input.Name),
		s.sanitizer.Description(input.Description),
		ownerID,
		s.cfg,
	)
	if err != nil {
		return nil, err
	}

	ownerMembership, err := entities.NewTeamMember(team.ID(), ownerID, valueobjects.RoleOwner, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	if err := s.members.Create(ctx, ownerMembership); err != nil {
		if delErr := s.teams.Delete(ctx, team.ID()); delErr != nil {
			s.logger.Error("Failed to compensate team create",
				zap.Error(delErr),
				zap.String("team_id", team.ID().String()),
			)
		}
		return nil, err
	}

	s.saveEvents(ctx, team.ID().String(), append(team.GetUncommittedEvents(), ownerMembership.GetUncommittedEvents()...))
	team.MarkEventsAsCommitted()
	ownerMembership.MarkEventsAsCommitted()

	s.logger.Info("Team created",
		zap.String("team_id", team.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	return team, nil
}

// Get returns the team, requiring the caller to be a member. Membership
// is checked first so non-members cannot probe which team IDs exist.
func (s *TeamService) Get(ctx context.Context, teamID, actorID string) (*entities.Team, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewTeam); err != nil {
		return nil, err
	}

	team, err := s.teams.FindByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, teamNotFound(teamID)
	}
	return team, nil
}

// Update applies a partial team update, owner only
func (s *TeamService) Update(ctx context.Context, teamID, actorID string, input UpdateTeamInput) (*entities.Team, error) {
	if input.Name == nil && input.Description == nil {
		validationErrors := pkgerrors.NewValidationErrors()
		validationErrors.Add("payload", "update requires at least one field")
		return nil, validationErrors
	}

	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionManageTeam); err != nil {
		return nil, err
	}

	team, err := s.teams.FindByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, teamNotFound(teamID)
	}

	if input.Name != nil {
		if err := s.validator.ValidateName(*input.Name); err != nil {
			return nil, err
		}
		if err := team.RenameWithConfig(s.sanitizer.Text(*input.Name), s.cfg); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		if err := s.validator.ValidateDescription(*input.Description); err != nil {
			return nil, err
		}
		team.UpdateDescription(s.sanitizer.Description(*input.Description))
	}

	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}

	s.logger.Info("Team updated", zap.String("team_id", teamID))
	return team, nil
}

// Delete removes the team row, owner only. Membership and event rows
// stay behind; the table never cascades deletes.
func (s *TeamService) Delete(ctx context.Context, teamID, actorID string) error {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionManageTeam); err != nil {
		return err
	}

	if err := s.teams.Delete(ctx, tid); err != nil {
		return err
	}

	s.saveEvents(ctx, teamID, []events.DomainEvent{
		events.NewTeamDeleted(tid, time.Now().UTC()),
	})

	s.logger.Info("Team deleted",
		zap.String("team_id", teamID),
		zap.String("deleted_by", actorID),
	)
	return nil
}

// RotateSubscriptionKey replaces the team's subscription key, owner only
func (s *TeamService) RotateSubscriptionKey(ctx context.Context, teamID, actorID string) (*entities.Team, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionManageTeam); err != nil {
		return nil, err
	}

	team, err := s.teams.FindByID(ctx, tid)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, teamNotFound(teamID)
	}

	if err := team.RotateSubscriptionKey(uid); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, err
	}

	s.saveEvents(ctx, teamID, team.GetUncommittedEvents())
	team.MarkEventsAsCommitted()

	s.logger.Info("Subscription key rotated",
		zap.String("team_id", teamID),
		zap.String("rotated_by", actorID),
	)
	return team, nil
}

// InviteMember adds a user to the team. Members may invite, but nobody
// may grant a role above their own.
func (s *TeamService) InviteMember(ctx context.Context, teamID, actorID string, input InviteMemberInput) (*entities.TeamMember, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	actor, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionInviteMember)
	if err != nil {
		return nil, err
	}

	targetID, err := valueobjects.NewUserIDFromString(input.UserID)
	if err != nil {
		return nil, malformedID("userId", err)
	}
	role, err := valueobjects.NewRoleFromString(input.Role)
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_ROLE",
			"Role must be one of owner, member, viewer",
		).WithDetail("role", input.Role).WithCause(err)
	}

	if !actor.Role().HasRole(role) {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainAuthorizationError,
			"ROLE_ESCALATION",
			"Cannot grant a role above your own",
		).WithDetail("actor_role", actor.Role().String()).
			WithDetail("granted_role", role.String())
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, userNotFound(input.UserID)
	}

	membership, err := entities.NewTeamMember(tid, targetID, role, uid)
	if err != nil {
		return nil, err
	}
	if err := s.members.Create(ctx, membership); err != nil {
		return nil, err
	}

	s.saveEvents(ctx, teamID, membership.GetUncommittedEvents())
	membership.MarkEventsAsCommitted()

	s.logger.Info("Member invited",
		zap.String("team_id", teamID),
		zap.String("user_id", input.UserID),
		zap.String("role", role.String()),
		zap.String("invited_by", actorID),
	)
	return membership, nil
}

// ListMembers returns every membership on the team, any member may look
func (s *TeamService) ListMembers(ctx context.Context, teamID, actorID string) ([]*entities.TeamMember, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionViewTeam); err != nil {
		return nil, err
	}
	return s.members.FindByTeam(ctx, tid)
}

// ChangeMemberRole moves a member to a new role, owner only. The last
// owner cannot be demoted; a team always keeps at least one owner.
func (s *TeamService) ChangeMemberRole(ctx context.Context, teamID, actorID, targetUserID, newRole string) (*entities.TeamMember, error) {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionChangeRole); err != nil {
		return nil, err
	}

	targetID, err := valueobjects.NewUserIDFromString(targetUserID)
	if err != nil {
		return nil, malformedID("userId", err)
	}
	role, err := valueobjects.NewRoleFromString(newRole)
	if err != nil {
		return nil, pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"INVALID_ROLE",
			"Role must be one of owner, member, viewer",
		).WithDetail("role", newRole).WithCause(err)
	}

	membership, err := s.members.FindByTeamAndUser(ctx, tid, targetID)
	if err != nil {
		return nil, err
	}
	if membership == nil {
		return nil, memberNotFound(teamID, targetUserID)
	}

	if membership.Role().Equals(valueobjects.RoleOwner) && !role.Equals(valueobjects.RoleOwner) {
		if err := s.requireAnotherOwner(ctx, tid, targetID); err != nil {
			return nil, err
		}
	}

	if err := membership.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.members.Update(ctx, membership); err != nil {
		return nil, err
	}
	s.authorizer.Invalidate(ctx, tid, targetID)

	s.saveEvents(ctx, teamID, membership.GetUncommittedEvents())
	membership.MarkEventsAsCommitted()

	s.logger.Info("Member role changed",
		zap.String("team_id", teamID),
		zap.String("user_id", targetUserID),
		zap.String("new_role", role.String()),
		zap.String("changed_by", actorID),
	)
	return membership, nil
}

// RemoveMember takes a user off the team, owner only. Removing the last
// owner is refused for the same reason demoting them is.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, actorID, targetUserID string) error {
	tid, uid, err := parseTeamActor(teamID, actorID)
	if err != nil {
		return err
	}
	if _, err := s.authorizer.Require(ctx, tid, uid, permissions.PermissionRemoveMember); err != nil {
		return err
	}

	targetID, err := valueobjects.NewUserIDFromString(targetUserID)
	if err != nil {
		return malformedID("userId", err)
	}

	membership, err := s.members.FindByTeamAndUser(ctx, tid, targetID)
	if err != nil {
		return err
	}
	if membership == nil {
		return memberNotFound(teamID, targetUserID)
	}

	if membership.Role().Equals(valueobjects.RoleOwner) {
		if err := s.requireAnotherOwner(ctx, tid, targetID); err != nil {
			return err
		}
	}

	if err := s.members.Delete(ctx, tid, targetID); err != nil {
		return err
	}
	s.authorizer.Invalidate(ctx, tid, targetID)

	s.saveEvents(ctx, teamID, []events.DomainEvent{
		events.NewMemberRemoved(tid, targetID, uid, time.Now().UTC()),
	})

	s.logger.Info("Member removed",
		zap.String("team_id", teamID),
		zap.String("user_id", targetUserID),
		zap.String("removed_by", actorID),
	)
	return nil
}

// ListTeamsForUser returns the teams the user belongs to with their
// role in each. Team deletion does not cascade, so memberships pointing
// at deleted teams are skipped here.
func (s *TeamService) ListTeamsForUser(ctx context.Context, userID string) ([]TeamWithRole, error) {
	uid, err := valueobjects.NewUserIDFromString(userID)
	if err != nil {
		return nil, malformedID("userId", err)
	}

	memberships, err := s.members.FindByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	result := make([]TeamWithRole, 0, len(memberships))
	for _, membership := range memberships {
		team, err := s.teams.FindByID(ctx, membership.TeamID())
		if err != nil {
			return nil, err
		}
		if team == nil {
			continue
		}
		result = append(result, TeamWithRole{Team: team, Role: membership.Role()})
	}
	return result, nil
}

// requireAnotherOwner fails unless some owner other than excluded exists
func (s *TeamService) requireAnotherOwner(ctx context.Context, teamID valueobjects.TeamID, excluded valueobjects.UserID) error {
	memberships, err := s.members.FindByTeam(ctx, teamID)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		if m.UserID().Equals(excluded) {
			continue
		}
		if m.Role().Equals(valueobjects.RoleOwner) {
			return nil
		}
	}
	return pkgerrors.NewDomainError(
		pkgerrors.DomainBusinessRuleError,
		"LAST_OWNER",
		"A team must keep at least one owner",
	).WithDetail("teamId", teamID.String())
}

// saveEvents appends domain events to the outbox, logging failures. The
// entity write already succeeded; losing an event loses a notification,
// not data.
func (s *TeamService) saveEvents(ctx context.Context, teamID string, domainEvents []events.DomainEvent) {
	if len(domainEvents) == 0 {
		return
	}
	if err := s.outbox.SaveEvents(ctx, domainEvents); err != nil {
		s.logger.Warn("Failed to store domain events",
			zap.Error(err),
			zap.String("team_id", teamID),
		)
	}
}

func parseTeamActor(teamID, actorID string) (valueobjects.TeamID, valueobjects.UserID, error) {
	tid, err := valueobjects.NewTeamIDFromString(teamID)
	if err != nil {
		return valueobjects.TeamID{}, valueobjects.UserID{}, malformedID("teamId", err)
	}
	uid, err := valueobjects.NewUserIDFromString(actorID)
	if err != nil {
		return valueobjects.TeamID{}, valueobjects.UserID{}, malformedID("userId", err)
	}
	return tid, uid, nil
}

func teamNotFound(teamID string) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainNotFoundError,
		"TEAM_NOT_FOUND",
		"The requested team does not exist",
	).WithDetail("teamId", teamID)
}

func memberNotFound(teamID, userID string) error {
	return pkgerrors.NewDomainError(
		pkgerrors.DomainNotFoundError,
		"MEMBER_NOT_FOUND",
		"The user is not a member of this team",
	).WithDetail("teamId", teamID).WithDetail("userId", userID)
}
