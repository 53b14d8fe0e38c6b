package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"teamcal-backend/application/ports"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/domain/core/valueobjects"
	"teamcal-backend/domain/permissions"
	pkgerrors "teamcal-backend/pkg/errors"
)

// membershipTTLSeconds bounds how long a cached role may lag a role
// change on another instance
const membershipTTLSeconds = 30

// Authorizer binds a (principal, team) pair to a role by loading the
// TeamMember row. The row is the sole source of truth for membership;
// tokens carry identity only.
type Authorizer struct {
	members ports.MemberStore
	cache   ports.Cache
	logger  *zap.Logger
}

// NewAuthorizer creates an authorizer backed by the membership store
func NewAuthorizer(members ports.MemberStore, cache ports.Cache, logger *zap.Logger) *Authorizer {
	return &Authorizer{
		members: members,
		cache:   cache,
		logger:  logger,
	}
}

func membershipCacheKey(teamID valueobjects.TeamID, userID valueobjects.UserID) string {
	return fmt.Sprintf("member#%s#%s", teamID.String(), userID.String())
}

// Membership returns the caller's membership row, nil when the caller is
// not on the team
func (a *Authorizer) Membership(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) (*entities.TeamMember, error) {
	key := membershipCacheKey(teamID, userID)

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, key); ok {
			if member, ok := cached.(*entities.TeamMember); ok {
				return member, nil
			}
		}
	}

	member, err := a.members.FindByTeamAndUser(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}

	if a.cache != nil && member != nil {
		if err := a.cache.Set(ctx, key, member, membershipTTLSeconds); err != nil {
			a.logger.Debug("Failed to cache membership", zap.Error(err))
		}
	}
	return member, nil
}

// Require resolves the caller's role and checks the permission against
// it. Non-members are denied with role "none"; membership rows, not
// tokens, decide what a caller may do.
func (a *Authorizer) Require(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID, permission permissions.Permission) (*entities.TeamMember, error) {
	member, err := a.Membership(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		a.logger.Debug("Permission denied for non-member",
			zap.String("team_id", teamID.String()),
			zap.String("user_id", userID.String()),
			zap.String("permission", string(permission)),
		)
		return nil, pkgerrors.NewPermissionDenied(string(permission), "none")
	}
	if err := permissions.Require(member.Role(), permission); err != nil {
		return nil, err
	}
	return member, nil
}

// RequireOnEvent checks a permission against a specific event, honoring
// the ownership override for members acting on their own events
func (a *Authorizer) RequireOnEvent(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID, permission permissions.Permission, resourceOwner valueobjects.UserID) (*entities.TeamMember, error) {
	member, err := a.Membership(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, pkgerrors.NewPermissionDenied(string(permission), "none")
	}
	if err := permissions.RequireEvent(member.Role(), permission, resourceOwner, userID); err != nil {
		return nil, err
	}
	return member, nil
}

// Invalidate drops the cached membership after a role change or removal
func (a *Authorizer) Invalidate(ctx context.Context, teamID valueobjects.TeamID, userID valueobjects.UserID) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Delete(ctx, membershipCacheKey(teamID, userID)); err != nil {
		a.logger.Debug("Failed to invalidate membership cache", zap.Error(err))
	}
}
