package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"teamcal-backend/application/services"
	"teamcal-backend/domain/core/entities"
	"teamcal-backend/pkg/auth"
	"teamcal-backend/pkg/common"
	pkgerrors "teamcal-backend/pkg/errors"
	"teamcal-backend/pkg/extensions"
	"teamcal-backend/pkg/utils"
)

// TeamHandler handles team and membership HTTP requests
type TeamHandler struct {
	teams  *services.TeamService
	hooks  *extensions.HookManager
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teams *services.TeamService, hooks *extensions.HookManager, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{
		teams:  teams,
		hooks:  hooks,
		errors: errorHandler,
		logger: logger,
	}
}

// CreateTeamRequest is the body for creating a team
type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateTeamRequest is the partial body for updating a team
type UpdateTeamRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// InviteMemberRequest is the body for inviting a user onto a team
type InviteMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// ChangeRoleRequest is the body for changing a member's role
type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// TeamResponse is the wire shape of a team. The subscription key is a
// secret; it only appears in responses to the calls that mint it.
type TeamResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	OwnerID         string `json:"ownerId"`
	SubscriptionKey string `json:"subscriptionKey,omitempty"`
	Version         int    `json:"version"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// TeamWithRoleResponse pairs a team with the caller's role in it
type TeamWithRoleResponse struct {
	TeamResponse
	Role string `json:"role"`
}

// MemberResponse is the wire shape of a team membership
type MemberResponse struct {
	TeamID    string `json:"teamId"`
	UserID    string `json:"userId"`
	Role      string `json:"role"`
	InvitedBy string `json:"invitedBy,omitempty"`
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toTeamResponse(team *entities.Team) TeamResponse {
	return TeamResponse{
		ID:          team.ID().String(),
		Name:        team.Name(),
		Description: team.Description(),
		OwnerID:     team.OwnerID().String(),
		Version:     team.Version(),
		CreatedAt:   utils.FormatRFC3339(team.CreatedAt()),
		UpdatedAt:   utils.FormatRFC3339(team.UpdatedAt()),
	}
}

func toMemberResponse(member *entities.TeamMember) MemberResponse {
	resp := MemberResponse{
		TeamID:    member.TeamID().String(),
		UserID:    member.UserID().String(),
		Role:      member.Role().String(),
		Version:   member.Version(),
		CreatedAt: utils.FormatRFC3339(member.CreatedAt()),
		UpdatedAt: utils.FormatRFC3339(member.UpdatedAt()),
	}
	if !member.InvitedBy().IsZero() {
		resp.InvitedBy = member.InvitedBy().String()
	}
	return resp
}

// CreateTeam handles POST /teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateTeamRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	team, err := h.teams.Create(r.Context(), userCtx.UserID, services.CreateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterTeamCreate, extensions.HookData{
		TeamID:    team.ID().String(),
		EntityID:  team.ID().String(),
		Operation: "create",
		ActorID:   userCtx.UserID,
	})

	resp := toTeamResponse(team)
	resp.SubscriptionKey = team.SubscriptionKey()
	common.RespondJSON(w, http.StatusCreated, resp)
}

// ListMyTeams handles GET /teams
func (h *TeamHandler) ListMyTeams(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	teams, err := h.teams.ListTeamsForUser(r.Context(), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := make([]TeamWithRoleResponse, 0, len(teams))
	for _, tr := range teams {
		resp = append(resp, TeamWithRoleResponse{
			TeamResponse: toTeamResponse(tr.Team),
			Role:         tr.Role.String(),
		})
	}

	common.RespondWithMeta(w, http.StatusOK, resp, common.CountMeta(common.ExtractRequestID(r), len(resp)))
}

// GetTeam handles GET /teams/{teamID}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	team, err := h.teams.Get(r.Context(), chi.URLParam(r, "teamID"), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toTeamResponse(team))
}

// UpdateTeam handles PUT /teams/{teamID}
func (h *TeamHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateTeamRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	team, err := h.teams.Update(r.Context(), chi.URLParam(r, "teamID"), userCtx.UserID, services.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toTeamResponse(team))
}

// DeleteTeam handles DELETE /teams/{teamID}
func (h *TeamHandler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	teamID := chi.URLParam(r, "teamID")
	if err := h.teams.Delete(r.Context(), teamID, userCtx.UserID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterTeamDelete, extensions.HookData{
		TeamID:    teamID,
		EntityID:  teamID,
		Operation: "delete",
		ActorID:   userCtx.UserID,
	})

	w.WriteHeader(http.StatusNoContent)
}

// RotateSubscriptionKey handles POST /teams/{teamID}/rotate-key
func (h *TeamHandler) RotateSubscriptionKey(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	team, err := h.teams.RotateSubscriptionKey(r.Context(), chi.URLParam(r, "teamID"), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := toTeamResponse(team)
	resp.SubscriptionKey = team.SubscriptionKey()
	common.RespondJSON(w, http.StatusOK, resp)
}

// InviteMember handles POST /teams/{teamID}/members
func (h *TeamHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req InviteMemberRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	teamID := chi.URLParam(r, "teamID")
	member, err := h.teams.InviteMember(r.Context(), teamID, userCtx.UserID, services.InviteMemberInput{
		UserID: req.UserID,
		Role:   req.Role,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterMemberInvite, extensions.HookData{
		TeamID:    teamID,
		EntityID:  member.UserID().String(),
		Operation: "invite",
		ActorID:   userCtx.UserID,
		Metadata:  map[string]interface{}{"role": member.Role().String()},
	})

	common.RespondJSON(w, http.StatusCreated, toMemberResponse(member))
}

// ListMembers handles GET /teams/{teamID}/members
func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	members, err := h.teams.ListMembers(r.Context(), chi.URLParam(r, "teamID"), userCtx.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	resp := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, toMemberResponse(m))
	}

	common.RespondWithMeta(w, http.StatusOK, resp, common.CountMeta(common.ExtractRequestID(r), len(resp)))
}

// ChangeMemberRole handles PUT /teams/{teamID}/members/{userID}
func (h *TeamHandler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangeRoleRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, err.Error())
		return
	}

	teamID := chi.URLParam(r, "teamID")
	targetID := chi.URLParam(r, "userID")
	member, err := h.teams.ChangeMemberRole(r.Context(), teamID, userCtx.UserID, targetID, req.Role)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterRoleChange, extensions.HookData{
		TeamID:    teamID,
		EntityID:  targetID,
		Operation: "change_role",
		ActorID:   userCtx.UserID,
		Metadata:  map[string]interface{}{"role": member.Role().String()},
	})

	common.RespondJSON(w, http.StatusOK, toMemberResponse(member))
}

// RemoveMember handles DELETE /teams/{teamID}/members/{userID}
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.HandleStatus(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}

	teamID := chi.URLParam(r, "teamID")
	targetID := chi.URLParam(r, "userID")
	if err := h.teams.RemoveMember(r.Context(), teamID, userCtx.UserID, targetID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.hooks.ExecuteAsync(r.Context(), extensions.HookAfterMemberRemove, extensions.HookData{
		TeamID:    teamID,
		EntityID:  targetID,
		Operation: "remove",
		ActorID:   userCtx.UserID,
	})

	w.WriteHeader(http.StatusNoContent)
}
