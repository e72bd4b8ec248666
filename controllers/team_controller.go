package controllers

import (
	"encoding/json"
	"net/http"

	"teamup_server/services"
	"teamup_server/utils"

	"github.com/gorilla/mux"
)

// TeamController exposes team creation, the invite/approval workflow and
// team chat.
type TeamController struct {
	Teams    *services.TeamService
	TeamChat *services.TeamChatService
}

// NewTeamController initializes the controller
func NewTeamController(teams *services.TeamService, teamChat *services.TeamChatService) *TeamController {
	return &TeamController{Teams: teams, TeamChat: teamChat}
}

// HandleCreateTeam creates a team with the caller as admin.
func (c *TeamController) HandleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Name         string `json:"name"`
		MaxMembers   int    `json:"maxMembers"`
		InvitePolicy string `json:"invitePolicy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	team, err := c.Teams.CreateTeam(r.Context(), utils.UserID(r), request.Name, request.MaxMembers, request.InvitePolicy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

// HandleGetMyTeams lists the caller's teams.
func (c *TeamController) HandleGetMyTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := c.Teams.ListMyTeams(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleJoinViaToken processes a join request through an invite link.
func (c *TeamController) HandleJoinViaToken(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	result, err := c.Teams.JoinViaToken(r.Context(), utils.UserID(r), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleInviteUser lets a member invite one of their matches.
func (c *TeamController) HandleInviteUser(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var request struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User ID required"})
		return
	}

	result, err := c.Teams.InviteUser(r.Context(), teamID, utils.UserID(r), request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetPendingInvites lists the pending queue for admin review.
func (c *TeamController) HandleGetPendingInvites(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	invites, err := c.Teams.ListPendingInvites(r.Context(), teamID, utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invites)
}

// HandleApproveInvite moves a pending invite into membership.
func (c *TeamController) HandleApproveInvite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := c.Teams.Approve(r.Context(), vars["teamId"], utils.UserID(r), vars["userId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleRejectInvite removes a pending invite and starts the cooldown.
func (c *TeamController) HandleRejectInvite(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := c.Teams.Reject(r.Context(), vars["teamId"], utils.UserID(r), vars["userId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// HandleGetCooldown reports the remaining wait for a rejected user.
func (c *TeamController) HandleGetCooldown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	status, err := c.Teams.GetCooldownStatus(r.Context(), vars["teamId"], vars["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// HandleGetMatchedUsers lists the caller's matches who could still be invited.
func (c *TeamController) HandleGetMatchedUsers(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	matched, err := c.Teams.ListMatchedUsers(r.Context(), teamID, utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matched)
}

// HandleUpdateCapacity changes a team's maxMembers.
func (c *TeamController) HandleUpdateCapacity(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var request struct {
		MaxMembers int `json:"maxMembers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	team, err := c.Teams.UpdateCapacity(r.Context(), teamID, utils.UserID(r), request.MaxMembers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// HandleGetTeamMessages returns a team's chat history.
func (c *TeamController) HandleGetTeamMessages(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	messages, err := c.TeamChat.ListTeamMessages(r.Context(), teamID, utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HandleSendTeamMessage stores a team chat message.
func (c *TeamController) HandleSendTeamMessage(w http.ResponseWriter, r *http.Request) {
	teamID := mux.Vars(r)["teamId"]

	var request struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	message, err := c.TeamChat.SendTeamMessage(r.Context(), teamID, utils.UserID(r), request.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, message)
}
