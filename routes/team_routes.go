package routes

import (
	"teamup_server/controllers"
	"teamup_server/services"

	"github.com/gorilla/mux"
)

// RegisterTeamRoutes sets up team, invite-workflow and team-chat routes
// under /teams on the authenticated API router
func RegisterTeamRoutes(api *mux.Router, teamService *services.TeamService, teamChatService *services.TeamChatService) {
	controller := controllers.NewTeamController(teamService, teamChatService)

	teamRouter := api.PathPrefix("/teams").Subrouter()
	teamRouter.HandleFunc("", controller.HandleCreateTeam).Methods("POST")
	teamRouter.HandleFunc("/mine", controller.HandleGetMyTeams).Methods("GET")
	teamRouter.HandleFunc("/join/{token}", controller.HandleJoinViaToken).Methods("POST")
	teamRouter.HandleFunc("/{teamId}/invite", controller.HandleInviteUser).Methods("POST")
	teamRouter.HandleFunc("/{teamId}/invites", controller.HandleGetPendingInvites).Methods("GET")
	teamRouter.HandleFunc("/{teamId}/invites/{userId}/approve", controller.HandleApproveInvite).Methods("POST")
	teamRouter.HandleFunc("/{teamId}/invites/{userId}/reject", controller.HandleRejectInvite).Methods("POST")
	teamRouter.HandleFunc("/{teamId}/cooldown/{userId}", controller.HandleGetCooldown).Methods("GET")
	teamRouter.HandleFunc("/{teamId}/matched-users", controller.HandleGetMatchedUsers).Methods("GET")
	teamRouter.HandleFunc("/{teamId}/capacity", controller.HandleUpdateCapacity).Methods("PUT")
	teamRouter.HandleFunc("/{teamId}/messages", controller.HandleGetTeamMessages).Methods("GET")
	teamRouter.HandleFunc("/{teamId}/message", controller.HandleSendTeamMessage).Methods("POST")
}
