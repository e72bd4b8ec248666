package routes

import (
	"teamup_server/controllers"
	"teamup_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up swipe and candidate routes under /matches on
// the authenticated API router
func RegisterMatchRoutes(api *mux.Router, interactionService *services.InteractionService) {
	controller := controllers.NewInteractionController(interactionService)

	matchRouter := api.PathPrefix("/matches").Subrouter()
	matchRouter.HandleFunc("/swipe", controller.HandleSwipe).Methods("POST")
	matchRouter.HandleFunc("/candidates", controller.HandleGetCandidates).Methods("GET")
}
