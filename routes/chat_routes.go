package routes

import (
	"teamup_server/controllers"
	"teamup_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up conversation, message and request-list routes
// under /chat on the authenticated API router
func RegisterChatRoutes(api *mux.Router, chatService *services.ChatService, interactionService *services.InteractionService) {
	chatController := controllers.NewChatController(chatService)
	interactionController := controllers.NewInteractionController(interactionService)

	chatRouter := api.PathPrefix("/chat").Subrouter()
	chatRouter.HandleFunc("/conversations", chatController.HandleGetConversations).Methods("GET")
	chatRouter.HandleFunc("/messages/{conversationId}", chatController.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/messages/{conversationId}/read", chatController.HandleMarkRead).Methods("POST")
	chatRouter.HandleFunc("/matches", interactionController.HandleGetMatches).Methods("GET")
	chatRouter.HandleFunc("/requests", interactionController.HandleGetIncomingRequests).Methods("GET")
	chatRouter.HandleFunc("/pending", interactionController.HandleGetPendingRequests).Methods("GET")
}
