package controllers

import (
	"net/http"
	"strconv"

	"teamup_server/services"
	"teamup_server/utils"

	"github.com/gorilla/mux"
)

// ChatController exposes the conversation and message store over REST; this
// is also the polling fallback for clients without a live socket.
type ChatController struct {
	Chat *services.ChatService
}

// NewChatController initializes the controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{Chat: service}
}

// HandleGetConversations lists the caller's conversations with unread counts.
func (c *ChatController) HandleGetConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := c.Chat.ListConversations(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conversations)
}

// HandleGetMessages returns an ascending page of messages, optionally before
// a timestamp cursor.
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	before := r.URL.Query().Get("before")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := c.Chat.ListMessages(r.Context(), conversationID, utils.UserID(r), before, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// HandleMarkRead flips the caller's unread messages in a conversation.
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]

	updated, err := c.Chat.MarkRead(r.Context(), conversationID, utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "updated": updated})
}
