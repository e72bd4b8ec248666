package controllers

import (
	"encoding/json"
	"net/http"

	"teamup_server/services"
	"teamup_server/utils"
)

// InteractionController exposes the swipe ledger and match listings.
type InteractionController struct {
	Interactions *services.InteractionService
}

// NewInteractionController initializes the controller
func NewInteractionController(service *services.InteractionService) *InteractionController {
	return &InteractionController{Interactions: service}
}

// HandleSwipe records a like or pass and reports whether it completed a match.
func (c *InteractionController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TargetID string `json:"targetId"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	userID := utils.UserID(r)
	if request.TargetID == "" || request.TargetID == userID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid target"})
		return
	}

	isMatch, err := c.Interactions.RecordSwipe(r.Context(), userID, request.TargetID, request.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "isMatch": isMatch})
}

// HandleGetCandidates returns swipeable users ranked by compatibility.
func (c *InteractionController) HandleGetCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := c.Interactions.GetCandidates(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

// HandleGetIncomingRequests returns users who liked the caller and await a response.
func (c *InteractionController) HandleGetIncomingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := c.Interactions.ListIncomingRequests(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// HandleGetPendingRequests returns users the caller liked who have not reciprocated.
func (c *InteractionController) HandleGetPendingRequests(w http.ResponseWriter, r *http.Request) {
	pending, err := c.Interactions.ListPendingRequests(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pending)
}

// HandleGetMatches returns the caller's matched users.
func (c *InteractionController) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := c.Interactions.ListMatches(r.Context(), utils.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
