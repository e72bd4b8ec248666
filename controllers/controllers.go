package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"teamup_server/services"
)

// writeJSON encodes a response body with a status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("⚠️ Failed to encode response: %v", err)
	}
}

// writeError maps service errors onto the HTTP error surface.
func writeError(w http.ResponseWriter, err error) {
	var rateLimited *services.RateLimitedError
	if errors.As(err, &rateLimited) {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"message":          "You must wait before requesting again",
			"remainingMs":      rateLimited.RemainingMs,
			"remainingMinutes": rateLimited.RemainingMinutes,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized),
		errors.Is(err, services.ErrTeamFull),
		errors.Is(err, services.ErrProfileIncomplete),
		errors.Is(err, services.ErrNotMatched):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrAlreadyActed),
		errors.Is(err, services.ErrDuplicateInvite),
		errors.Is(err, services.ErrAlreadyMember):
		status = http.StatusConflict
	case errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrContentTooLarge):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Request failed: %v", err)
		writeJSON(w, status, map[string]string{"message": "Server Error"})
		return
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// WelcomeHandler provides a welcome message
func WelcomeHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the TeamUp API"})
}
