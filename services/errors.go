package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the services. Controllers and the socket
// gateway map these to HTTP status codes / error events.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyActed      = errors.New("already swiped on this user")
	ErrDuplicateInvite   = errors.New("user already invited")
	ErrAlreadyMember     = errors.New("user already in team")
	ErrTeamFull          = errors.New("team is full")
	ErrProfileIncomplete = errors.New("profile incomplete")
	ErrNotMatched        = errors.New("user not matched")
	ErrEmptyContent      = errors.New("message empty")
	ErrContentTooLarge   = errors.New("message too long")
)

// RateLimitedError reports an active invite cooldown and how long remains.
type RateLimitedError struct {
	RemainingMs      int64 `json:"remainingMs"`
	RemainingMinutes int   `json:"remainingMinutes"`
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: wait %d more minute(s)", e.RemainingMinutes)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
