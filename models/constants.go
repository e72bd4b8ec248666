package models

import "time"

// Swipe Types
const (
	SwipeTypeLike = "like"
	SwipeTypePass = "pass"
)

// Team Invite Policies
const (
	InvitePolicyOpen          = "open"
	InvitePolicyAdminApproval = "admin_approval"
)

// Join Statuses returned by the team invite workflow
const (
	JoinStatusJoined        = "joined"
	JoinStatusPending       = "pending"
	JoinStatusAlreadyMember = "already_member"
)

// MaxMessageLength bounds chat message content
const MaxMessageLength = 2000

// LastMessagePreviewLength bounds the cached conversation preview
const LastMessagePreviewLength = 100

// MatchSeedMessage is the first message appended to a freshly created conversation
const MatchSeedMessage = "You are now matched 🎉"

// InviteCooldownWindow is how long a rejected user must wait before
// requesting to join the same team again
const InviteCooldownWindow = time.Hour

// AllowedTeamSizes are the valid values for a team's maxMembers
var AllowedTeamSizes = []int{4, 6, 10, 20, 60}

// SortKeyTimeFormat is a fixed-width RFC3339 layout with nanoseconds so that
// lexicographic order on sort keys equals chronological order
const SortKeyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"
