package models

// Team is a project team with an admin, a member roster and an invite policy.
type Team struct {
	TeamID            string   `dynamodbav:"teamId" json:"teamId"` // Partition Key
	Name              string   `dynamodbav:"name" json:"name"`
	AdminID           string   `dynamodbav:"adminId" json:"adminId"`
	Members           []string `dynamodbav:"members" json:"members"`
	MaxMembers        int      `dynamodbav:"maxMembers" json:"maxMembers"`
	InvitePolicy      string   `dynamodbav:"invitePolicy" json:"invitePolicy"` // open, admin_approval
	InviteToken       string   `dynamodbav:"inviteToken" json:"inviteToken"`   // admin link, bypasses approval
	MemberInviteToken string   `dynamodbav:"memberInviteToken" json:"memberInviteToken"`
	CreatedAt         string   `dynamodbav:"createdAt" json:"createdAt"`
}

// TeamsTable is the DynamoDB table name for teams
const TeamsTable = "Teams"

// GSIs used to resolve a team from an invite link token
const (
	InviteTokenIndex       = "inviteToken-index"
	MemberInviteTokenIndex = "memberInviteToken-index"
)

// IsMember reports whether userID is on the team roster.
func (t Team) IsMember(userID string) bool {
	for _, m := range t.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// IsFull reports whether the roster has reached capacity.
func (t Team) IsFull() bool {
	return len(t.Members) >= t.MaxMembers
}

// TeamInvite is a pending join request awaiting admin approval.
// At most one exists per (teamId, userId).
type TeamInvite struct {
	TeamID    string `dynamodbav:"teamId" json:"teamId"` // Partition Key
	UserID    string `dynamodbav:"userId" json:"userId"` // Sort Key
	InvitedBy string `dynamodbav:"invitedBy" json:"invitedBy"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// TeamInvitesTable is the DynamoDB table name for pending team invites
const TeamInvitesTable = "TeamInvites"

// InviteCooldown records an admin rejection; the (teamId, userId) pair may not
// request again until InviteCooldownWindow has elapsed past RejectedAt.
type InviteCooldown struct {
	TeamID     string `dynamodbav:"teamId" json:"teamId"` // Partition Key
	UserID     string `dynamodbav:"userId" json:"userId"` // Sort Key
	RejectedAt string `dynamodbav:"rejectedAt" json:"rejectedAt"`
}

// TeamCooldownsTable is the DynamoDB table name for invite cooldowns
const TeamCooldownsTable = "TeamCooldowns"
