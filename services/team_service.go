package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"teamup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// TeamService owns teams, the pending-invite queue and the rejection
// cooldown ledger.
type TeamService struct {
	Dynamo   *DynamoService
	Chat     *ChatService
	Profiles *UserProfileService
}

// JoinResult reports the outcome of a join or invite attempt.
type JoinResult struct {
	Status string       `json:"status"` // joined, pending, already_member
	Team   *models.Team `json:"team,omitempty"`
}

// CooldownStatus reports how long a rejected user still has to wait.
type CooldownStatus struct {
	RemainingMs      int64 `json:"remainingMs"`
	RemainingMinutes int   `json:"remainingMinutes"`
}

// PendingInviteSummary is a pending invite annotated with profile data for
// the admin review list.
type PendingInviteSummary struct {
	TeamID    string             `json:"teamId"`
	User      models.UserProfile `json:"user"`
	InvitedBy string             `json:"invitedBy"`
	CreatedAt string             `json:"createdAt"`
}

// CreateTeam creates a team with the caller as admin and first member.
func (s *TeamService) CreateTeam(ctx context.Context, adminID, name string, maxMembers int, invitePolicy string) (*models.Team, error) {
	if _, err := s.Profiles.RequireCompleteProfile(ctx, adminID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("team name required")
	}
	if !allowedTeamSize(maxMembers) {
		return nil, fmt.Errorf("invalid team size: %d", maxMembers)
	}
	if invitePolicy == "" {
		invitePolicy = models.InvitePolicyOpen
	}
	if invitePolicy != models.InvitePolicyOpen && invitePolicy != models.InvitePolicyAdminApproval {
		return nil, fmt.Errorf("invalid invite policy: %s", invitePolicy)
	}

	team := models.Team{
		TeamID:            uuid.New().String(),
		Name:              name,
		AdminID:           adminID,
		Members:           []string{adminID},
		MaxMembers:        maxMembers,
		InvitePolicy:      invitePolicy,
		InviteToken:       newInviteToken(),
		MemberInviteToken: newInviteToken(),
		CreatedAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Dynamo.PutItem(ctx, models.TeamsTable, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	log.Printf("🛠️ Team created: %s (%s)", team.Name, team.TeamID)
	return &team, nil
}

// GetTeam fetches a team by ID, or ErrNotFound.
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: teamID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.TeamsTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}

	var team models.Team
	if err := attributevalue.UnmarshalMap(item, &team); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team: %w", err)
	}
	return &team, nil
}

// JoinViaToken joins the caller to the team behind an invite link. The admin
// link always joins directly; the member link joins directly only under the
// open policy, otherwise the request lands in the pending queue (subject to
// the rejection cooldown). A repeat request while pending is a no-op.
func (s *TeamService) JoinViaToken(ctx context.Context, userID, token string) (*JoinResult, error) {
	if _, err := s.Profiles.RequireCompleteProfile(ctx, userID); err != nil {
		return nil, err
	}

	team, isAdminLink, err := s.findTeamByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if team.IsMember(userID) {
		return &JoinResult{Status: models.JoinStatusAlreadyMember, Team: team}, nil
	}
	if team.IsFull() {
		return nil, ErrTeamFull
	}

	if isAdminLink {
		if err := s.deletePendingInvite(ctx, team.TeamID, userID); err != nil {
			return nil, err
		}
		if err := s.addMember(ctx, team, userID); err != nil {
			return nil, err
		}
		return &JoinResult{Status: models.JoinStatusJoined, Team: team}, nil
	}

	if team.InvitePolicy == models.InvitePolicyOpen {
		if err := s.addMember(ctx, team, userID); err != nil {
			return nil, err
		}
		return &JoinResult{Status: models.JoinStatusJoined, Team: team}, nil
	}

	if err := s.checkCooldown(ctx, team.TeamID, userID); err != nil {
		return nil, err
	}

	if _, err := s.putPendingInvite(ctx, team.TeamID, userID, team.AdminID); err != nil {
		return nil, err
	}
	return &JoinResult{Status: models.JoinStatusPending, Team: team}, nil
}

// InviteUser lets a team member pull in one of their matches. Admins and open
// teams add the user immediately; otherwise the invite lands in the pending
// queue, subject to the cooldown.
func (s *TeamService) InviteUser(ctx context.Context, teamID, inviterID, targetID string) (*JoinResult, error) {
	if _, err := s.Profiles.RequireCompleteProfile(ctx, inviterID); err != nil {
		return nil, err
	}
	if _, err := s.Profiles.GetProfile(ctx, targetID); err != nil {
		return nil, err
	}

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsMember(inviterID) {
		return nil, ErrUnauthorized
	}
	if team.IsMember(targetID) {
		return nil, ErrAlreadyMember
	}

	matched, err := s.Chat.AreMatched(ctx, inviterID, targetID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrNotMatched
	}

	if team.IsFull() {
		return nil, ErrTeamFull
	}

	if team.AdminID == inviterID || team.InvitePolicy == models.InvitePolicyOpen {
		if err := s.addMember(ctx, team, targetID); err != nil {
			return nil, err
		}
		return &JoinResult{Status: models.JoinStatusJoined, Team: team}, nil
	}

	if err := s.checkCooldown(ctx, team.TeamID, targetID); err != nil {
		return nil, err
	}

	created, err := s.putPendingInvite(ctx, team.TeamID, targetID, inviterID)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrDuplicateInvite
	}
	return &JoinResult{Status: models.JoinStatusPending, Team: team}, nil
}

// Approve moves a pending invite into membership. Admin only.
func (s *TeamService) Approve(ctx context.Context, teamID, adminID, userID string) error {
	team, err := s.requireAdmin(ctx, teamID, adminID)
	if err != nil {
		return err
	}

	invite, err := s.getPendingInvite(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if invite == nil {
		return fmt.Errorf("pending invite for %s: %w", userID, ErrNotFound)
	}
	if team.IsFull() {
		return ErrTeamFull
	}

	if err := s.deletePendingInvite(ctx, teamID, userID); err != nil {
		return err
	}
	if err := s.addMember(ctx, team, userID); err != nil {
		return err
	}
	log.Printf("✅ Invite approved: %s joined team %s", userID, teamID)
	return nil
}

// Reject removes a pending invite and starts the cooldown window. Admin only.
func (s *TeamService) Reject(ctx context.Context, teamID, adminID, userID string) error {
	if _, err := s.requireAdmin(ctx, teamID, adminID); err != nil {
		return err
	}

	invite, err := s.getPendingInvite(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if invite == nil {
		return fmt.Errorf("pending invite for %s: %w", userID, ErrNotFound)
	}

	if err := s.deletePendingInvite(ctx, teamID, userID); err != nil {
		return err
	}

	cooldown := models.InviteCooldown{
		TeamID:     teamID,
		UserID:     userID,
		RejectedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.TeamCooldownsTable, cooldown); err != nil {
		return fmt.Errorf("failed to record cooldown: %w", err)
	}
	log.Printf("🚫 Invite rejected: %s on team %s (cooldown started)", userID, teamID)
	return nil
}

// ListPendingInvites returns the pending queue for admin review.
func (s *TeamService) ListPendingInvites(ctx context.Context, teamID, adminID string) ([]PendingInviteSummary, error) {
	if _, err := s.requireAdmin(ctx, teamID, adminID); err != nil {
		return nil, err
	}

	keyCondition := "teamId = :team"
	expressionValues := map[string]types.AttributeValue{
		":team": &types.AttributeValueMemberS{Value: teamID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.TeamInvitesTable, keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending invites: %w", err)
	}

	var invites []models.TeamInvite
	if err := attributevalue.UnmarshalListOfMaps(items, &invites); err != nil {
		return nil, fmt.Errorf("failed to parse pending invites: %w", err)
	}

	summaries := make([]PendingInviteSummary, 0, len(invites))
	for _, invite := range invites {
		profile, err := s.Profiles.GetProfile(ctx, invite.UserID)
		if err != nil {
			continue
		}
		summaries = append(summaries, PendingInviteSummary{
			TeamID:    invite.TeamID,
			User:      *profile,
			InvitedBy: invite.InvitedBy,
			CreatedAt: invite.CreatedAt,
		})
	}
	return summaries, nil
}

// GetCooldownStatus reports the remaining wait for a (team, user) pair.
// Zero remaining means no active cooldown.
func (s *TeamService) GetCooldownStatus(ctx context.Context, teamID, userID string) (*CooldownStatus, error) {
	remaining, err := s.cooldownRemaining(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return &CooldownStatus{}, nil
	}
	return &CooldownStatus{
		RemainingMs:      remaining.Milliseconds(),
		RemainingMinutes: int((remaining + time.Minute - 1) / time.Minute),
	}, nil
}

// ListMatchedUsers returns the caller's matches who could still be invited:
// not already members and not already pending.
func (s *TeamService) ListMatchedUsers(ctx context.Context, teamID, userID string) ([]models.UserProfile, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsMember(userID) {
		return nil, ErrUnauthorized
	}

	peerIDs, err := s.Chat.MatchedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	var inviteable []string
	for _, peer := range peerIDs {
		if team.IsMember(peer) {
			continue
		}
		invite, err := s.getPendingInvite(ctx, teamID, peer)
		if err != nil {
			return nil, err
		}
		if invite != nil {
			continue
		}
		inviteable = append(inviteable, peer)
	}

	return s.Profiles.GetProfiles(ctx, inviteable)
}

// ListMyTeams returns every team the user is a member of.
func (s *TeamService) ListMyTeams(ctx context.Context, userID string) ([]models.Team, error) {
	var teams []models.Team
	err := s.Dynamo.ScanWithFilter(ctx, models.TeamsTable, func(item map[string]types.AttributeValue) bool {
		membersAttr, ok := item["members"].(*types.AttributeValueMemberL)
		if !ok {
			return false
		}
		for _, member := range membersAttr.Value {
			if id, ok := member.(*types.AttributeValueMemberS); ok && id.Value == userID {
				return true
			}
		}
		return false
	}, nil, &teams)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}
	return teams, nil
}

// UpdateCapacity changes a team's maxMembers. Admin only; may not shrink
// below the current roster.
func (s *TeamService) UpdateCapacity(ctx context.Context, teamID, adminID string, maxMembers int) (*models.Team, error) {
	team, err := s.requireAdmin(ctx, teamID, adminID)
	if err != nil {
		return nil, err
	}
	if !allowedTeamSize(maxMembers) {
		return nil, fmt.Errorf("invalid team size: %d", maxMembers)
	}
	if len(team.Members) > maxMembers {
		return nil, fmt.Errorf("current members exceed new capacity")
	}

	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: teamID},
	}
	updateExpression := "SET maxMembers = :max"
	expressionValues := map[string]types.AttributeValue{
		":max": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", maxMembers)},
	}
	if _, err := s.Dynamo.UpdateItem(ctx, models.TeamsTable, updateExpression, key, expressionValues, nil); err != nil {
		return nil, err
	}

	team.MaxMembers = maxMembers
	return team, nil
}

func (s *TeamService) requireAdmin(ctx context.Context, teamID, userID string) (*models.Team, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.AdminID != userID {
		return nil, ErrUnauthorized
	}
	return team, nil
}

func (s *TeamService) findTeamByToken(ctx context.Context, token string) (*models.Team, bool, error) {
	expressionValues := map[string]types.AttributeValue{
		":token": &types.AttributeValueMemberS{Value: token},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.TeamsTable, models.InviteTokenIndex,
		"inviteToken = :token", expressionValues, nil, 1)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up invite token: %w", err)
	}
	isAdminLink := len(items) > 0

	if !isAdminLink {
		items, err = s.Dynamo.QueryItemsWithIndex(ctx, models.TeamsTable, models.MemberInviteTokenIndex,
			"memberInviteToken = :token", expressionValues, nil, 1)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up invite token: %w", err)
		}
	}
	if len(items) == 0 {
		return nil, false, fmt.Errorf("invite link: %w", ErrNotFound)
	}

	var team models.Team
	if err := attributevalue.UnmarshalMap(items[0], &team); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal team: %w", err)
	}
	return &team, isAdminLink, nil
}

// addMember writes the extended roster back to the team record.
func (s *TeamService) addMember(ctx context.Context, team *models.Team, userID string) error {
	if team.IsMember(userID) {
		return nil
	}

	members := append(append([]string{}, team.Members...), userID)
	memberValues := make([]types.AttributeValue, 0, len(members))
	for _, member := range members {
		memberValues = append(memberValues, &types.AttributeValueMemberS{Value: member})
	}

	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: team.TeamID},
	}
	updateExpression := "SET members = :members"
	expressionValues := map[string]types.AttributeValue{
		":members": &types.AttributeValueMemberL{Value: memberValues},
	}

	if _, err := s.Dynamo.UpdateItem(ctx, models.TeamsTable, updateExpression, key, expressionValues, nil); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	team.Members = members
	return nil
}

func (s *TeamService) getPendingInvite(ctx context.Context, teamID, userID string) (*models.TeamInvite, error) {
	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: teamID},
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.TeamInvitesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var invite models.TeamInvite
	if err := attributevalue.UnmarshalMap(item, &invite); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invite: %w", err)
	}
	return &invite, nil
}

// putPendingInvite is conditional on no invite existing yet, so concurrent
// requests cannot enqueue duplicates. Returns whether this call created it.
func (s *TeamService) putPendingInvite(ctx context.Context, teamID, userID, invitedBy string) (bool, error) {
	invite := models.TeamInvite{
		TeamID:    teamID,
		UserID:    userID,
		InvitedBy: invitedBy,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	created, err := s.Dynamo.PutItemIfAbsent(ctx, models.TeamInvitesTable, invite, "teamId")
	if err != nil {
		return false, fmt.Errorf("failed to create pending invite: %w", err)
	}
	return created, nil
}

func (s *TeamService) deletePendingInvite(ctx context.Context, teamID, userID string) error {
	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: teamID},
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	return s.Dynamo.DeleteItem(ctx, models.TeamInvitesTable, key)
}

// checkCooldown returns a RateLimitedError while the rejection window is active.
func (s *TeamService) checkCooldown(ctx context.Context, teamID, userID string) error {
	remaining, err := s.cooldownRemaining(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &RateLimitedError{
			RemainingMs:      remaining.Milliseconds(),
			RemainingMinutes: int((remaining + time.Minute - 1) / time.Minute),
		}
	}
	return nil
}

// cooldownRemaining computes the unexpired portion of the cooldown window.
// Expired records are simply ignored, never deleted.
func (s *TeamService) cooldownRemaining(ctx context.Context, teamID, userID string) (time.Duration, error) {
	key := map[string]types.AttributeValue{
		"teamId": &types.AttributeValueMemberS{Value: teamID},
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.TeamCooldownsTable, key)
	if err != nil {
		return 0, err
	}
	if item == nil {
		return 0, nil
	}

	var cooldown models.InviteCooldown
	if err := attributevalue.UnmarshalMap(item, &cooldown); err != nil {
		return 0, fmt.Errorf("failed to unmarshal cooldown: %w", err)
	}

	rejectedAt, err := time.Parse(time.RFC3339, cooldown.RejectedAt)
	if err != nil {
		return 0, fmt.Errorf("invalid rejectedAt on cooldown: %w", err)
	}

	elapsed := time.Since(rejectedAt)
	if elapsed >= models.InviteCooldownWindow {
		return 0, nil
	}
	return models.InviteCooldownWindow - elapsed, nil
}

func allowedTeamSize(size int) bool {
	for _, allowed := range models.AllowedTeamSizes {
		if size == allowed {
			return true
		}
	}
	return false
}

func newInviteToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
