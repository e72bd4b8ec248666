package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"teamup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// InteractionService owns the swipe ledger and derives matches from it.
// A mutual like clears the pair's ledger entries and creates the
// conversation; from then on the conversation alone represents the match.
type InteractionService struct {
	Dynamo   *DynamoService
	Chat     *ChatService
	Profiles *UserProfileService
	Score    ScoreFunc
}

// GetInteraction fetches the directed interaction actor -> target, or nil.
func (s *InteractionService) GetInteraction(ctx context.Context, actorID, targetID string) (*models.Interaction, error) {
	key := map[string]types.AttributeValue{
		"actorId":  &types.AttributeValueMemberS{Value: actorID},
		"targetId": &types.AttributeValueMemberS{Value: targetID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.InteractionsTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	var interaction models.Interaction
	if err := attributevalue.UnmarshalMap(item, &interaction); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}
	return &interaction, nil
}

// RecordSwipe stores a like or pass from actor toward target and reports
// whether it completed a match. ErrAlreadyActed when the pair is already
// matched or the actor already has an outgoing interaction toward the target,
// with one exception: a stored pass is replaced by a like that completes a
// pending incoming like. A pass deletes an existing incoming like (explicit
// decline); a fresh like is required for that user to match later.
func (s *InteractionService) RecordSwipe(ctx context.Context, actorID, targetID, kind string) (bool, error) {
	if kind != models.SwipeTypeLike && kind != models.SwipeTypePass {
		return false, fmt.Errorf("unsupported swipe type: %s", kind)
	}

	if _, err := s.Profiles.RequireCompleteProfile(ctx, actorID); err != nil {
		return false, err
	}
	if _, err := s.Profiles.GetProfile(ctx, targetID); err != nil {
		return false, err
	}

	// The conversation represents the match once the ledger rows are cleared,
	// so it counts as having acted: matched pairs are not re-swipeable.
	matched, err := s.Chat.AreMatched(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if matched {
		return false, ErrAlreadyActed
	}

	existing, err := s.GetInteraction(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	incoming, err := s.GetInteraction(ctx, targetID, actorID)
	if err != nil {
		return false, err
	}

	if existing != nil {
		replacesPass := kind == models.SwipeTypeLike &&
			existing.Type == models.SwipeTypePass &&
			incoming != nil && incoming.Type == models.SwipeTypeLike
		if !replacesPass {
			return false, ErrAlreadyActed
		}
		log.Printf("🔁 Pass replaced by like: %s -> %s", actorID, targetID)
	}

	interaction := models.Interaction{
		ActorID:   actorID,
		TargetID:  targetID,
		Type:      kind,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.InteractionsTable, interaction); err != nil {
		return false, fmt.Errorf("failed to save interaction: %w", err)
	}
	log.Printf("👆 Swipe recorded: %s -> %s (%s)", actorID, targetID, kind)

	if kind == models.SwipeTypePass {
		// An explicit decline removes the incoming like, so a later match
		// requires the other user to like again from scratch.
		if incoming != nil && incoming.Type == models.SwipeTypeLike {
			if err := s.deleteInteraction(ctx, targetID, actorID); err != nil {
				return false, err
			}
			log.Printf("💔 Declined: removed incoming like %s -> %s", targetID, actorID)
		}
		return false, nil
	}

	if incoming == nil || incoming.Type != models.SwipeTypeLike {
		return false, nil
	}

	return true, s.finalizeMatch(ctx, actorID, targetID)
}

// finalizeMatch clears both ledger entries and creates the conversation with
// its seed message. The match is represented solely by the conversation.
func (s *InteractionService) finalizeMatch(ctx context.Context, actorID, targetID string) error {
	if err := s.deleteInteraction(ctx, actorID, targetID); err != nil {
		return err
	}
	if err := s.deleteInteraction(ctx, targetID, actorID); err != nil {
		return err
	}

	conversation, created, err := s.Chat.EnsureConversation(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if created {
		if _, err := s.Chat.AppendMessage(ctx, conversation.ConversationID, actorID, models.MatchSeedMessage); err != nil {
			return fmt.Errorf("failed to seed conversation: %w", err)
		}
	}

	log.Printf("🎉 Match: %s ❤️ %s (conversation %s)", actorID, targetID, conversation.ConversationID)
	return nil
}

func (s *InteractionService) deleteInteraction(ctx context.Context, actorID, targetID string) error {
	key := map[string]types.AttributeValue{
		"actorId":  &types.AttributeValueMemberS{Value: actorID},
		"targetId": &types.AttributeValueMemberS{Value: targetID},
	}
	return s.Dynamo.DeleteItem(ctx, models.InteractionsTable, key)
}

// outgoing returns every interaction the user has sent.
func (s *InteractionService) outgoing(ctx context.Context, userID string) ([]models.Interaction, error) {
	keyCondition := "actorId = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.InteractionsTable, keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var interactions []models.Interaction
	if err := attributevalue.UnmarshalListOfMaps(items, &interactions); err != nil {
		return nil, fmt.Errorf("failed to parse interactions: %w", err)
	}
	return interactions, nil
}

// incoming returns every interaction the user has received, via the target GSI.
func (s *InteractionService) incoming(ctx context.Context, userID string) ([]models.Interaction, error) {
	keyCondition := "targetId = :user"
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.InteractionsTable, models.TargetIndex, keyCondition, expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch interactions: %w", err)
	}

	var interactions []models.Interaction
	if err := attributevalue.UnmarshalListOfMaps(items, &interactions); err != nil {
		return nil, fmt.Errorf("failed to parse interactions: %w", err)
	}
	return interactions, nil
}

// ListIncomingRequests returns users who liked userID and have not been liked back.
func (s *InteractionService) ListIncomingRequests(ctx context.Context, userID string) ([]models.UserSummary, error) {
	received, err := s.incoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	sent, err := s.outgoing(ctx, userID)
	if err != nil {
		return nil, err
	}

	likedByMe := make(map[string]bool)
	for _, interaction := range sent {
		if interaction.Type == models.SwipeTypeLike {
			likedByMe[interaction.TargetID] = true
		}
	}

	var requesterIDs []string
	for _, interaction := range received {
		if interaction.Type == models.SwipeTypeLike && !likedByMe[interaction.ActorID] {
			requesterIDs = append(requesterIDs, interaction.ActorID)
		}
	}

	return s.summarize(ctx, userID, requesterIDs)
}

// ListPendingRequests returns users userID liked who have not reciprocated.
func (s *InteractionService) ListPendingRequests(ctx context.Context, userID string) ([]models.UserSummary, error) {
	sent, err := s.outgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.incoming(ctx, userID)
	if err != nil {
		return nil, err
	}

	likedMe := make(map[string]bool)
	for _, interaction := range received {
		if interaction.Type == models.SwipeTypeLike {
			likedMe[interaction.ActorID] = true
		}
	}

	var pendingIDs []string
	for _, interaction := range sent {
		if interaction.Type == models.SwipeTypeLike && !likedMe[interaction.TargetID] {
			pendingIDs = append(pendingIDs, interaction.TargetID)
		}
	}

	return s.summarize(ctx, userID, pendingIDs)
}

// ListMatches returns the profiles of every user matched with userID.
func (s *InteractionService) ListMatches(ctx context.Context, userID string) ([]models.UserProfile, error) {
	peerIDs, err := s.Chat.MatchedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Profiles.GetProfiles(ctx, peerIDs)
}

// GetCandidates returns swipeable profiles ranked by compatibility,
// excluding the user, anyone they already swiped on and their current matches.
func (s *InteractionService) GetCandidates(ctx context.Context, userID string) ([]models.UserSummary, error) {
	currentUser, err := s.Profiles.RequireCompleteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	sent, err := s.outgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	peers, err := s.Chat.MatchedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	swiped := map[string]bool{userID: true}
	for _, interaction := range sent {
		swiped[interaction.TargetID] = true
	}
	// Current matches no longer hold ledger rows; exclude them by conversation.
	for _, peer := range peers {
		swiped[peer] = true
	}

	var profiles []models.UserProfile
	err = s.Dynamo.ScanWithFilter(ctx, models.UserProfilesTable, func(item map[string]types.AttributeValue) bool {
		idAttr, ok := item["userId"].(*types.AttributeValueMemberS)
		if !ok || swiped[idAttr.Value] {
			return false
		}
		completeAttr, ok := item["profileComplete"].(*types.AttributeValueMemberBOOL)
		return ok && completeAttr.Value
	}, nil, &profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	candidates := make([]models.UserSummary, 0, len(profiles))
	for _, profile := range profiles {
		candidates = append(candidates, models.UserSummary{
			UserProfile:   profile,
			Compatibility: s.score(*currentUser, profile).Score,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Compatibility > candidates[j].Compatibility
	})
	return candidates, nil
}

// summarize loads profiles for the given IDs and annotates a compatibility score.
func (s *InteractionService) summarize(ctx context.Context, userID string, ids []string) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}

	currentUser, err := s.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.Profiles.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.UserSummary, 0, len(profiles))
	for _, profile := range profiles {
		summaries = append(summaries, models.UserSummary{
			UserProfile:   profile,
			Compatibility: s.score(*currentUser, profile).Score,
		})
	}
	return summaries, nil
}

func (s *InteractionService) score(currentUser, candidate models.UserProfile) models.Compatibility {
	if s.Score != nil {
		return s.Score(currentUser, candidate)
	}
	return CompatibilityScore(currentUser, candidate)
}
