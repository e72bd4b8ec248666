package services

import (
	"context"
	"fmt"

	"teamup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserProfileService reads profiles owned by the external profile service.
// Matching and team actions use it for summaries and completeness gating.
type UserProfileService struct {
	Dynamo *DynamoService
}

// GetProfile fetches a single profile, or ErrNotFound.
func (s *UserProfileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return &profile, nil
}

// RequireCompleteProfile returns the profile, or ErrProfileIncomplete when
// the user has not finished onboarding.
func (s *UserProfileService) RequireCompleteProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.ProfileComplete {
		return nil, ErrProfileIncomplete
	}
	return profile, nil
}

// GetProfiles fetches several profiles, skipping IDs with no record.
func (s *UserProfileService) GetProfiles(ctx context.Context, userIDs []string) ([]models.UserProfile, error) {
	profiles := make([]models.UserProfile, 0, len(userIDs))
	for _, id := range userIDs {
		profile, err := s.GetProfile(ctx, id)
		if err != nil {
			continue
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// ScoreFunc ranks a candidate against the current user. The production
// implementation is CompatibilityScore; tests may inject their own.
type ScoreFunc func(currentUser, candidate models.UserProfile) models.Compatibility

// CompatibilityScore weighs shared skills (up to 50), shared interests
// (up to 30) and availability alignment (up to 20).
func CompatibilityScore(currentUser, candidate models.UserProfile) models.Compatibility {
	score := 0.0

	common := intersect(currentUser.Skills, candidate.Skills)
	if len(common) > 0 {
		ratio := float64(len(common)) / float64(max(len(currentUser.Skills), 1))
		if ratio > 1 {
			ratio = 1
		}
		score += ratio * 50
	}

	sharedInterests := intersect(currentUser.Interests, candidate.Interests)
	if len(sharedInterests) > 0 {
		ratio := float64(len(sharedInterests)) / float64(max(len(currentUser.Interests), 1))
		if ratio > 1 {
			ratio = 1
		}
		score += ratio * 30
	}

	switch {
	case currentUser.Availability == candidate.Availability:
		score += 20
	case (currentUser.Availability == "High" && candidate.Availability == "Medium") ||
		(currentUser.Availability == "Medium" && candidate.Availability == "High"):
		score += 10
	}

	rounded := int(score + 0.5)
	return models.Compatibility{
		Score:       rounded,
		Explanation: fmt.Sprintf("%d shared skill(s), %d shared interest(s)", len(common), len(sharedInterests)),
	}
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	var out []string
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
