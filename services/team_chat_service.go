package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"teamup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// TeamChatService is the broadcast channel per team room. No match gating
// and no per-recipient read state; membership is the only gate.
type TeamChatService struct {
	Dynamo *DynamoService
	Teams  *TeamService
}

// ListTeamMessages returns a team's messages in ascending order. Member only.
func (s *TeamChatService) ListTeamMessages(ctx context.Context, teamID, userID string) ([]models.TeamMessage, error) {
	team, err := s.Teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsMember(userID) {
		return nil, ErrUnauthorized
	}

	keyCondition := "teamId = :team"
	expressionValues := map[string]types.AttributeValue{
		":team": &types.AttributeValueMemberS{Value: teamID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.TeamMessagesTable, keyCondition, expressionValues, nil, 0, false)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team messages: %w", err)
	}

	var messages []models.TeamMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse team messages: %w", err)
	}
	return messages, nil
}

// SendTeamMessage validates and stores a team message. Member only.
func (s *TeamChatService) SendTeamMessage(ctx context.Context, teamID, senderID, content string) (*models.TeamMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > models.MaxMessageLength {
		return nil, ErrContentTooLarge
	}

	team, err := s.Teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.IsMember(senderID) {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	messageID := uuid.New().String()
	message := models.TeamMessage{
		TeamID:    teamID,
		SortKey:   models.MessageSortKey(now, messageID),
		MessageID: messageID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now.Format(models.SortKeyTimeFormat),
	}

	if err := s.Dynamo.PutItem(ctx, models.TeamMessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store team message: %w", err)
	}
	return &message, nil
}
