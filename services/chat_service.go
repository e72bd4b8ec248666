package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"teamup_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService owns conversations and their messages. All mutation goes
// through these methods; the records are never written directly.
type ChatService struct {
	Dynamo   *DynamoService
	Profiles *UserProfileService
}

// ConversationSummary is one row of a user's conversation list.
type ConversationSummary struct {
	ConversationID string               `json:"conversationId"`
	Participants   []models.UserProfile `json:"participants"`
	LastMessage    string               `json:"lastMessage"`
	LastMessageAt  string               `json:"lastMessageAt"`
	UnreadCount    int                  `json:"unreadCount"`
}

// EnsureConversation creates the conversation for an unordered pair if it does
// not exist yet, keyed deterministically so concurrent callers cannot create
// two records. Returns the conversation and whether this call created it.
func (s *ChatService) EnsureConversation(ctx context.Context, userA, userB string) (*models.Conversation, bool, error) {
	conversationID := models.ConversationIDFor(userA, userB)
	pair := []string{userA, userB}
	sort.Strings(pair)

	now := time.Now().UTC().Format(time.RFC3339)
	conversation := models.Conversation{
		ConversationID: conversationID,
		ParticipantA:   pair[0],
		ParticipantB:   pair[1],
		LastMessageAt:  now,
		CreatedAt:      now,
	}

	created, err := s.Dynamo.PutItemIfAbsent(ctx, models.ConversationsTable, conversation, "conversationId")
	if err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	if created {
		log.Printf("💬 Conversation created: %s", conversationID)
		return &conversation, true, nil
	}

	existing, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// GetConversation fetches a conversation by its deterministic key, or ErrNotFound.
func (s *ChatService) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	key := map[string]types.AttributeValue{
		"conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}

	item, err := s.Dynamo.GetItem(ctx, models.ConversationsTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}

	var conversation models.Conversation
	if err := attributevalue.UnmarshalMap(item, &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conversation, nil
}

// AppendMessage validates and stores a message, then refreshes the
// conversation's last-message cache. The cache update is best-effort; a
// failure there never un-stores the message.
func (s *ChatService) AppendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > models.MaxMessageLength {
		return nil, ErrContentTooLarge
	}

	conversation, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, ErrUnauthorized
	}

	now := time.Now().UTC()
	messageID := uuid.New().String()
	message := models.Message{
		ConversationID: conversationID,
		SortKey:        models.MessageSortKey(now, messageID),
		MessageID:      messageID,
		SenderID:       senderID,
		ReceiverID:     conversation.OtherParticipant(senderID),
		Content:        content,
		Read:           false,
		CreatedAt:      now.Format(models.SortKeyTimeFormat),
	}

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.updateLastMessage(ctx, conversationID, content, message.CreatedAt)

	return &message, nil
}

// updateLastMessage caches a truncated preview on the conversation record.
// The cut is per character, never inside a multi-byte rune.
func (s *ChatService) updateLastMessage(ctx context.Context, conversationID, content, createdAt string) {
	preview := content
	if utf8.RuneCountInString(preview) > models.LastMessagePreviewLength {
		preview = string([]rune(preview)[:models.LastMessagePreviewLength])
	}

	key := map[string]types.AttributeValue{
		"conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}
	updateExpression := "SET lastMessage = :preview, lastMessageAt = :at"
	expressionValues := map[string]types.AttributeValue{
		":preview": &types.AttributeValueMemberS{Value: preview},
		":at":      &types.AttributeValueMemberS{Value: createdAt},
	}

	if _, err := s.Dynamo.UpdateItem(ctx, models.ConversationsTable, updateExpression, key, expressionValues, nil); err != nil {
		log.Printf("⚠️ Failed to update last message for %s: %v", conversationID, err)
	}
}

// ListMessages returns a page of messages in ascending createdAt order.
// A non-empty before cursor pages backward: the newest messages older than it.
func (s *ChatService) ListMessages(ctx context.Context, conversationID, userID, before string, limit int) ([]models.Message, error) {
	conversation, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, ErrUnauthorized
	}

	if limit <= 0 {
		limit = 50
	}

	keyCondition := "conversationId = :conversationId"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}
	if before != "" {
		cursor, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return nil, fmt.Errorf("invalid before cursor: %w", err)
		}
		keyCondition += " AND sortKey < :before"
		expressionValues[":before"] = &types.AttributeValueMemberS{Value: cursor.UTC().Format(models.SortKeyTimeFormat)}
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// Query returned newest-first for the page window; callers get ascending order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead flips read=true on every unread message addressed to reader in the
// conversation. Idempotent: a second call finds nothing to update.
func (s *ChatService) MarkRead(ctx context.Context, conversationID, reader string) (int, error) {
	conversation, err := s.GetConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if !conversation.HasParticipant(reader) {
		return 0, ErrUnauthorized
	}

	unread, err := s.unreadMessages(ctx, conversationID, reader)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, message := range unread {
		key := map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
			"sortKey":        &types.AttributeValueMemberS{Value: message.SortKey},
		}
		updateExpression := "SET #read = :true"
		expressionValues := map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		}
		expressionNames := map[string]string{"#read": "read"}

		if _, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, expressionValues, expressionNames); err != nil {
			log.Printf("⚠️ Failed to mark message %s as read: %v", message.MessageID, err)
			continue
		}
		updated++
	}

	return updated, nil
}

// UnreadCount counts messages addressed to userID that are still unread.
func (s *ChatService) UnreadCount(ctx context.Context, conversationID, userID string) (int, error) {
	unread, err := s.unreadMessages(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func (s *ChatService) unreadMessages(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	keyCondition := "conversationId = :conversationId"
	filterExpression := "receiverId = :receiver AND #read = :false"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
		":receiver":       &types.AttributeValueMemberS{Value: userID},
		":false":          &types.AttributeValueMemberBOOL{Value: false},
	}
	expressionNames := map[string]string{"#read": "read"}

	items, err := s.Dynamo.QueryItemsWithFilters(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, filterExpression)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// ListConversations returns all of a user's conversations, newest activity
// first, each with participant profiles and the user's unread count.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	conversations, err := s.conversationsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conversation := range conversations {
		unread, err := s.UnreadCount(ctx, conversation.ConversationID, userID)
		if err != nil {
			return nil, err
		}

		participants, err := s.Profiles.GetProfiles(ctx, conversation.Participants())
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, ConversationSummary{
			ConversationID: conversation.ConversationID,
			Participants:   participants,
			LastMessage:    conversation.LastMessage,
			LastMessageAt:  conversation.LastMessageAt,
			UnreadCount:    unread,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt > summaries[j].LastMessageAt
	})
	return summaries, nil
}

// MatchedUserIDs returns the peers of every conversation the user is in.
func (s *ChatService) MatchedUserIDs(ctx context.Context, userID string) ([]string, error) {
	conversations, err := s.conversationsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	peers := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		peers = append(peers, conversation.OtherParticipant(userID))
	}
	return peers, nil
}

// AreMatched reports whether a conversation exists for the pair.
func (s *ChatService) AreMatched(ctx context.Context, userA, userB string) (bool, error) {
	_, err := s.GetConversation(ctx, models.ConversationIDFor(userA, userB))
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ChatService) conversationsFor(ctx context.Context, userID string) ([]models.Conversation, error) {
	expressionValues := map[string]types.AttributeValue{
		":user": &types.AttributeValueMemberS{Value: userID},
	}

	itemsA, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConversationsTable, models.ParticipantAIndex,
		"participantA = :user", expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}
	itemsB, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConversationsTable, models.ParticipantBIndex,
		"participantB = :user", expressionValues, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversations: %w", err)
	}

	var conversations []models.Conversation
	if err := attributevalue.UnmarshalListOfMaps(append(itemsA, itemsB...), &conversations); err != nil {
		return nil, fmt.Errorf("failed to parse conversations: %w", err)
	}
	return conversations, nil
}
