package models

import (
	"sort"
	"strings"
)

// Conversation is the single durable channel for one matched pair. ParticipantA
// always sorts before ParticipantB so the record mirrors the deterministic key.
type Conversation struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // Partition Key
	ParticipantA   string `dynamodbav:"participantA" json:"participantA"`
	ParticipantB   string `dynamodbav:"participantB" json:"participantB"`
	LastMessage    string `dynamodbav:"lastMessage" json:"lastMessage"`
	LastMessageAt  string `dynamodbav:"lastMessageAt" json:"lastMessageAt"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

// ConversationsTable is the DynamoDB table name for conversations
const ConversationsTable = "Conversations"

// GSIs used to list a user's conversations from either participant slot
const (
	ParticipantAIndex = "participantA-index"
	ParticipantBIndex = "participantB-index"
)

// ConversationIDFor derives the deterministic conversation key for an
// unordered pair of users (sort-then-join), making creation idempotent.
func ConversationIDFor(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// Participants returns the pair in sorted order.
func (c Conversation) Participants() []string {
	return []string{c.ParticipantA, c.ParticipantB}
}

// HasParticipant reports whether userID is one of the two participants.
func (c Conversation) HasParticipant(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the peer of userID, or "" if userID is not a participant.
func (c Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	}
	return ""
}
