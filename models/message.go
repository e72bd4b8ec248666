package models

import (
	"fmt"
	"time"
)

// Message is one chat message inside a conversation. Immutable once stored
// except for the Read flag.
type Message struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // Partition Key
	SortKey        string `dynamodbav:"sortKey" json:"-"`                     // Sort Key: timestamp#messageId
	MessageID      string `dynamodbav:"messageId" json:"messageId"`
	SenderID       string `dynamodbav:"senderId" json:"senderId"`
	ReceiverID     string `dynamodbav:"receiverId" json:"receiverId"`
	Content        string `dynamodbav:"content" json:"content"`
	Read           bool   `dynamodbav:"read" json:"read"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
}

// MessagesTable is the DynamoDB table name for conversation messages
const MessagesTable = "Messages"

// MessageSortKey builds the range key for a message: a fixed-width timestamp
// for chronological ordering, with the message ID as a stable tie-break.
func MessageSortKey(createdAt time.Time, messageID string) string {
	return fmt.Sprintf("%s#%s", createdAt.UTC().Format(SortKeyTimeFormat), messageID)
}
