package models

// TeamMessage is a broadcast message in a team room. Unlike conversation
// messages there is no per-recipient read state.
type TeamMessage struct {
	TeamID    string `dynamodbav:"teamId" json:"teamId"`  // Partition Key
	SortKey   string `dynamodbav:"sortKey" json:"-"`      // Sort Key: timestamp#messageId
	MessageID string `dynamodbav:"messageId" json:"messageId"`
	SenderID  string `dynamodbav:"senderId" json:"senderId"`
	Content   string `dynamodbav:"content" json:"content"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// TeamMessagesTable is the DynamoDB table name for team chat messages
const TeamMessagesTable = "TeamMessages"
