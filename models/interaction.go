package models

// Interaction is a single directed swipe (like or pass) from one user toward another.
// At most one interaction exists per (actorId, targetId) direction.
type Interaction struct {
	ActorID   string `dynamodbav:"actorId" json:"actorId"`   // Partition Key
	TargetID  string `dynamodbav:"targetId" json:"targetId"` // Sort Key, also GSI partition key
	Type      string `dynamodbav:"type" json:"type"`         // like, pass
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// InteractionsTable is the DynamoDB table name for swipe interactions
const InteractionsTable = "Interactions"

// TargetIndex is the GSI used to query interactions received by a user
const TargetIndex = "targetId-index"
