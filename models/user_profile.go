package models

// UserProfile mirrors the profile record owned by the external profile
// service. This server only reads it, for summaries and completeness gating.
type UserProfile struct {
	UserID          string   `dynamodbav:"userId" json:"userId"` // Partition Key
	FullName        string   `dynamodbav:"fullName" json:"fullName"`
	Email           string   `dynamodbav:"email" json:"email"`
	Bio             string   `dynamodbav:"bio" json:"bio"`
	Skills          []string `dynamodbav:"skills" json:"skills"`
	Interests       []string `dynamodbav:"interests" json:"interests"`
	Availability    string   `dynamodbav:"availability" json:"availability"` // High, Medium, Low
	ProfileComplete bool     `dynamodbav:"profileComplete" json:"profileComplete"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// Compatibility is the candidate-scoring result attached to user summaries.
type Compatibility struct {
	Score       int    `json:"compatibility"` // 0..100
	Explanation string `json:"explanation"`
}

// UserSummary is a profile enriched with a compatibility score, as returned
// by the candidate and request listings.
type UserSummary struct {
	UserProfile
	Compatibility int `json:"compatibility"`
}
