package services

import (
	"context"
	"testing"

	"teamup_server/models"
	"teamup_server/testutil"

	"github.com/stretchr/testify/require"
)

// testEnv wires every service against the in-memory DynamoDB fake.
type testEnv struct {
	fake     *testutil.FakeDynamo
	dynamo   *DynamoService
	profiles *UserProfileService
	chat     *ChatService
	swipes   *InteractionService
	teams    *TeamService
	teamChat *TeamChatService
}

func newTestEnv() *testEnv {
	fake := testutil.NewFakeDynamo()
	dynamo := &DynamoService{Client: fake}
	profiles := &UserProfileService{Dynamo: dynamo}
	chat := &ChatService{Dynamo: dynamo, Profiles: profiles}
	teams := &TeamService{Dynamo: dynamo, Chat: chat, Profiles: profiles}
	return &testEnv{
		fake:     fake,
		dynamo:   dynamo,
		profiles: profiles,
		chat:     chat,
		swipes:   &InteractionService{Dynamo: dynamo, Chat: chat, Profiles: profiles},
		teams:    teams,
		teamChat: &TeamChatService{Dynamo: dynamo, Teams: teams},
	}
}

func (e *testEnv) seedProfile(t *testing.T, userID string) {
	t.Helper()
	e.seedProfileWith(t, models.UserProfile{
		UserID:          userID,
		FullName:        "User " + userID,
		Skills:          []string{"go", "react"},
		Interests:       []string{"music"},
		Availability:    "High",
		ProfileComplete: true,
	})
}

func (e *testEnv) seedProfileWith(t *testing.T, profile models.UserProfile) {
	t.Helper()
	err := e.dynamo.PutItem(context.Background(), models.UserProfilesTable, profile)
	require.NoError(t, err)
}

// seedMatch creates the conversation that represents a match between two users.
func (e *testEnv) seedMatch(t *testing.T, userA, userB string) string {
	t.Helper()
	conversation, _, err := e.chat.EnsureConversation(context.Background(), userA, userB)
	require.NoError(t, err)
	return conversation.ConversationID
}
