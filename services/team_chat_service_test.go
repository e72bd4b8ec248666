package services

import (
	"context"
	"strings"
	"testing"

	"teamup_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamMessagesMemberOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedProfile(t, "alice")
	env.seedProfile(t, "mallory")

	team, err := env.teams.CreateTeam(ctx, "alice", "Rocket", 4, models.InvitePolicyOpen)
	require.NoError(t, err)

	_, err = env.teamChat.SendTeamMessage(ctx, team.TeamID, "mallory", "hi all")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.teamChat.ListTeamMessages(ctx, team.TeamID, "mallory")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.teamChat.SendTeamMessage(ctx, "no-such-team", "alice", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamMessagesValidationAndOrder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedProfile(t, "alice")

	team, err := env.teams.CreateTeam(ctx, "alice", "Rocket", 4, models.InvitePolicyOpen)
	require.NoError(t, err)

	_, err = env.teamChat.SendTeamMessage(ctx, team.TeamID, "alice", "  ")
	assert.ErrorIs(t, err, ErrEmptyContent)
	_, err = env.teamChat.SendTeamMessage(ctx, team.TeamID, "alice", strings.Repeat("x", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrContentTooLarge)

	for _, content := range []string{"standup at 10", "moved to 11"} {
		_, err = env.teamChat.SendTeamMessage(ctx, team.TeamID, "alice", content)
		require.NoError(t, err)
	}

	messages, err := env.teamChat.ListTeamMessages(ctx, team.TeamID, "alice")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "standup at 10", messages[0].Content)
	assert.Equal(t, "moved to 11", messages[1].Content)
	assert.Equal(t, "alice", messages[0].SenderID)
	assert.NotEmpty(t, messages[0].MessageID)
}
