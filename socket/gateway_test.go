package socket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"teamup_server/models"
	"teamup_server/services"
	"teamup_server/testutil"
	"teamup_server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// broadcastRecorder captures fan-out calls instead of emitting them.
type broadcastRecorder struct {
	mu    sync.Mutex
	calls []broadcastCall
}

type broadcastCall struct {
	Room  string
	Event string
	Args  []interface{}
}

func (r *broadcastRecorder) BroadcastToRoom(namespace, room, event string, args ...interface{}) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, broadcastCall{Room: room, Event: event, Args: args})
	return true
}

func (r *broadcastRecorder) byEvent(event string) []broadcastCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []broadcastCall
	for _, call := range r.calls {
		if call.Event == event {
			out = append(out, call)
		}
	}
	return out
}

func (r *broadcastRecorder) rooms(event string) []string {
	var rooms []string
	for _, call := range r.byEvent(event) {
		rooms = append(rooms, call.Room)
	}
	return rooms
}

type gatewayEnv struct {
	gateway  *Gateway
	recorder *broadcastRecorder
	fake     *testutil.FakeDynamo
	dynamo   *services.DynamoService
	chat     *services.ChatService
	teams    *services.TeamService
}

func newGatewayEnv() *gatewayEnv {
	fake := testutil.NewFakeDynamo()
	dynamo := &services.DynamoService{Client: fake}
	profiles := &services.UserProfileService{Dynamo: dynamo}
	chat := &services.ChatService{Dynamo: dynamo, Profiles: profiles}
	teams := &services.TeamService{Dynamo: dynamo, Chat: chat, Profiles: profiles}
	recorder := &broadcastRecorder{}

	return &gatewayEnv{
		gateway: &Gateway{
			Presence:  services.NewPresenceService(),
			Chat:      chat,
			Teams:     teams,
			TeamChat:  &services.TeamChatService{Dynamo: dynamo, Teams: teams},
			Broadcast: recorder,
			JWTSecret: "gateway-test-secret",
		},
		recorder: recorder,
		fake:     fake,
		dynamo:   dynamo,
		chat:     chat,
		teams:    teams,
	}
}

func (e *gatewayEnv) seedProfile(t *testing.T, userID string) {
	t.Helper()
	err := e.dynamo.PutItem(context.Background(), models.UserProfilesTable, models.UserProfile{
		UserID:          userID,
		Skills:          []string{"go"},
		Availability:    "High",
		ProfileComplete: true,
	})
	require.NoError(t, err)
}

func (e *gatewayEnv) seedMatch(t *testing.T, userA, userB string) string {
	t.Helper()
	conversation, _, err := e.chat.EnsureConversation(context.Background(), userA, userB)
	require.NoError(t, err)
	return conversation.ConversationID
}

func TestNewSocketServerInstallsBroadcaster(t *testing.T) {
	env := newGatewayEnv()
	env.gateway.Broadcast = nil

	server := NewSocketServer(env.gateway)
	defer server.Close()

	require.NotNil(t, env.gateway.Broadcast)
	assert.Same(t, server, env.gateway.Broadcast)
}

func TestGatewayAuthenticate(t *testing.T) {
	env := newGatewayEnv()

	token, err := utils.IssueToken("gateway-test-secret", "alice", time.Hour)
	require.NoError(t, err)

	userID, err := env.gateway.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	_, err = env.gateway.Authenticate("garbage")
	assert.Error(t, err)
}

func TestGatewayPresenceBroadcastsAreCoalesced(t *testing.T) {
	env := newGatewayEnv()

	env.gateway.Connected("alice")
	env.gateway.Connected("alice") // second tab
	assert.Len(t, env.recorder.byEvent(EventUserOnline), 1)

	env.gateway.Disconnected("alice")
	assert.Empty(t, env.recorder.byEvent(EventUserOffline), "one tab still open")

	env.gateway.Disconnected("alice")
	offline := env.recorder.byEvent(EventUserOffline)
	require.Len(t, offline, 1)
	assert.Equal(t, PresenceRoom, offline[0].Room)
	assert.Equal(t, []interface{}{"alice"}, offline[0].Args)
}

func TestGatewayJoinConversation(t *testing.T) {
	env := newGatewayEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	room, err := env.gateway.JoinConversation(ctx, "alice", JoinConversationPayload{ConversationID: conversationID})
	require.NoError(t, err)
	assert.Equal(t, conversationID, room)

	_, err = env.gateway.JoinConversation(ctx, "mallory", JoinConversationPayload{ConversationID: conversationID})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = env.gateway.JoinConversation(ctx, "alice", JoinConversationPayload{ConversationID: "malformed"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestGatewaySendMessageFansOutToBothUsers(t *testing.T) {
	env := newGatewayEnv()
	env.seedMatch(t, "alice", "bob")

	message, err := env.gateway.SendMessage(context.Background(), "alice", SendMessagePayload{
		ReceiverID: "bob",
		Content:    "hey",
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", message.ReceiverID)

	// Sender's room included so their other devices see the message too.
	assert.ElementsMatch(t, []string{UserRoom("alice"), UserRoom("bob")}, env.recorder.rooms(EventNewMessage))
}

func TestGatewaySendMessageWithoutMatch(t *testing.T) {
	env := newGatewayEnv()

	_, err := env.gateway.SendMessage(context.Background(), "alice", SendMessagePayload{ReceiverID: "bob", Content: "hey"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = env.gateway.SendMessage(context.Background(), "alice", SendMessagePayload{Content: "hey"})
	assert.ErrorIs(t, err, services.ErrNotMatched)

	assert.Empty(t, env.recorder.calls)
}

func TestGatewaySendMessageFailedWriteDoesNotFanOut(t *testing.T) {
	env := newGatewayEnv()
	env.seedMatch(t, "alice", "bob")
	env.fake.FailPuts = errors.New("dynamo unavailable")

	_, err := env.gateway.SendMessage(context.Background(), "alice", SendMessagePayload{ReceiverID: "bob", Content: "hey"})
	require.Error(t, err)
	assert.Empty(t, env.recorder.byEvent(EventNewMessage))
}

func TestGatewayTypingReachesReceiverOnly(t *testing.T) {
	env := newGatewayEnv()

	env.gateway.Typing("alice", TypingPayload{ConversationID: "alice_bob", ReceiverID: "bob"})

	typing := env.recorder.byEvent(EventUserTyping)
	require.Len(t, typing, 1)
	assert.Equal(t, UserRoom("bob"), typing[0].Room)
	require.Len(t, typing[0].Args, 1)
	payload, ok := typing[0].Args[0].(UserTypingPayload)
	require.True(t, ok)
	assert.Equal(t, "alice", payload.UserID)

	// Incomplete payloads are dropped silently.
	env.gateway.Typing("alice", TypingPayload{ConversationID: "alice_bob"})
	assert.Len(t, env.recorder.byEvent(EventUserTyping), 1)
}

func TestGatewayMarkReadNotifiesBothParticipants(t *testing.T) {
	env := newGatewayEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	_, err := env.chat.AppendMessage(ctx, conversationID, "alice", "hello")
	require.NoError(t, err)
	env.recorder.calls = nil

	require.NoError(t, env.gateway.MarkRead(ctx, "bob", MarkReadPayload{ConversationID: conversationID}))

	read := env.recorder.byEvent(EventMessagesRead)
	require.Len(t, read, 2)
	assert.ElementsMatch(t, []string{UserRoom("alice"), UserRoom("bob")}, env.recorder.rooms(EventMessagesRead))
	payload, ok := read[0].Args[0].(MessagesReadPayload)
	require.True(t, ok)
	assert.Equal(t, "bob", payload.ReaderID)

	err = env.gateway.MarkRead(ctx, "mallory", MarkReadPayload{ConversationID: conversationID})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestGatewayTeamRoomsAndMessages(t *testing.T) {
	env := newGatewayEnv()
	ctx := context.Background()
	env.seedProfile(t, "alice")

	team, err := env.teams.CreateTeam(ctx, "alice", "Rocket", 4, models.InvitePolicyOpen)
	require.NoError(t, err)

	room, err := env.gateway.JoinTeam(ctx, "alice", JoinTeamPayload{TeamID: team.TeamID})
	require.NoError(t, err)
	assert.Equal(t, TeamRoom(team.TeamID), room)

	_, err = env.gateway.JoinTeam(ctx, "mallory", JoinTeamPayload{TeamID: team.TeamID})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	message, err := env.gateway.TeamMessage(ctx, "alice", TeamMessagePayload{TeamID: team.TeamID, Content: "kickoff at noon"})
	require.NoError(t, err)
	assert.Equal(t, "alice", message.SenderID)

	broadcasts := env.recorder.byEvent(EventTeamMessage)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, TeamRoom(team.TeamID), broadcasts[0].Room)

	_, err = env.gateway.TeamMessage(ctx, "mallory", TeamMessagePayload{TeamID: team.TeamID, Content: "let me in"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Len(t, env.recorder.byEvent(EventTeamMessage), 1)
}
