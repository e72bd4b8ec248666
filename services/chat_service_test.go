package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"teamup_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureConversationIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	conversation, created, err := env.chat.EnsureConversation(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice_bob", conversation.ConversationID)
	assert.Equal(t, "alice", conversation.ParticipantA)
	assert.Equal(t, "bob", conversation.ParticipantB)

	// Same pair in either order resolves to the one existing record.
	again, created, err := env.chat.EnsureConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, conversation.ConversationID, again.ConversationID)
}

func TestEnsureConversationConcurrentCreatesOne(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Race creation from both argument orders; the conditional put on the
	// deterministic key lets exactly one writer win.
	var wg sync.WaitGroup
	var createdCount int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		userA, userB := "alice", "bob"
		if i%2 == 1 {
			userA, userB = userB, userA
		}
		go func(a, b string) {
			defer wg.Done()
			_, created, err := env.chat.EnsureConversation(ctx, a, b)
			assert.NoError(t, err)
			if created {
				atomic.AddInt32(&createdCount, 1)
			}
		}(userA, userB)
	}
	wg.Wait()

	assert.Equal(t, int32(1), createdCount)

	env.seedProfile(t, "alice")
	env.seedProfile(t, "bob")
	summaries, err := env.chat.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestAppendMessageValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	_, err := env.chat.AppendMessage(ctx, conversationID, "alice", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = env.chat.AppendMessage(ctx, conversationID, "alice", strings.Repeat("x", models.MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrContentTooLarge)

	_, err = env.chat.AppendMessage(ctx, conversationID, "mallory", "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = env.chat.AppendMessage(ctx, "nobody_nothing", "alice", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	// None of the rejected sends left a message behind.
	messages, err := env.chat.ListMessages(ctx, conversationID, "alice", "", 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestAppendMessageUpdatesPreview(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	long := strings.Repeat("a", models.LastMessagePreviewLength+40)
	message, err := env.chat.AppendMessage(ctx, conversationID, "alice", long)
	require.NoError(t, err)
	assert.Equal(t, "bob", message.ReceiverID)

	conversation, err := env.chat.GetConversation(ctx, conversationID)
	require.NoError(t, err)
	assert.Equal(t, long[:models.LastMessagePreviewLength], conversation.LastMessage)
	assert.Equal(t, message.CreatedAt, conversation.LastMessageAt)

	// Truncation counts characters, so a multi-byte boundary stays intact.
	emoji := strings.Repeat("🎉", models.LastMessagePreviewLength+20)
	_, err = env.chat.AppendMessage(ctx, conversationID, "bob", emoji)
	require.NoError(t, err)

	conversation, err = env.chat.GetConversation(ctx, conversationID)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(conversation.LastMessage))
	assert.Equal(t, models.LastMessagePreviewLength, utf8.RuneCountInString(conversation.LastMessage))
}

func TestListMessagesAscendingWithCursor(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	for _, content := range []string{"first", "second", "third"} {
		_, err := env.chat.AppendMessage(ctx, conversationID, "alice", content)
		require.NoError(t, err)
	}

	messages, err := env.chat.ListMessages(ctx, conversationID, "bob", "", 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Content)
	assert.Equal(t, "third", messages[2].Content)

	// A cursor in the future pages over everything, one in the past nothing.
	future := time.Now().UTC().Add(time.Minute).Format(time.RFC3339)
	messages, err = env.chat.ListMessages(ctx, conversationID, "bob", future, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	past := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	messages, err = env.chat.ListMessages(ctx, conversationID, "bob", past, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	_, err = env.chat.ListMessages(ctx, conversationID, "bob", "not-a-timestamp", 0)
	assert.Error(t, err)

	_, err = env.chat.ListMessages(ctx, conversationID, "mallory", "", 0)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListMessagesLimitKeepsNewest(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	for _, content := range []string{"one", "two", "three"} {
		_, err := env.chat.AppendMessage(ctx, conversationID, "alice", content)
		require.NoError(t, err)
	}

	// The page window anchors on the newest messages, returned ascending.
	messages, err := env.chat.ListMessages(ctx, conversationID, "alice", "", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "two", messages[0].Content)
	assert.Equal(t, "three", messages[1].Content)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conversationID := env.seedMatch(t, "alice", "bob")

	for i := 0; i < 2; i++ {
		_, err := env.chat.AppendMessage(ctx, conversationID, "alice", "hello")
		require.NoError(t, err)
	}

	unread, err := env.chat.UnreadCount(ctx, conversationID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	// The sender has nothing unread; read state is per recipient.
	unread, err = env.chat.UnreadCount(ctx, conversationID, "alice")
	require.NoError(t, err)
	assert.Zero(t, unread)

	updated, err := env.chat.MarkRead(ctx, conversationID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	updated, err = env.chat.MarkRead(ctx, conversationID, "bob")
	require.NoError(t, err)
	assert.Zero(t, updated)

	unread, err = env.chat.UnreadCount(ctx, conversationID, "bob")
	require.NoError(t, err)
	assert.Zero(t, unread)

	_, err = env.chat.MarkRead(ctx, conversationID, "mallory")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestListConversations(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedProfile(t, "alice")
	env.seedProfile(t, "bob")
	env.seedProfile(t, "carol")

	withBob := env.seedMatch(t, "alice", "bob")
	withCarol := env.seedMatch(t, "alice", "carol")

	_, err := env.chat.AppendMessage(ctx, withBob, "bob", "hey alice")
	require.NoError(t, err)
	_, err = env.chat.AppendMessage(ctx, withCarol, "carol", "ping")
	require.NoError(t, err)

	summaries, err := env.chat.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Newest activity first.
	assert.Equal(t, withCarol, summaries[0].ConversationID)
	assert.Equal(t, "ping", summaries[0].LastMessage)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Len(t, summaries[0].Participants, 2)
	assert.Equal(t, withBob, summaries[1].ConversationID)
}

func TestAreMatched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	matched, err := env.chat.AreMatched(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, matched)

	env.seedMatch(t, "alice", "bob")

	matched, err = env.chat.AreMatched(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, matched)

	peers, err := env.chat.MatchedUserIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, peers)
}
