package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationIDFor(t *testing.T) {
	assert.Equal(t, "alice_bob", ConversationIDFor("alice", "bob"))
	assert.Equal(t, "alice_bob", ConversationIDFor("bob", "alice"), "key is order independent")
	assert.NotEqual(t, ConversationIDFor("alice", "bob"), ConversationIDFor("alice", "carol"))
}

func TestConversationParticipants(t *testing.T) {
	conversation := Conversation{
		ConversationID: "alice_bob",
		ParticipantA:   "alice",
		ParticipantB:   "bob",
	}

	assert.True(t, conversation.HasParticipant("alice"))
	assert.True(t, conversation.HasParticipant("bob"))
	assert.False(t, conversation.HasParticipant("mallory"))

	assert.Equal(t, "bob", conversation.OtherParticipant("alice"))
	assert.Equal(t, "alice", conversation.OtherParticipant("bob"))
	assert.Empty(t, conversation.OtherParticipant("mallory"))
}
