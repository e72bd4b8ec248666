package socket

import (
	"context"
	"log"
	"strings"

	"teamup_server/models"
	"teamup_server/services"
	"teamup_server/utils"
)

// RoomBroadcaster is the fan-out surface the gateway needs from the
// socket.io server. Tests substitute a recorder.
type RoomBroadcaster interface {
	BroadcastToRoom(namespace, room, event string, args ...interface{}) bool
}

const namespace = "/"

// Gateway holds the realtime state and the domain services the event
// handlers call into. Every method validates before it persists, and never
// fans out an event whose write failed.
type Gateway struct {
	Presence  *services.PresenceService
	Chat      *services.ChatService
	Teams     *services.TeamService
	TeamChat  *services.TeamChatService
	Broadcast RoomBroadcaster
	JWTSecret string
}

// Authenticate validates the handshake token and returns the connecting user.
func (g *Gateway) Authenticate(token string) (string, error) {
	return utils.VerifyToken(g.JWTSecret, token)
}

// Connected registers a connection; the user_online broadcast is coalesced to
// the user's first open connection.
func (g *Gateway) Connected(userID string) {
	if g.Presence.Add(userID) {
		g.Broadcast.BroadcastToRoom(namespace, PresenceRoom, EventUserOnline, userID)
	}
	log.Printf("✅ User %s connected", userID)
}

// Disconnected unregisters a connection; user_offline fires only when the
// user's last connection closes.
func (g *Gateway) Disconnected(userID string) {
	if g.Presence.Remove(userID) {
		g.Broadcast.BroadcastToRoom(namespace, PresenceRoom, EventUserOffline, userID)
	}
	log.Printf("❌ User %s disconnected", userID)
}

// JoinConversation returns the room to join after checking the user is a
// participant of the conversation.
func (g *Gateway) JoinConversation(ctx context.Context, userID string, payload JoinConversationPayload) (string, error) {
	if payload.ConversationID == "" || !strings.Contains(payload.ConversationID, "_") {
		return "", services.ErrNotFound
	}

	conversation, err := g.Chat.GetConversation(ctx, payload.ConversationID)
	if err != nil {
		return "", err
	}
	if !conversation.HasParticipant(userID) {
		return "", services.ErrUnauthorized
	}
	return conversation.ConversationID, nil
}

// SendMessage persists a message to a matched peer and fans it out to both
// participants' user rooms, the sender's included so all of their devices
// stay in sync. No conversation for the pair means no match.
func (g *Gateway) SendMessage(ctx context.Context, userID string, payload SendMessagePayload) (*models.Message, error) {
	if payload.ReceiverID == "" {
		return nil, services.ErrNotMatched
	}

	conversationID := models.ConversationIDFor(userID, payload.ReceiverID)
	message, err := g.Chat.AppendMessage(ctx, conversationID, userID, payload.Content)
	if err != nil {
		return nil, err
	}

	g.Broadcast.BroadcastToRoom(namespace, UserRoom(userID), EventNewMessage, message)
	g.Broadcast.BroadcastToRoom(namespace, UserRoom(payload.ReceiverID), EventNewMessage, message)
	return message, nil
}

// Typing forwards a transient typing notification to the other participant.
// Nothing is persisted and nothing comes back to the sender.
func (g *Gateway) Typing(userID string, payload TypingPayload) {
	if payload.ConversationID == "" || payload.ReceiverID == "" {
		return
	}
	g.Broadcast.BroadcastToRoom(namespace, UserRoom(payload.ReceiverID), EventUserTyping, UserTypingPayload{
		ConversationID: payload.ConversationID,
		UserID:         userID,
	})
}

// MarkRead flips the reader's unread messages and notifies both participant
// rooms so conversation lists can recompute their unread counts.
func (g *Gateway) MarkRead(ctx context.Context, userID string, payload MarkReadPayload) error {
	if payload.ConversationID == "" {
		return services.ErrNotFound
	}

	if _, err := g.Chat.MarkRead(ctx, payload.ConversationID, userID); err != nil {
		return err
	}

	conversation, err := g.Chat.GetConversation(ctx, payload.ConversationID)
	if err != nil {
		return err
	}

	notification := MessagesReadPayload{ConversationID: conversation.ConversationID, ReaderID: userID}
	for _, participant := range conversation.Participants() {
		g.Broadcast.BroadcastToRoom(namespace, UserRoom(participant), EventMessagesRead, notification)
	}
	return nil
}

// JoinTeam returns the team room to join after a membership check.
func (g *Gateway) JoinTeam(ctx context.Context, userID string, payload JoinTeamPayload) (string, error) {
	if payload.TeamID == "" {
		return "", services.ErrNotFound
	}

	team, err := g.Teams.GetTeam(ctx, payload.TeamID)
	if err != nil {
		return "", err
	}
	if !team.IsMember(userID) {
		return "", services.ErrUnauthorized
	}
	return TeamRoom(team.TeamID), nil
}

// TeamMessage persists a team chat message and broadcasts it to the team room.
func (g *Gateway) TeamMessage(ctx context.Context, userID string, payload TeamMessagePayload) (*models.TeamMessage, error) {
	message, err := g.TeamChat.SendTeamMessage(ctx, payload.TeamID, userID, payload.Content)
	if err != nil {
		return nil, err
	}

	g.Broadcast.BroadcastToRoom(namespace, TeamRoom(payload.TeamID), EventTeamMessage, message)
	return message, nil
}
