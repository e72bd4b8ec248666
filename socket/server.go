package socket

import (
	"context"
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer wires socket.io events to the Gateway and installs the
// server as the gateway's broadcaster.
func NewSocketServer(gateway *Gateway) *socketio.Server {
	server := socketio.NewServer(nil)
	gateway.Broadcast = server

	// Handle connection events: a valid token is required at handshake, and
	// every connection joins its own user room plus the presence room.
	server.OnConnect(namespace, func(c socketio.Conn) error {
		handshake := c.URL()
		token := handshake.Query().Get("token")
		userID, err := gateway.Authenticate(token)
		if err != nil {
			log.Printf("❌ Socket auth failed: %v", err)
			return err
		}

		c.SetContext(userID)
		c.Join(UserRoom(userID))
		c.Join(PresenceRoom)
		gateway.Connected(userID)
		return nil
	})

	server.OnEvent(namespace, EventJoinConversation, func(c socketio.Conn, payload JoinConversationPayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		room, err := gateway.JoinConversation(context.Background(), userID, payload)
		if err != nil {
			c.Emit(EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.Join(room)
	})

	server.OnEvent(namespace, EventSendMessage, func(c socketio.Conn, payload SendMessagePayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		if _, err := gateway.SendMessage(context.Background(), userID, payload); err != nil {
			c.Emit(EventError, ErrorPayload{Message: err.Error()})
		}
	})

	server.OnEvent(namespace, EventTyping, func(c socketio.Conn, payload TypingPayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		gateway.Typing(userID, payload)
	})

	server.OnEvent(namespace, EventMarkRead, func(c socketio.Conn, payload MarkReadPayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		if err := gateway.MarkRead(context.Background(), userID, payload); err != nil {
			c.Emit(EventError, ErrorPayload{Message: err.Error()})
		}
	})

	server.OnEvent(namespace, EventJoinTeam, func(c socketio.Conn, payload JoinTeamPayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		room, err := gateway.JoinTeam(context.Background(), userID, payload)
		if err != nil {
			c.Emit(EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.Join(room)
	})

	server.OnEvent(namespace, EventTeamMessage, func(c socketio.Conn, payload TeamMessagePayload) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		if _, err := gateway.TeamMessage(context.Background(), userID, payload); err != nil {
			c.Emit(EventError, ErrorPayload{Message: err.Error()})
		}
	})

	server.OnError(namespace, func(c socketio.Conn, err error) {
		log.Printf("⚠️ Socket error: %v", err)
	})

	// Handle disconnection
	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		userID, ok := c.Context().(string)
		if !ok {
			return
		}
		gateway.Disconnected(userID)
	})

	return server
}
