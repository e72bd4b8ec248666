package socket

// Event names exchanged with clients.
const (
	EventJoinConversation = "join_conversation"
	EventSendMessage      = "send_message"
	EventTyping           = "typing"
	EventMarkRead         = "mark_read"
	EventJoinTeam         = "join_team"
	EventTeamMessage      = "team_message"

	EventNewMessage   = "new_message"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
	EventUserOnline   = "user_online"
	EventUserOffline  = "user_offline"
	EventError        = "error"
)

// PresenceRoom is joined by every authenticated connection; online/offline
// notifications are broadcast there.
const PresenceRoom = "presence"

// Inbound payloads. One struct per event kind; anything that does not decode
// into its struct is dropped with an error event back to the sender.

type JoinConversationPayload struct {
	ConversationID string `json:"conversationId"`
}

type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	ReceiverID     string `json:"receiverId"`
}

type MarkReadPayload struct {
	ConversationID string `json:"conversationId"`
}

type JoinTeamPayload struct {
	TeamID string `json:"teamId"`
}

type TeamMessagePayload struct {
	TeamID  string `json:"teamId"`
	Content string `json:"content"`
}

// Outbound payloads.

type UserTypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

type MessagesReadPayload struct {
	ConversationID string `json:"conversationId"`
	ReaderID       string `json:"readerId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// UserRoom is the per-user room every connection of that user joins, so a
// single emit reaches all of their devices.
func UserRoom(userID string) string {
	return userID
}

// TeamRoom scopes team chat fan-out.
func TeamRoom(teamID string) string {
	return "team_" + teamID
}
