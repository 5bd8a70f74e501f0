package event

// -----------------------------------------------------------------
// Inbound command payloads
// -----------------------------------------------------------------

// AuthenticatePayload carries the bearer credential for the handshake.
type AuthenticatePayload struct {
	Token string `json:"token" validate:"required"`
}

// JoinChatPayload opens the direct room shared with another user.
type JoinChatPayload struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// JoinGroupChatPayload opens a group room the user participates in.
type JoinGroupChatPayload struct {
	GroupID int64 `json:"groupId" validate:"required,gt=0"`
}

// StatusChangePayload is the client-driven presence toggle (tab
// visibility change or an explicit switch).
type StatusChangePayload struct {
	Status string `json:"status" validate:"required,oneof=online offline"`
}

// SendMessagePayload relays a direct message. MessageID is the durable
// id the store assigned when the message was saved through the HTTP
// API; when zero the hub persists the message itself before fanout.
type SendMessagePayload struct {
	ReceiverID int64  `json:"receiverId" validate:"required,gt=0"`
	Message    string `json:"message" validate:"required,max=4000"`
	Timestamp  string `json:"timestamp"`
	MessageID  int64  `json:"messageId"`
}

// SendGroupMessagePayload is the group analogue of SendMessagePayload.
type SendGroupMessagePayload struct {
	GroupID   int64  `json:"groupId" validate:"required,gt=0"`
	Message   string `json:"message" validate:"required,max=4000"`
	Timestamp string `json:"timestamp"`
	MessageID int64  `json:"messageId"`
}

// TypingPayload targets either the other participant of a direct chat
// or a group room; exactly one of the two ids is set.
type TypingPayload struct {
	ReceiverID int64 `json:"receiverId" validate:"required_without=GroupID,excluded_with=GroupID"`
	GroupID    int64 `json:"groupId"`
}

// -----------------------------------------------------------------
// Outbound event payloads (field names are the wire contract)
// -----------------------------------------------------------------

type ReceiveMessagePayload struct {
	ID         int64  `json:"id"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	ReceiverID int64  `json:"receiverId"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Read       bool   `json:"read"`
}

type ReceiveGroupMessagePayload struct {
	ID         int64  `json:"id"`
	GroupID    int64  `json:"groupId"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

type FriendStatusChangePayload struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// UserTypingPayload relays typing state. ChatID is the other user's id
// for direct chats and the group id for group chats.
type UserTypingPayload struct {
	UserID   int64  `json:"userId"`
	UserName string `json:"userName"`
	IsTyping bool   `json:"isTyping"`
	ChatID   int64  `json:"chatId"`
}

type NewNotificationPayload struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
	MessageID  int64  `json:"messageId"`
}

// FriendRequestAcceptedPayload is emitted individually to each side of
// a new friendship with the fields swapped appropriately.
type FriendRequestAcceptedPayload struct {
	FriendID    int64  `json:"friendId"`
	RoomName    string `json:"roomName"`
	FriendName  string `json:"friendName"`
	FriendEmail string `json:"friendEmail"`
}

type GroupAddedPayload struct {
	GroupID   int64  `json:"groupId"`
	GroupName string `json:"groupName,omitempty"`
	AddedBy   int64  `json:"addedBy"`
}

type ParticipantLeftPayload struct {
	GroupID int64 `json:"groupId"`
	UserID  int64 `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
