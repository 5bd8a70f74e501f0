package event

import "encoding/json"

// Client -> server commands.
const (
	CommandAuthenticate     = "authenticate"
	CommandJoinChat         = "join_chat"
	CommandJoinGroupChat    = "join_group_chat"
	CommandUserStatusChange = "user_status_change"
	CommandSendMessage      = "send_message"
	CommandSendGroupMessage = "send_group_message"
	CommandTypingStart      = "typing_start"
	CommandTypingStop       = "typing_stop"
)

// Server -> client events.
const (
	EventReceiveMessage        = "receive_message"
	EventReceiveGroupMessage   = "receive_group_message"
	EventFriendStatusChange    = "friend_status_change"
	EventUserTyping            = "user_typing"
	EventNewNotification       = "new_notification"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventGroupAdded            = "group_added"
	EventParticipantLeft       = "participant_left"
	EventError                 = "error"
)

// User presence values persisted in the store and broadcast to friends.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// WsEvent is the bidirectional envelope every socket frame carries.
type WsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound wraps a payload into a server->client envelope.
func Outbound(name string, payload any) (WsEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return WsEvent{}, err
	}
	return WsEvent{Event: name, Data: data}, nil
}
