package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

// setUserStatus persists the presence transition and then broadcasts it
// to every friend's personal room. The store write comes first so a
// concurrent friends-list fetch never observes a broadcast state the
// store would contradict; on write failure nothing is broadcast.
func (h *Hub) setUserStatus(ctx context.Context, userID int64, status string) error {
	if err := h.store.UpdateUserStatus(ctx, userID, status); err != nil {
		h.logger.Error("status write failed",
			zap.Int64("user", userID),
			zap.String("status", status),
			zap.Error(err),
		)
		return err
	}

	friends, err := h.store.GetFriends(ctx, userID)
	if err != nil {
		h.logger.Warn("friends lookup failed, presence not broadcast",
			zap.Int64("user", userID), zap.Error(err))
		return nil // status is persisted; broadcast is best effort
	}

	ev, err := event.Outbound(event.EventFriendStatusChange, event.FriendStatusChangePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return nil
	}

	// Each friend is an independent target: one gone friend never
	// blocks delivery to the rest.
	for _, friend := range friends {
		h.deliver(h.membersOf(room.Personal(friend.ID)), ev)
	}

	h.logger.Debug("presence broadcast",
		zap.Int64("user", userID),
		zap.String("status", status),
		zap.Int("friends", len(friends)),
	)
	return nil
}

// relayTyping forwards a typing transition. Direct chats relay to the
// other participant's personal room with the sender's id as chatId;
// group chats relay to every other connected participant of the group
// room, the sender's own connections excluded. Nothing is persisted;
// the stop signal (or a client-side timeout) clears the indicator.
func (h *Hub) relayTyping(c *Client, p event.TypingPayload, isTyping bool) {
	payload := event.UserTypingPayload{
		UserID:   c.UserID(),
		UserName: c.UserName(),
		IsTyping: isTyping,
	}

	if p.GroupID != 0 {
		payload.ChatID = p.GroupID
		ev, err := event.Outbound(event.EventUserTyping, payload)
		if err != nil {
			return
		}
		audience := make([]*Client, 0)
		for _, member := range h.membersOf(room.Group(p.GroupID)) {
			if member.UserID() == c.UserID() {
				continue
			}
			audience = append(audience, member)
		}
		h.deliver(audience, ev)
		return
	}

	payload.ChatID = c.UserID()
	ev, err := event.Outbound(event.EventUserTyping, payload)
	if err != nil {
		return
	}
	h.deliver(h.membersOf(room.Personal(p.ReceiverID)), ev)
}
