package hub

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

// sendDirectMessage persists (when the command does not already carry a
// store-assigned id) and fans a direct message out. The audience is the
// direct room plus both participants' personal rooms: the personal
// rooms guarantee reachability for a receiver who never opened the chat
// and echo the message to the sender's other devices. Deliveries are
// deduplicated by connection; the payload carries the durable id so any
// transport-level redelivery is a client-side no-op.
func (h *Hub) sendDirectMessage(ctx context.Context, c *Client, p event.SendMessagePayload) *HubError {
	senderID := c.UserID()

	messageID := p.MessageID
	if messageID == 0 {
		saved, err := h.store.SaveDirectMessage(ctx, senderID, p.ReceiverID, p.Message)
		if err != nil {
			return persistenceError("failed to send message", err)
		}
		messageID = saved.MessageID
	}

	payload := event.ReceiveMessagePayload{
		ID:         messageID,
		SenderID:   senderID,
		SenderName: c.UserName(),
		ReceiverID: p.ReceiverID,
		Message:    p.Message,
		Timestamp:  orNow(p.Timestamp),
		Read:       false,
	}
	ev, err := event.Outbound(event.EventReceiveMessage, payload)
	if err != nil {
		return persistenceError("failed to encode message", err)
	}

	audience := h.membersOf(room.Direct(senderID, p.ReceiverID))
	audience = append(audience, h.membersOf(room.Personal(p.ReceiverID))...)
	audience = append(audience, h.membersOf(room.Personal(senderID))...)
	h.deliver(audience, ev)

	// A missing notification is non-fatal: the message is already
	// persisted and delivered, so log and continue.
	text := fmt.Sprintf("New message from %s", c.Email())
	if _, err := h.store.CreateNotification(ctx, p.ReceiverID, senderID, model.NotificationMessage, text); err != nil {
		h.logger.Warn("notification create failed",
			zap.Int64("receiver", p.ReceiverID),
			zap.Int64("message", messageID),
			zap.Error(err),
		)
	} else {
		h.EmitToUser(p.ReceiverID, event.EventNewNotification, event.NewNotificationPayload{
			Type:       model.NotificationMessage,
			Message:    text,
			SenderID:   senderID,
			SenderName: c.UserName(),
			MessageID:  messageID,
		})
	}

	h.logger.Debug("direct message fanned out",
		zap.Int64("sender", senderID),
		zap.Int64("receiver", p.ReceiverID),
		zap.Int64("message", messageID),
	)
	return nil
}

// sendGroupMessage verifies the sender is a participant, persists when
// needed, and broadcasts to the group room. Every joined connection
// receives it, including the sender's other devices, which clients
// treat as "own message, mark read".
func (h *Hub) sendGroupMessage(ctx context.Context, c *Client, p event.SendGroupMessagePayload) *HubError {
	senderID := c.UserID()

	ok, err := h.store.IsGroupParticipant(ctx, p.GroupID, senderID)
	if err != nil {
		return persistenceError("failed to verify group membership", err)
	}
	if !ok {
		return authorizationError("not a participant of this group")
	}

	messageID := p.MessageID
	if messageID == 0 {
		messageID, err = h.store.SaveGroupMessage(ctx, p.GroupID, senderID, p.Message)
		if err != nil {
			return persistenceError("failed to send group message", err)
		}
	}

	h.EmitToGroup(p.GroupID, event.EventReceiveGroupMessage, event.ReceiveGroupMessagePayload{
		ID:         messageID,
		GroupID:    p.GroupID,
		SenderID:   senderID,
		SenderName: c.UserName(),
		Message:    p.Message,
		Timestamp:  orNow(p.Timestamp),
	})

	h.logger.Debug("group message fanned out",
		zap.Int64("sender", senderID),
		zap.Int64("group", p.GroupID),
		zap.Int64("message", messageID),
	)
	return nil
}

// orNow falls back to the current time for clients that omit the
// timestamp.
func orNow(ts string) string {
	if ts != "" {
		return ts
	}
	return time.Now().UTC().Format(time.RFC3339)
}
