package hub

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/room"
)

// handleEvent is the single entry point for inbound commands. One bad
// command never tears down the connection; only authentication failures
// are fatal.
func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	if ev.Event == event.CommandAuthenticate {
		h.handleAuthenticate(ev, c)
		return
	}

	if !c.IsAuthenticated() {
		c.SendError("authentication required")
		return
	}

	var herr *HubError
	switch ev.Event {
	case event.CommandJoinChat:
		herr = h.handleJoinChat(ev, c)
	case event.CommandJoinGroupChat:
		herr = h.handleJoinGroupChat(ev, c)
	case event.CommandUserStatusChange:
		herr = h.handleStatusChange(ev, c)
	case event.CommandSendMessage:
		herr = h.handleSendMessage(ev, c)
	case event.CommandSendGroupMessage:
		herr = h.handleSendGroupMessage(ev, c)
	case event.CommandTypingStart:
		herr = h.handleTyping(ev, c, true)
	case event.CommandTypingStop:
		herr = h.handleTyping(ev, c, false)
	default:
		herr = validationError("unknown command", nil)
	}

	if herr != nil {
		h.logger.Warn("command failed",
			zap.String("command", ev.Event),
			zap.String("client", c.ID),
			zap.Int64("user", c.UserID()),
			zap.Error(herr),
		)
		c.SendError(herr.Message)
	}
}

// decode unmarshals and validates a command payload.
func (h *Hub) decode(data json.RawMessage, dst any) *HubError {
	if len(data) == 0 {
		return validationError("missing payload", nil)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return validationError("malformed payload", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError("invalid payload", err)
	}
	return nil
}

// handleAuthenticate runs the credential handshake. Failure emits an
// explicit error event and terminates the connection; a silent drop
// would leave the client unable to distinguish auth failure from a
// network fault.
func (h *Hub) handleAuthenticate(ev event.WsEvent, c *Client) {
	if c.IsAuthenticated() {
		c.SendError("already authenticated")
		return
	}

	var p event.AuthenticatePayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		c.SendError(herr.Message)
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	id, err := h.creds.Validate(ctx, p.Token)
	if err != nil {
		herr := authenticationError("authentication failed", err)
		h.logger.Warn("authentication failed",
			zap.String("client", c.ID), zap.Error(err))
		c.SendError(herr.Message)
		c.Close()
		return
	}

	// The connection may have been torn down while Validate was in
	// flight (auth window expiry, peer disconnect). A dead client must
	// never reach the registry.
	if c.ctx.Err() != nil || !c.bindIdentity(id.UserID, id.Email, id.DisplayName) {
		h.logger.Debug("authentication resolved after disconnect",
			zap.String("client", c.ID))
		return
	}
	h.registerAuthenticated(c)
}

func (h *Hub) handleJoinChat(ev event.WsEvent, c *Client) *HubError {
	var p event.JoinChatPayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}
	h.joinRoom(c, room.Direct(c.UserID(), p.UserID))
	return nil
}

func (h *Hub) handleJoinGroupChat(ev event.WsEvent, c *Client) *HubError {
	var p event.JoinGroupChatPayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	ok, err := h.store.IsGroupParticipant(ctx, p.GroupID, c.UserID())
	if err != nil {
		return persistenceError("failed to verify group membership", err)
	}
	if !ok {
		return authorizationError("not a participant of this group")
	}

	h.joinRoom(c, room.Group(p.GroupID))
	return nil
}

func (h *Hub) handleStatusChange(ev event.WsEvent, c *Client) *HubError {
	var p event.StatusChangePayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}

	ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
	defer cancel()

	if err := h.setUserStatus(ctx, c.UserID(), p.Status); err != nil {
		return persistenceError("failed to update status", err)
	}
	return nil
}

func (h *Hub) handleSendMessage(ev event.WsEvent, c *Client) *HubError {
	var p event.SendMessagePayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	return h.sendDirectMessage(ctx, c, p)
}

func (h *Hub) handleSendGroupMessage(ev event.WsEvent, c *Client) *HubError {
	var p event.SendGroupMessagePayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}

	ctx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
	defer cancel()

	return h.sendGroupMessage(ctx, c, p)
}

func (h *Hub) handleTyping(ev event.WsEvent, c *Client, isTyping bool) *HubError {
	var p event.TypingPayload
	if herr := h.decode(ev.Data, &p); herr != nil {
		return herr
	}
	h.relayTyping(c, p, isTyping)
	return nil
}
