package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/hub"
	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/repo"
)

type FriendHandler interface {
	SendRequest(c *gin.Context)
	ListPending(c *gin.Context)
	AcceptRequest(c *gin.Context)
	RejectRequest(c *gin.Context)
}

type friendHandler struct {
	friends       repo.FriendRepository
	notifications repo.NotificationRepository
	hub           *hub.Hub
}

func NewFriendHandler(friends repo.FriendRepository, notifications repo.NotificationRepository, h *hub.Hub) FriendHandler {
	return &friendHandler{friends: friends, notifications: notifications, hub: h}
}

type sendRequestBody struct {
	ReceiverID int64 `json:"receiverId" binding:"required,gt=0"`
}

func (h *friendHandler) SendRequest(c *gin.Context) {
	id := identityFrom(c)

	var body sendRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.friends.CreateRequest(c.Request.Context(), id.UserID, body.ReceiverID)
	switch {
	case errors.Is(err, repo.ErrSelfFriendship):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot friend yourself"})
		return
	case errors.Is(err, repo.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": "already friends"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send friend request"})
		return
	}

	// Notify the receiver; socket delivery is best effort on top of the
	// persisted record.
	text := fmt.Sprintf("%s sent you a friend request", id.DisplayName)
	if _, nerr := h.notifications.Create(c.Request.Context(), body.ReceiverID, id.UserID,
		model.NotificationFriendRequest, text); nerr == nil {
		h.hub.EmitToUser(body.ReceiverID, event.EventNewNotification, event.NewNotificationPayload{
			Type:       model.NotificationFriendRequest,
			Message:    text,
			SenderID:   id.UserID,
			SenderName: id.DisplayName,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

func (h *friendHandler) ListPending(c *gin.Context) {
	id := identityFrom(c)

	requests, err := h.friends.PendingForUser(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// AcceptRequest settles the request and emits friend_request_accepted
// to each side with the other side's details.
func (h *friendHandler) AcceptRequest(c *gin.Context) {
	id := identityFrom(c)

	requestID, err := strconv.ParseInt(c.Param("requestId"), 10, 64)
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	result, err := h.friends.AcceptRequest(c.Request.Context(), requestID, id.UserID)
	if herr := settleError(c, err); herr {
		return
	}

	h.hub.EmitToUser(result.SenderID, event.EventFriendRequestAccepted, event.FriendRequestAcceptedPayload{
		FriendID:    result.ReceiverID,
		RoomName:    result.RoomName,
		FriendName:  result.ReceiverName,
		FriendEmail: result.ReceiverEmail,
	})
	h.hub.EmitToUser(result.ReceiverID, event.EventFriendRequestAccepted, event.FriendRequestAcceptedPayload{
		FriendID:    result.SenderID,
		RoomName:    result.RoomName,
		FriendName:  result.SenderName,
		FriendEmail: result.SenderEmail,
	})

	c.JSON(http.StatusOK, gin.H{"roomName": result.RoomName})
}

func (h *friendHandler) RejectRequest(c *gin.Context) {
	id := identityFrom(c)

	requestID, err := strconv.ParseInt(c.Param("requestId"), 10, 64)
	if err != nil || requestID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	err = h.friends.RejectRequest(c.Request.Context(), requestID, id.UserID)
	if herr := settleError(c, err); herr {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request rejected"})
}

// settleError writes the response for a settle failure and reports
// whether the caller should stop.
func settleError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repo.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "friend request not found"})
	case errors.Is(err, repo.ErrNotTheReceiver):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the receiver can settle a request"})
	case errors.Is(err, repo.ErrRequestSettled):
		c.JSON(http.StatusConflict, gin.H{"error": "request already settled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to settle request"})
	}
	return true
}
