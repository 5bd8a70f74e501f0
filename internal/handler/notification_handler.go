package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rojan-K/ChatAPP/internal/repo"
)

type NotificationHandler interface {
	List(c *gin.Context)
	UnreadCount(c *gin.Context)
	MarkRead(c *gin.Context)
	MarkAllRead(c *gin.Context)
}

type notificationHandler struct {
	notifications repo.NotificationRepository
}

func NewNotificationHandler(notifications repo.NotificationRepository) NotificationHandler {
	return &notificationHandler{notifications: notifications}
}

func (h *notificationHandler) List(c *gin.Context) {
	id := identityFrom(c)

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	result, err := h.notifications.ListForUser(c.Request.Context(), id.UserID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *notificationHandler) UnreadCount(c *gin.Context) {
	id := identityFrom(c)

	count, err := h.notifications.CountUnread(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *notificationHandler) MarkRead(c *gin.Context) {
	id := identityFrom(c)

	notificationID, err := strconv.ParseInt(c.Param("notificationId"), 10, 64)
	if err != nil || notificationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	err = h.notifications.MarkRead(c.Request.Context(), notificationID, id.UserID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

func (h *notificationHandler) MarkAllRead(c *gin.Context) {
	id := identityFrom(c)

	if err := h.notifications.MarkAllRead(c.Request.Context(), id.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}
