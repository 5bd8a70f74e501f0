package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/repo"
)

type MessageHandler interface {
	SaveMessage(c *gin.Context)
	GetConversations(c *gin.Context)
	GetConversationMessages(c *gin.Context)
	MarkConversationRead(c *gin.Context)
}

type messageHandler struct {
	messages repo.MessageRepository
	friends  repo.FriendRepository
}

func NewMessageHandler(messages repo.MessageRepository, friends repo.FriendRepository) MessageHandler {
	return &messageHandler{messages: messages, friends: friends}
}

type saveMessageBody struct {
	ReceiverID int64  `json:"receiverId" binding:"required,gt=0"`
	Message    string `json:"message" binding:"required,max=4000"`
}

// SaveMessage persists a direct message and returns the durable ids;
// the client then relays it over the socket with messageId set so the
// hub fans out without re-persisting.
func (h *messageHandler) SaveMessage(c *gin.Context) {
	id := identityFrom(c)

	var body saveMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	friends, err := h.friends.AreFriends(c.Request.Context(), id.UserID, body.ReceiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}
	if !friends {
		c.JSON(http.StatusForbidden, gin.H{"error": "can only message friends"})
		return
	}

	saved, err := h.messages.SaveDirectMessage(c.Request.Context(), id.UserID, body.ReceiverID, body.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"messageId":      saved.MessageID,
		"conversationId": saved.ConversationID,
	})
}

func (h *messageHandler) GetConversations(c *gin.Context) {
	id := identityFrom(c)

	conversations, err := h.messages.GetUserConversations(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (h *messageHandler) GetConversationMessages(c *gin.Context) {
	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}

	result, err := h.messages.GetConversationMessages(c.Request.Context(), conversationID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *messageHandler) MarkConversationRead(c *gin.Context) {
	id := identityFrom(c)

	conversationID, ok := conversationIDParam(c)
	if !ok {
		return
	}

	if err := h.messages.MarkConversationRead(c.Request.Context(), conversationID, id.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark conversation read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "conversation marked read"})
}

func conversationIDParam(c *gin.Context) (int64, bool) {
	conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
	if err != nil || conversationID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return 0, false
	}
	return conversationID, true
}
