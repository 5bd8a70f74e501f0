package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/hub"
	"github.com/Rojan-K/ChatAPP/internal/repo"
)

const groupHistoryLimit = 50

type GroupHandler interface {
	CreateGroup(c *gin.Context)
	GetGroups(c *gin.Context)
	AddParticipant(c *gin.Context)
	LeaveGroup(c *gin.Context)
	GetMessages(c *gin.Context)
	SendMessage(c *gin.Context)
}

type groupHandler struct {
	groups   repo.GroupRepository
	messages repo.MessageRepository
	hub      *hub.Hub
}

func NewGroupHandler(groups repo.GroupRepository, messages repo.MessageRepository, h *hub.Hub) GroupHandler {
	return &groupHandler{groups: groups, messages: messages, hub: h}
}

type createGroupBody struct {
	Name           string  `json:"groupName" binding:"required,min=1,max=100"`
	ParticipantIDs []int64 `json:"participantIds" binding:"required,min=1"`
}

func (h *groupHandler) CreateGroup(c *gin.Context) {
	id := identityFrom(c)

	var body createGroupBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), body.Name, id.UserID, body.ParticipantIDs)
	if errors.Is(err, repo.ErrNoParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a group needs at least one other participant"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	// Tell every other participant so connected clients join the room
	// without reconnecting.
	for _, p := range group.Participants {
		if p.UserID == id.UserID {
			continue
		}
		h.hub.EmitToUser(p.UserID, event.EventGroupAdded, event.GroupAddedPayload{
			GroupID:   group.GroupID,
			GroupName: group.Name,
			AddedBy:   id.UserID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

func (h *groupHandler) GetGroups(c *gin.Context) {
	id := identityFrom(c)

	groups, err := h.groups.GetGroupsForUser(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

type addParticipantBody struct {
	UserID int64 `json:"userId" binding:"required,gt=0"`
}

func (h *groupHandler) AddParticipant(c *gin.Context) {
	id := identityFrom(c)

	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	var body addParticipantBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.groups.AddParticipant(c.Request.Context(), groupID, body.UserID, id.UserID)
	switch {
	case errors.Is(err, repo.ErrNotAParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this group"})
		return
	case errors.Is(err, repo.ErrAlreadyParticipant):
		c.JSON(http.StatusConflict, gin.H{"error": "user is already a participant"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add participant"})
		return
	}

	group, gerr := h.groups.GetGroup(c.Request.Context(), groupID)
	name := ""
	if gerr == nil {
		name = group.Name
	}
	h.hub.EmitToUser(body.UserID, event.EventGroupAdded, event.GroupAddedPayload{
		GroupID:   groupID,
		GroupName: name,
		AddedBy:   id.UserID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "participant added"})
}

func (h *groupHandler) LeaveGroup(c *gin.Context) {
	id := identityFrom(c)

	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	err := h.groups.RemoveParticipant(c.Request.Context(), groupID, id.UserID)
	switch {
	case errors.Is(err, repo.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	case errors.Is(err, repo.ErrNotAParticipant):
		c.JSON(http.StatusConflict, gin.H{"error": "not a participant of this group"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to leave group"})
		return
	}

	h.hub.EmitToGroup(groupID, event.EventParticipantLeft, event.ParticipantLeftPayload{
		GroupID: groupID,
		UserID:  id.UserID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "left group"})
}

func (h *groupHandler) GetMessages(c *gin.Context) {
	id := identityFrom(c)

	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	member, err := h.groups.IsParticipant(c.Request.Context(), groupID, id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this group"})
		return
	}

	messages, err := h.messages.GetGroupMessages(c.Request.Context(), groupID, groupHistoryLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type sendGroupMessageBody struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// SendMessage persists a group message over HTTP and fans it out to the
// group room; clients sending over the socket use send_group_message
// instead.
func (h *groupHandler) SendMessage(c *gin.Context) {
	id := identityFrom(c)

	groupID, ok := groupIDParam(c)
	if !ok {
		return
	}

	var body sendGroupMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.groups.IsParticipant(c.Request.Context(), groupID, id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this group"})
		return
	}

	messageID, err := h.messages.SaveGroupMessage(c.Request.Context(), groupID, id.UserID, body.Message)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	h.hub.EmitToGroup(groupID, event.EventReceiveGroupMessage, event.ReceiveGroupMessagePayload{
		ID:         messageID,
		GroupID:    groupID,
		SenderID:   id.UserID,
		SenderName: id.DisplayName,
		Message:    body.Message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})

	c.JSON(http.StatusCreated, gin.H{"messageId": messageID})
}

func groupIDParam(c *gin.Context) (int64, bool) {
	groupID, err := strconv.ParseInt(c.Param("groupId"), 10, 64)
	if err != nil || groupID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return 0, false
	}
	return groupID, true
}
