package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Rojan-K/ChatAPP/internal/model"
	"github.com/Rojan-K/ChatAPP/internal/repo"
)

type UserHandler interface {
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	SearchUsers(c *gin.Context)
	GetFriends(c *gin.Context)
}

type userHandler struct {
	users   repo.UserRepository
	friends repo.FriendRepository
}

func NewUserHandler(users repo.UserRepository, friends repo.FriendRepository) UserHandler {
	return &userHandler{users: users, friends: friends}
}

func (h *userHandler) GetProfile(c *gin.Context) {
	id := identityFrom(c)

	user, err := h.users.FindByUserID(c.Request.Context(), id.UserID)
	if errors.Is(err, repo.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *userHandler) UpdateProfile(c *gin.Context) {
	id := identityFrom(c)

	var update repo.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), id.UserID, update)
	if errors.Is(err, repo.ErrNothingToSet) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type searchResult struct {
	model.User
	IsFriend bool `json:"isFriend"`
}

func (h *userHandler) SearchUsers(c *gin.Context) {
	id := identityFrom(c)

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	users, err := h.users.SearchUsers(c.Request.Context(), query, id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	friendIDs, err := h.friends.FriendIDs(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	friendSet := lo.SliceToMap(friendIDs, func(fid int64) (int64, struct{}) {
		return fid, struct{}{}
	})

	results := lo.Map(users, func(u model.User, _ int) searchResult {
		_, isFriend := friendSet[u.UserID]
		return searchResult{User: u, IsFriend: isFriend}
	})

	c.JSON(http.StatusOK, gin.H{"users": results})
}

func (h *userHandler) GetFriends(c *gin.Context) {
	id := identityFrom(c)

	friends, err := h.friends.GetFriends(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}
