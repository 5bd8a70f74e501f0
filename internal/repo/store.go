package repo

import (
	"context"

	"github.com/Rojan-K/ChatAPP/internal/hub"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

// chatStore stitches the per-collection repositories into the single
// persistence surface the hub consumes.
type chatStore struct {
	messages      MessageRepository
	users         UserRepository
	friends       FriendRepository
	groups        GroupRepository
	notifications NotificationRepository
}

func NewChatStore(
	messages MessageRepository,
	users UserRepository,
	friends FriendRepository,
	groups GroupRepository,
	notifications NotificationRepository,
) hub.Store {
	return &chatStore{
		messages:      messages,
		users:         users,
		friends:       friends,
		groups:        groups,
		notifications: notifications,
	}
}

func (s *chatStore) SaveDirectMessage(ctx context.Context, senderID, receiverID int64, body string) (hub.SavedMessage, error) {
	return s.messages.SaveDirectMessage(ctx, senderID, receiverID, body)
}

func (s *chatStore) SaveGroupMessage(ctx context.Context, groupID, senderID int64, body string) (int64, error) {
	return s.messages.SaveGroupMessage(ctx, groupID, senderID, body)
}

func (s *chatStore) UpdateUserStatus(ctx context.Context, userID int64, status string) error {
	return s.users.UpdateUserStatus(ctx, userID, status)
}

func (s *chatStore) GetFriends(ctx context.Context, userID int64) ([]model.Friend, error) {
	return s.friends.GetFriends(ctx, userID)
}

func (s *chatStore) IsGroupParticipant(ctx context.Context, groupID, userID int64) (bool, error) {
	return s.groups.IsParticipant(ctx, groupID, userID)
}

func (s *chatStore) GetUserGroupIDs(ctx context.Context, userID int64) ([]int64, error) {
	return s.groups.GetUserGroupIDs(ctx, userID)
}

func (s *chatStore) CreateNotification(ctx context.Context, recipientID, senderID int64, kind, text string) (int64, error) {
	return s.notifications.Create(ctx, recipientID, senderID, kind, text)
}
