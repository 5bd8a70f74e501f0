package hub

import (
	"context"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

// SavedMessage is the durable identity the store assigns to a direct
// message and its owning conversation.
type SavedMessage struct {
	MessageID      int64
	ConversationID int64
}

// Store is the persistence surface the hub consumes. The store is the
// system of record; the hub's in-memory presence and topology are
// caches rebuilt as users connect. Status writes always precede the
// corresponding broadcast.
type Store interface {
	// SaveDirectMessage persists a direct message and upserts the owning
	// conversation's last-message summary.
	SaveDirectMessage(ctx context.Context, senderID, receiverID int64, body string) (SavedMessage, error)

	// SaveGroupMessage persists a group message and updates the group's
	// last-message summary.
	SaveGroupMessage(ctx context.Context, groupID, senderID int64, body string) (int64, error)

	UpdateUserStatus(ctx context.Context, userID int64, status string) error
	GetFriends(ctx context.Context, userID int64) ([]model.Friend, error)
	IsGroupParticipant(ctx context.Context, groupID, userID int64) (bool, error)
	GetUserGroupIDs(ctx context.Context, userID int64) ([]int64, error)
	CreateNotification(ctx context.Context, recipientID, senderID int64, kind, text string) (int64, error)
}

// CredentialValidator resolves an opaque bearer credential into an
// authenticated identity.
type CredentialValidator interface {
	Validate(ctx context.Context, token string) (auth.Identity, error)
}
