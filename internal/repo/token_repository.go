package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rojan-K/ChatAPP/internal/auth"
	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

var ErrTokenNotFound = errors.New("token not found or expired")

type tokenRepository struct {
	tokens *db.Repository[model.Token]
}

// TokenRepository persists issued access tokens; Lookup is the
// revocation check credential validation runs after the JWT verifies.
type TokenRepository interface {
	auth.TokenStore
	Save(ctx context.Context, token model.Token) error
	Delete(ctx context.Context, token string) error
}

func NewTokenRepository(tokens *db.Repository[model.Token]) TokenRepository {
	return &tokenRepository{tokens: tokens}
}

func (t *tokenRepository) Save(ctx context.Context, token model.Token) error {
	_, err := t.tokens.Create(ctx, token)
	return err
}

func (t *tokenRepository) Lookup(ctx context.Context, token string) (auth.Identity, error) {
	record, err := t.tokens.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.Identity{}, ErrTokenNotFound
	}
	if err != nil {
		return auth.Identity{}, err
	}

	return auth.Identity{
		UserID:      record.UserID,
		Email:       record.Email,
		DisplayName: record.FullName,
	}, nil
}

func (t *tokenRepository) Delete(ctx context.Context, token string) error {
	_, err := t.tokens.Delete(ctx, bson.M{"token": token})
	return err
}
