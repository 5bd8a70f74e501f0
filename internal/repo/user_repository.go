package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/event"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrNothingToSet = errors.New("no fields to update")
)

const searchLimit = 20

// ProfileUpdate carries the optional profile fields; nil means leave
// unchanged.
type ProfileUpdate struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
	PicURL   *string `json:"profilePic"`
}

type userRepository struct {
	con      *mongo.Database
	users    *db.Repository[model.User]
	counters *db.Counters
	logger   *zap.Logger
}

type UserRepository interface {
	CreateUser(ctx context.Context, fullName, email, passwordHash string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUserID(ctx context.Context, userID int64) (*model.User, error)
	SearchUsers(ctx context.Context, query string, excludeUserID int64) ([]model.User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*model.User, error)
	UpdateUserStatus(ctx context.Context, userID int64, status string) error
}

func NewUserRepository(con *mongo.Database, users *db.Repository[model.User], counters *db.Counters, logger *zap.Logger) UserRepository {
	return &userRepository{con: con, users: users, counters: counters, logger: logger}
}

func (r *userRepository) CreateUser(ctx context.Context, fullName, email, passwordHash string) (*model.User, error) {
	taken, err := r.users.Exists(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	userID, err := r.counters.Next(ctx, db.SeqUsers)
	if err != nil {
		return nil, fmt.Errorf("allocate user id: %w", err)
	}

	user := model.User{
		UserID:       userID,
		FullName:     fullName,
		Email:        email,
		PasswordHash: passwordHash,
		Status:       event.StatusOffline,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	r.logger.Info("user created", zap.Int64("user", userID), zap.String("email", email))
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.users.FindOne(ctx, bson.M{"email": email})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (r *userRepository) FindByUserID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := r.users.FindOne(ctx, bson.M{"user_id": userID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// SearchUsers matches name or email case-insensitively, excluding the
// searching user.
func (r *userRepository) SearchUsers(ctx context.Context, query string, excludeUserID int64) ([]model.User, error) {
	filter := db.NewFilter().
		Ne("user_id", excludeUserID).
		Or(
			bson.M{"full_name": bson.M{"$regex": query, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": query, "$options": "i"}},
		).
		Build()

	result, err := r.users.FindWithPagination(ctx, filter, db.PaginationParams{
		Page:     1,
		PageSize: searchLimit,
		SortBy:   "full_name",
	})
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return result.Data, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*model.User, error) {
	set := bson.M{}
	if update.FullName != nil {
		set["full_name"] = *update.FullName
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.PicURL != nil {
		set["pic_url"] = *update.PicURL
	}
	if len(set) == 0 {
		return nil, ErrNothingToSet
	}
	set["updated_at"] = time.Now().UTC()

	if _, err := r.users.Update(ctx, bson.M{"user_id": userID}, set); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return r.FindByUserID(ctx, userID)
}

func (r *userRepository) UpdateUserStatus(ctx context.Context, userID int64, status string) error {
	result, err := r.users.Update(ctx, bson.M{"user_id": userID}, bson.M{"status": status})
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
