package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Rojan-K/ChatAPP/internal/db"
	"github.com/Rojan-K/ChatAPP/internal/model"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrNotAParticipant    = errors.New("user is not a participant of this group")
	ErrAlreadyParticipant = errors.New("user is already a participant")
	ErrNoParticipants     = errors.New("a group needs at least one other participant")
)

type groupRepository struct {
	con      *mongo.Database
	groups   *db.Repository[model.GroupChat]
	counters *db.Counters
	logger   *zap.Logger
}

type GroupRepository interface {
	CreateGroup(ctx context.Context, name string, creatorID int64, participantIDs []int64) (*model.GroupChat, error)
	GetGroup(ctx context.Context, groupID int64) (*model.GroupChat, error)
	GetGroupsForUser(ctx context.Context, userID int64) ([]model.GroupChat, error)
	GetUserGroupIDs(ctx context.Context, userID int64) ([]int64, error)
	IsParticipant(ctx context.Context, groupID, userID int64) (bool, error)
	AddParticipant(ctx context.Context, groupID, userID, addedBy int64) error
	RemoveParticipant(ctx context.Context, groupID, userID int64) error
}

func NewGroupRepository(con *mongo.Database, groups *db.Repository[model.GroupChat], counters *db.Counters, logger *zap.Logger) GroupRepository {
	return &groupRepository{con: con, groups: groups, counters: counters, logger: logger}
}

// CreateGroup creates a group with the creator as admin. Duplicate ids
// and the creator are filtered out of the participant list first.
func (g *groupRepository) CreateGroup(ctx context.Context, name string, creatorID int64, participantIDs []int64) (*model.GroupChat, error) {
	others := lo.Uniq(lo.Filter(participantIDs, func(id int64, _ int) bool {
		return id != creatorID && id > 0
	}))
	if len(others) == 0 {
		return nil, ErrNoParticipants
	}

	groupID, err := g.counters.Next(ctx, db.SeqGroups)
	if err != nil {
		return nil, fmt.Errorf("allocate group id: %w", err)
	}

	now := time.Now().UTC()
	participants := []model.GroupParticipant{{
		UserID:   creatorID,
		FullName: g.lookupName(ctx, creatorID),
		Role:     model.RoleAdmin,
		JoinedAt: now,
	}}
	for _, id := range others {
		participants = append(participants, model.GroupParticipant{
			UserID:   id,
			FullName: g.lookupName(ctx, id),
			Role:     model.RoleMember,
			JoinedAt: now,
		})
	}

	group := model.GroupChat{
		GroupID:      groupID,
		Name:         name,
		CreatedBy:    creatorID,
		Participants: participants,
		CreatedAt:    now,
	}
	if _, err := g.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}

	g.logger.Info("group created",
		zap.Int64("group", groupID),
		zap.Int64("creator", creatorID),
		zap.Int("participants", len(participants)),
	)
	return &group, nil
}

func (g *groupRepository) GetGroup(ctx context.Context, groupID int64) (*model.GroupChat, error) {
	group, err := g.groups.FindOne(ctx, bson.M{"group_id": groupID})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGroupNotFound
	}
	return group, err
}

func (g *groupRepository) GetGroupsForUser(ctx context.Context, userID int64) ([]model.GroupChat, error) {
	return g.groups.FindAll(ctx, bson.M{"participants.user_id": userID})
}

// GetUserGroupIDs resolves the group rooms a connection eagerly joins
// at registration.
func (g *groupRepository) GetUserGroupIDs(ctx context.Context, userID int64) ([]int64, error) {
	groups, err := g.GetGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(groups, func(gc model.GroupChat, _ int) int64 { return gc.GroupID }), nil
}

func (g *groupRepository) IsParticipant(ctx context.Context, groupID, userID int64) (bool, error) {
	return g.groups.Exists(ctx, bson.M{
		"group_id":             groupID,
		"participants.user_id": userID,
	})
}

func (g *groupRepository) AddParticipant(ctx context.Context, groupID, userID, addedBy int64) error {
	adderIn, err := g.IsParticipant(ctx, groupID, addedBy)
	if err != nil {
		return err
	}
	if !adderIn {
		return ErrNotAParticipant
	}

	already, err := g.IsParticipant(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if already {
		return ErrAlreadyParticipant
	}

	_, err = g.con.Collection("groups").UpdateOne(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$push": bson.M{"participants": model.GroupParticipant{
			UserID:   userID,
			FullName: g.lookupName(ctx, userID),
			Role:     model.RoleMember,
			JoinedAt: time.Now().UTC(),
		}}},
	)
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}

	g.logger.Info("participant added",
		zap.Int64("group", groupID),
		zap.Int64("user", userID),
		zap.Int64("added_by", addedBy),
	)
	return nil
}

func (g *groupRepository) RemoveParticipant(ctx context.Context, groupID, userID int64) error {
	result, err := g.con.Collection("groups").UpdateOne(ctx,
		bson.M{"group_id": groupID},
		bson.M{"$pull": bson.M{"participants": bson.M{"user_id": userID}}},
	)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrGroupNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrNotAParticipant
	}

	g.logger.Info("participant removed",
		zap.Int64("group", groupID), zap.Int64("user", userID))
	return nil
}

func (g *groupRepository) lookupName(ctx context.Context, userID int64) string {
	var user model.User
	err := g.con.Collection("users").FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		return ""
	}
	return user.FullName
}
