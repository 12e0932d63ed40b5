package services

import (
	"context"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequestStore is the persistence the friend request lifecycle needs.
// repository.FriendRepository implements it on MongoDB.
type FriendRequestStore interface {
	CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error)
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error)
	// FindBetween returns nil, nil when no request with status exists between a and b.
	FindBetween(ctx context.Context, a, b primitive.ObjectID, status string) (*models.FriendRequest, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, rejectedAt *time.Time) error
	DeleteRequest(ctx context.Context, id primitive.ObjectID) error
	GetRequestsByRecipient(ctx context.Context, recipientID primitive.ObjectID, status string) ([]models.FriendRequest, error)
	GetRequestsBySender(ctx context.Context, senderID primitive.ObjectID, status string) ([]models.FriendRequest, error)
	MarkSeen(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	CountUnseen(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}

// UserStore is the user persistence used by the services.
// repository.UserRepository implements it on MongoDB.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindRecommended(ctx context.Context, userID primitive.ObjectID, exclude []primitive.ObjectID) ([]models.User, error)
}

// CountCache caches unseen friend request counts per user id.
// Every Invalidate advances the user's generation. Set stores a count only
// when the generation still matches the one read before the count was
// computed, so a fill racing a write cannot resurrect a stale value.
type CountCache interface {
	Get(ctx context.Context, userID string) (int64, bool, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, gen, count int64) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}
