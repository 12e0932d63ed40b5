package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FriendRepository stores friend requests in the friend_requests collection.
type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friend_requests"),
	}
}

// CreateRequest inserts req and fills in its id and timestamps.
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert friend request")
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = insertedID

	return req, nil
}

func (r *FriendRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		return nil, notFoundOr(err, "failed to find friend request")
	}
	return &request, nil
}

// FindBetween returns the request with the given status between a and b in
// either direction, or nil when there is none.
func (r *FriendRepository) FindBetween(ctx context.Context, a, b primitive.ObjectID, status string) (*models.FriendRequest, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"sender": a, "recipient": b},
			{"sender": b, "recipient": a},
		},
		"status": status,
	}

	var request models.FriendRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s friend request: %w", status, err)
	}
	return &request, nil
}

// UpdateStatus sets the request status. rejectedAt is written only when non-nil.
func (r *FriendRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, rejectedAt *time.Time) error {
	set := bson.M{"status": status, "updated_at": time.Now()}
	if rejectedAt != nil {
		set["rejected_at"] = *rejectedAt
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	return nil
}

func (r *FriendRepository) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// GetRequestsByRecipient returns requests addressed to recipientID with the given status.
func (r *FriendRepository) GetRequestsByRecipient(ctx context.Context, recipientID primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"recipient": recipientID, "status": status})
}

// GetRequestsBySender returns requests sent by senderID with the given status.
func (r *FriendRepository) GetRequestsBySender(ctx context.Context, senderID primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return r.find(ctx, bson.M{"sender": senderID, "status": status})
}

func (r *FriendRepository) find(ctx context.Context, filter bson.M) ([]models.FriendRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []models.FriendRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %w", err)
	}
	return requests, nil
}

// MarkSeen flags every pending, unseen request addressed to recipientID as seen.
func (r *FriendRepository) MarkSeen(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient": recipientID, "status": models.RequestStatusPending, "seen": false},
		bson.M{"$set": bson.M{"seen": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark friend requests as seen: %w", err)
	}
	return result.ModifiedCount, nil
}

// CountUnseen counts pending requests to recipientID not yet seen.
func (r *FriendRepository) CountUnseen(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx,
		bson.M{"recipient": recipientID, "status": models.RequestStatusPending, "seen": false},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count unseen friend requests: %w", err)
	}
	return count, nil
}
