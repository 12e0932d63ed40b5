package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// FriendRequest is a request from Sender to Recipient. RejectedAt is set only
// when the request is rejected and drives the resend cooldown.
type FriendRequest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID    primitive.ObjectID `bson:"sender" json:"sender"`
	RecipientID primitive.ObjectID `bson:"recipient" json:"recipient"`
	Status      string             `bson:"status" json:"status"`
	Seen        bool               `bson:"seen" json:"seen"`
	RejectedAt  *time.Time         `bson:"rejected_at" json:"rejectedAt"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FriendRequestDetail is a request with one side expanded to its public profile.
type FriendRequestDetail struct {
	ID         primitive.ObjectID `json:"_id"`
	Sender     any                `json:"sender"`
	Recipient  any                `json:"recipient"`
	Status     string             `json:"status"`
	Seen       bool               `json:"seen"`
	RejectedAt *time.Time         `json:"rejectedAt"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// FriendRequestsOverview is the notification page payload.
type FriendRequestsOverview struct {
	IncomingReqs []FriendRequestDetail `json:"incomingReqs"`
	AcceptedReqs []FriendRequestDetail `json:"acceptedReqs"`
}
