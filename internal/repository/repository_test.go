package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const (
	requestsNS = "lingo.friend_requests"
	usersNS    = "lingo.users"
)

func requestDoc(id, sender, recipient primitive.ObjectID, status string, seen bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "sender", Value: sender},
		{Key: "recipient", Value: recipient},
		{Key: "status", Value: status},
		{Key: "seen", Value: seen},
		{Key: "created_at", Value: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFriendRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("create request", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		req, err := repo.CreateRequest(ctx, &models.FriendRequest{
			SenderID:    alice,
			RecipientID: bob,
			Status:      models.RequestStatusPending,
		})
		require.NoError(mt, err)
		assert.False(mt, req.ID.IsZero())
		assert.False(mt, req.CreatedAt.IsZero())

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "insert", evt.CommandName)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, requestsNS, mtest.FirstBatch,
			requestDoc(id, alice, bob, models.RequestStatusPending, false)))

		req, err := repo.GetRequestByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, id, req.ID)
		assert.Equal(mt, alice, req.SenderID)
		assert.Equal(mt, bob, req.RecipientID)
		assert.Nil(mt, req.RejectedAt)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, requestsNS, mtest.FirstBatch))

		_, err := repo.GetRequestByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("find between matches either direction", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, requestsNS, mtest.FirstBatch))

		req, err := repo.FindBetween(ctx, alice, bob, models.RequestStatusRejected)
		require.NoError(mt, err)
		assert.Nil(mt, req)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		status, err := evt.Command.LookupErr("filter", "status")
		require.NoError(mt, err)
		assert.Equal(mt, models.RequestStatusRejected, status.StringValue())

		or, err := evt.Command.LookupErr("filter", "$or")
		require.NoError(mt, err)
		branches, err := or.Array().Values()
		require.NoError(mt, err)
		assert.Len(mt, branches, 2)
	})

	mt.Run("find between store error", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad value",
		}))

		_, err := repo.FindBetween(ctx, alice, bob, models.RequestStatusPending)
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("requests by recipient", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		first := mtest.CreateCursorResponse(1, requestsNS, mtest.FirstBatch,
			requestDoc(primitive.NewObjectID(), alice, bob, models.RequestStatusPending, false))
		second := mtest.CreateCursorResponse(0, requestsNS, mtest.NextBatch,
			requestDoc(primitive.NewObjectID(), primitive.NewObjectID(), bob, models.RequestStatusPending, true))
		mt.AddMockResponses(first, second)

		reqs, err := repo.GetRequestsByRecipient(ctx, bob, models.RequestStatusPending)
		require.NoError(mt, err)
		require.Len(mt, reqs, 2)
		assert.True(mt, reqs[1].Seen)
	})

	mt.Run("requests by sender empty", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, requestsNS, mtest.FirstBatch))

		reqs, err := repo.GetRequestsBySender(ctx, alice, models.RequestStatusAccepted)
		require.NoError(mt, err)
		assert.NotNil(mt, reqs)
		assert.Empty(mt, reqs)
	})

	mt.Run("mark seen", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 2},
		))

		modified, err := repo.MarkSeen(ctx, bob)
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), modified)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("count unseen", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, requestsNS, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}}))

		count, err := repo.CountUnseen(ctx, bob)
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), count)
	})

	mt.Run("update status with rejection time", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		rejectedAt := time.Now()
		require.NoError(mt, repo.UpdateStatus(ctx, primitive.NewObjectID(), models.RequestStatusRejected, &rejectedAt))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("delete request", func(mt *mtest.T) {
		repo := NewFriendRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.DeleteRequest(ctx, primitive.NewObjectID()))
	})
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.CreateUser(ctx, &models.User{FullName: "Alice", Email: "alice@example.com"})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
		assert.NotNil(mt, user.Friends)
	})

	mt.Run("create user duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: lingo.users index: email_1",
		}))

		_, err := repo.CreateUser(ctx, &models.User{FullName: "Alice", Email: "alice@example.com"})
		assert.ErrorIs(mt, err, ErrDuplicate)
	})

	mt.Run("get by email not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id, friend := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "full_name", Value: "Alice"},
			{Key: "password", Value: "$2a$10$hash"},
			{Key: "is_onboarded", Value: true},
			{Key: "friends", Value: bson.A{friend}},
		}))

		user, err := repo.GetUserByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "Alice", user.FullName)
		assert.Equal(mt, "$2a$10$hash", user.HashedPassword)
		assert.True(mt, user.IsOnboarded)
		assert.True(mt, user.HasFriend(friend))
	})

	mt.Run("add friend", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		require.NoError(mt, repo.AddFriend(ctx, primitive.NewObjectID(), primitive.NewObjectID()))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
	})

	mt.Run("find recommended", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		me, friend := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "full_name", Value: "Carol"}, {Key: "is_onboarded", Value: true}},
		))

		users, err := repo.FindRecommended(ctx, me, []primitive.ObjectID{friend})
		require.NoError(mt, err)
		require.Len(mt, users, 1)
		assert.Equal(mt, "Carol", users[0].FullName)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		and, err := evt.Command.LookupErr("filter", "$and")
		require.NoError(mt, err)
		filter := and.String()
		assert.Contains(mt, filter, "$ne")
		assert.Contains(mt, filter, "$nin")
		assert.Contains(mt, filter, "is_onboarded")
	})

	mt.Run("users by ids", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		users, err := repo.GetUsersByIDs(ctx, []primitive.ObjectID{primitive.NewObjectID()})
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})
}
