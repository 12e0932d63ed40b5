package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/metrics"
	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/Dias221467/Lingo_Connect/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendService implements the friend request lifecycle.
//
// Each operation is a sequence of independent store calls with no
// cross-document transaction, so two concurrent requests for the same pair
// can both pass the pending check.
type FriendService struct {
	friendRepo FriendRequestStore
	userRepo   UserStore
	countCache CountCache
	now        func() time.Time
}

// NewFriendService creates a new FriendService. countCache may be nil.
func NewFriendService(friendRepo FriendRequestStore, userRepo UserStore, countCache CountCache) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		countCache: countCache,
		now:        time.Now,
	}
}

// SendFriendRequest creates a pending request from senderID to recipientID.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, recipientID primitive.ObjectID) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, newServiceError(ErrInvalidOperation, "You can't send a friend request to yourself")
	}

	recipient, err := s.userRepo.GetUserByID(ctx, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newServiceError(ErrNotFound, "Recipient not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}

	if recipient.HasFriend(senderID) {
		return nil, newServiceError(ErrConflict, "You are already friends with this user")
	}

	pending, err := s.friendRepo.FindBetween(ctx, senderID, recipientID, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, newServiceError(ErrConflict, "A pending friend request already exists")
	}

	rejected, err := s.friendRepo.FindBetween(ctx, senderID, recipientID, models.RequestStatusRejected)
	if err != nil {
		return nil, err
	}
	if rejected != nil {
		decision := EvaluateCooldown(rejected, s.now())
		if !decision.Proceed {
			metrics.FriendRequestEvents.WithLabelValues("cooldown_blocked").Inc()
			return nil, cooldownError(decision.DaysLeft)
		}

		// cooldown is over: the old rejection makes way for a new cycle
		if err := s.friendRepo.DeleteRequest(ctx, rejected.ID); err != nil {
			return nil, err
		}
		metrics.FriendRequestEvents.WithLabelValues("cooldown_cleared").Inc()
	}

	created, err := s.friendRepo.CreateRequest(ctx, &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.RequestStatusPending,
		Seen:        false,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCount(ctx, recipientID)
	metrics.FriendRequestEvents.WithLabelValues("sent").Inc()
	logrus.WithFields(logrus.Fields{
		"requestID": created.ID.Hex(),
		"sender":    senderID.Hex(),
		"recipient": recipientID.Hex(),
	}).Info("Friend request sent")

	return created, nil
}

// AcceptFriendRequest marks the request accepted and adds each user to the
// other's friend set. The current status is not checked.
func (s *FriendService) AcceptFriendRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	request, err := s.authorizedRequest(ctx, requestID, actingUserID, "accept")
	if err != nil {
		return err
	}

	if err := s.friendRepo.UpdateStatus(ctx, requestID, models.RequestStatusAccepted, nil); err != nil {
		return err
	}

	if err := s.userRepo.AddFriend(ctx, request.SenderID, request.RecipientID); err != nil {
		return fmt.Errorf("failed to add friend to sender: %w", err)
	}
	if err := s.userRepo.AddFriend(ctx, request.RecipientID, request.SenderID); err != nil {
		return fmt.Errorf("failed to add friend to recipient: %w", err)
	}

	s.invalidateCount(ctx, request.RecipientID)
	metrics.FriendRequestEvents.WithLabelValues("accepted").Inc()
	logrus.WithField("requestID", requestID.Hex()).Info("Friend request accepted")
	return nil
}

// RejectFriendRequest marks the request rejected and stamps the rejection time
// that starts the resend cooldown. The current status is not checked.
func (s *FriendService) RejectFriendRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID) error {
	request, err := s.authorizedRequest(ctx, requestID, actingUserID, "reject")
	if err != nil {
		return err
	}

	rejectedAt := s.now()
	if err := s.friendRepo.UpdateStatus(ctx, requestID, models.RequestStatusRejected, &rejectedAt); err != nil {
		return err
	}

	s.invalidateCount(ctx, request.RecipientID)
	metrics.FriendRequestEvents.WithLabelValues("rejected").Inc()
	logrus.WithField("requestID", requestID.Hex()).Info("Friend request rejected")
	return nil
}

func (s *FriendService) authorizedRequest(ctx context.Context, requestID, actingUserID primitive.ObjectID, action string) (*models.FriendRequest, error) {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newServiceError(ErrNotFound, "Friend request not found")
	}
	if err != nil {
		return nil, err
	}

	if request.RecipientID != actingUserID {
		return nil, newServiceError(ErrForbidden, fmt.Sprintf("You are not authorized to %s this request", action))
	}
	return request, nil
}

// GetFriendRequests returns pending requests addressed to userID and requests
// userID sent that have been accepted.
func (s *FriendService) GetFriendRequests(ctx context.Context, userID primitive.ObjectID) (*models.FriendRequestsOverview, error) {
	incoming, err := s.friendRepo.GetRequestsByRecipient(ctx, userID, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	accepted, err := s.friendRepo.GetRequestsBySender(ctx, userID, models.RequestStatusAccepted)
	if err != nil {
		return nil, err
	}

	incomingReqs, err := s.expand(ctx, incoming, true)
	if err != nil {
		return nil, err
	}
	acceptedReqs, err := s.expand(ctx, accepted, false)
	if err != nil {
		return nil, err
	}

	return &models.FriendRequestsOverview{
		IncomingReqs: incomingReqs,
		AcceptedReqs: acceptedReqs,
	}, nil
}

// GetOutgoingFriendRequests returns pending requests sent by userID.
func (s *FriendService) GetOutgoingFriendRequests(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRequestDetail, error) {
	outgoing, err := s.friendRepo.GetRequestsBySender(ctx, userID, models.RequestStatusPending)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, outgoing, false)
}

// expand replaces the sender (or recipient) id with that user's public
// profile. A reference to a missing user becomes null.
func (s *FriendService) expand(ctx context.Context, requests []models.FriendRequest, expandSender bool) ([]models.FriendRequestDetail, error) {
	details := make([]models.FriendRequestDetail, 0, len(requests))
	if len(requests) == 0 {
		return details, nil
	}

	ids := make([]primitive.ObjectID, 0, len(requests))
	for _, req := range requests {
		if expandSender {
			ids = append(ids, req.SenderID)
		} else {
			ids = append(ids, req.RecipientID)
		}
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	profiles := make(map[primitive.ObjectID]models.PublicUser, len(users))
	for i := range users {
		profiles[users[i].ID] = users[i].Public()
	}

	for _, req := range requests {
		detail := models.FriendRequestDetail{
			ID:         req.ID,
			Sender:     req.SenderID,
			Recipient:  req.RecipientID,
			Status:     req.Status,
			Seen:       req.Seen,
			RejectedAt: req.RejectedAt,
			CreatedAt:  req.CreatedAt,
			UpdatedAt:  req.UpdatedAt,
		}
		if expandSender {
			detail.Sender = profileOrNil(profiles, req.SenderID)
		} else {
			detail.Recipient = profileOrNil(profiles, req.RecipientID)
		}
		details = append(details, detail)
	}
	return details, nil
}

func profileOrNil(profiles map[primitive.ObjectID]models.PublicUser, id primitive.ObjectID) any {
	if p, ok := profiles[id]; ok {
		return p
	}
	return nil
}

// MarkAllSeen flags every pending, unseen request addressed to recipientID as seen.
func (s *FriendService) MarkAllSeen(ctx context.Context, recipientID primitive.ObjectID) error {
	modified, err := s.friendRepo.MarkSeen(ctx, recipientID)
	if err != nil {
		return err
	}

	s.invalidateCount(ctx, recipientID)
	metrics.FriendRequestEvents.WithLabelValues("seen").Add(float64(modified))
	return nil
}

// CountUnseen returns how many pending requests to recipientID are unseen.
func (s *FriendService) CountUnseen(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	key := recipientID.Hex()

	if s.countCache != nil {
		count, ok, err := s.countCache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.CountCacheLookups.WithLabelValues("error").Inc()
			logrus.WithError(err).Warn("Unseen count cache read failed")
		case ok:
			metrics.CountCacheLookups.WithLabelValues("hit").Inc()
			return count, nil
		default:
			metrics.CountCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	// The generation is read before the store so a concurrent invalidation
	// makes the fill below a no-op.
	var gen int64
	fill := false
	if s.countCache != nil {
		var err error
		gen, err = s.countCache.Generation(ctx, key)
		if err != nil {
			logrus.WithError(err).Warn("Unseen count generation read failed")
		} else {
			fill = true
		}
	}

	count, err := s.friendRepo.CountUnseen(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if fill {
		stored, err := s.countCache.Set(ctx, key, gen, count)
		switch {
		case err != nil:
			logrus.WithError(err).Warn("Unseen count cache write failed")
		case !stored:
			logrus.WithField("userID", key).Debug("Unseen count changed during fill, not cached")
		}
	}
	return count, nil
}

func (s *FriendService) invalidateCount(ctx context.Context, recipientID primitive.ObjectID) {
	if s.countCache == nil {
		return
	}
	if err := s.countCache.Invalidate(ctx, recipientID.Hex()); err != nil {
		logrus.WithError(err).WithField("userID", recipientID.Hex()).Warn("Unseen count cache invalidation failed")
	}
}
