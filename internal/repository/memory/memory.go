// Package memory provides in-memory versions of the user and friend request
// stores with the same observable behaviour as the MongoDB repositories.
// Tests use it in place of a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/Dias221467/Lingo_Connect/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendRequests is an in-memory friend request store.
type FriendRequests struct {
	mu       sync.Mutex
	requests map[primitive.ObjectID]models.FriendRequest
	// Now stamps created_at and updated_at. Defaults to time.Now.
	Now func() time.Time
}

func NewFriendRequests() *FriendRequests {
	return &FriendRequests{
		requests: make(map[primitive.ObjectID]models.FriendRequest),
		Now:      time.Now,
	}
}

func (s *FriendRequests) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	req.ID = primitive.NewObjectID()
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = *req

	out := *req
	return &out, nil
}

func (s *FriendRequests) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("failed to find friend request: %w", repository.ErrNotFound)
	}
	return &req, nil
}

func (s *FriendRequests) FindBetween(ctx context.Context, a, b primitive.ObjectID, status string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, req := range s.requests {
		if req.Status != status {
			continue
		}
		if (req.SenderID == a && req.RecipientID == b) || (req.SenderID == b && req.RecipientID == a) {
			out := req
			return &out, nil
		}
	}
	return nil, nil
}

func (s *FriendRequests) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, rejectedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil
	}
	req.Status = status
	req.UpdatedAt = s.Now()
	if rejectedAt != nil {
		t := *rejectedAt
		req.RejectedAt = &t
	}
	s.requests[id] = req
	return nil
}

func (s *FriendRequests) DeleteRequest(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.requests, id)
	return nil
}

func (s *FriendRequests) GetRequestsByRecipient(ctx context.Context, recipientID primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return s.filter(func(req models.FriendRequest) bool {
		return req.RecipientID == recipientID && req.Status == status
	}), nil
}

func (s *FriendRequests) GetRequestsBySender(ctx context.Context, senderID primitive.ObjectID, status string) ([]models.FriendRequest, error) {
	return s.filter(func(req models.FriendRequest) bool {
		return req.SenderID == senderID && req.Status == status
	}), nil
}

// filter returns matching requests newest first.
func (s *FriendRequests) filter(match func(models.FriendRequest) bool) []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.FriendRequest{}
	for _, req := range s.requests {
		if match(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *FriendRequests) MarkSeen(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for id, req := range s.requests {
		if req.RecipientID == recipientID && req.Status == models.RequestStatusPending && !req.Seen {
			req.Seen = true
			req.UpdatedAt = s.Now()
			s.requests[id] = req
			modified++
		}
	}
	return modified, nil
}

func (s *FriendRequests) CountUnseen(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, req := range s.requests {
		if req.RecipientID == recipientID && req.Status == models.RequestStatusPending && !req.Seen {
			count++
		}
	}
	return count, nil
}

// Len returns the number of stored requests.
func (s *FriendRequests) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Users is an in-memory user store.
type Users struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	order []primitive.ObjectID
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]models.User)}
}

// Add stores user as is, assigning an id when it has none.
func (s *Users) Add(user models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if _, exists := s.users[user.ID]; !exists {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = user
	return user
}

func (s *Users) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == user.Email {
			s.mu.Unlock()
			return nil, fmt.Errorf("failed to insert user: %w", repository.ErrDuplicate)
		}
	}
	s.mu.Unlock()

	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := s.Add(*user)
	user.ID = stored.ID
	user.Friends = stored.Friends
	return user, nil
}

func (s *Users) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			out := clone(u)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by email: %w", repository.ErrNotFound)
}

func (s *Users) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id: %w", repository.ErrNotFound)
	}
	out := clone(u)
	return &out, nil
}

// UpdateProfile supports the fields the onboarding flow sets.
func (s *Users) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	s.mu.Lock()
	u, ok := s.users[id]
	if ok {
		for key, value := range fields {
			switch key {
			case "full_name":
				u.FullName = value.(string)
			case "bio":
				u.Bio = value.(string)
			case "native_language":
				u.NativeLanguage = value.(string)
			case "learning_language":
				u.LearningLanguage = value.(string)
			case "location":
				u.Location = value.(string)
			case "profile_pic":
				u.ProfilePic = value.(string)
			case "is_onboarded":
				u.IsOnboarded = value.(bool)
			}
		}
		u.UpdatedAt = time.Now()
		s.users[id] = u
	}
	s.mu.Unlock()

	return s.GetUserByID(ctx, id)
}

func (s *Users) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	if u.HasFriend(friendID) {
		return nil
	}
	u.Friends = append(append([]primitive.ObjectID{}, u.Friends...), friendID)
	s.users[userID] = u
	return nil
}

func (s *Users) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := []models.User{}
	for _, id := range s.order {
		if want[id] {
			out = append(out, clone(s.users[id]))
		}
	}
	return out, nil
}

func (s *Users) FindRecommended(ctx context.Context, userID primitive.ObjectID, exclude []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	excluded := make(map[primitive.ObjectID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	out := []models.User{}
	for _, id := range s.order {
		u := s.users[id]
		if id == userID || excluded[id] || !u.IsOnboarded {
			continue
		}
		out = append(out, clone(u))
	}
	return out, nil
}

func clone(u models.User) models.User {
	u.Friends = append([]primitive.ObjectID{}, u.Friends...)
	return u
}
