package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/Dias221467/Lingo_Connect/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SignupInput is the payload for creating an account.
type SignupInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// UserService encapsulates account, onboarding and friend list logic.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
	}
}

// Signup registers a new user with a hashed password and a random avatar.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := validate.Struct(input); err != nil {
		switch {
		case len(missingFields(err)) > 0:
			return nil, newServiceError(ErrInvalidOperation, "All fields are required")
		case failedTag(err, "Password", "min"):
			return nil, newServiceError(ErrInvalidOperation, "Password must be at least 6 characters")
		default:
			return nil, newServiceError(ErrInvalidOperation, "Invalid email format")
		}
	}

	existing, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		logrus.WithField("email", input.Email).Warn("Email already in use")
		return nil, newServiceError(ErrConflict, "Email already exists, please use a different one")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		FullName:       input.FullName,
		Email:          input.Email,
		HashedPassword: string(hashedPwd),
		ProfilePic:     fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1),
		Friends:        []primitive.ObjectID{},
	}

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, newServiceError(ErrConflict, "Email already exists, please use a different one")
	}
	if err != nil {
		return nil, err
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User signed up")
	return created, nil
}

// Login verifies the email and password and returns the user if they match.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, newServiceError(ErrInvalidOperation, "All fields are required")
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newServiceError(ErrUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, newServiceError(ErrUnauthorized, "Invalid email or password")
	}

	return user, nil
}

// Onboard completes the user's profile and marks them onboarded.
func (s *UserService) Onboard(ctx context.Context, userID primitive.ObjectID, profile models.OnboardingProfile) (*models.User, error) {
	if err := validate.Struct(profile); err != nil {
		if missing := missingFields(err); len(missing) > 0 {
			return nil, newServiceError(ErrInvalidOperation, "All fields are required, missing: "+strings.Join(missing, ", "))
		}
		return nil, newServiceError(ErrInvalidOperation, "Invalid profile picture URL")
	}

	fields := bson.M{
		"full_name":         profile.FullName,
		"bio":               profile.Bio,
		"native_language":   profile.NativeLanguage,
		"learning_language": profile.LearningLanguage,
		"location":          profile.Location,
		"is_onboarded":      true,
	}
	if profile.ProfilePic != "" {
		fields["profile_pic"] = profile.ProfilePic
	}

	user, err := s.repo.UpdateProfile(ctx, userID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newServiceError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newServiceError(ErrNotFound, "User not found")
	}
	return user, err
}

// GetMyFriends returns the public profiles of userID's friends.
func (s *UserService) GetMyFriends(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(user.Friends) == 0 {
		return []models.PublicUser{}, nil
	}

	users, err := s.repo.GetUsersByIDs(ctx, user.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	friends := make([]models.PublicUser, 0, len(users))
	for i := range users {
		friends = append(friends, users[i].Public())
	}
	return friends, nil
}

// GetRecommendedUsers returns onboarded users who are neither userID nor one of its friends.
// Users with a pending request to or from userID are still included.
func (s *UserService) GetRecommendedUsers(ctx context.Context, userID primitive.ObjectID) ([]models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindRecommended(ctx, userID, user.Friends)
}
