package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the language exchange network.
type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FullName         string               `bson:"full_name" json:"fullName"`
	Email            string               `bson:"email" json:"email"`
	HashedPassword   string               `bson:"password" json:"-"`
	Bio              string               `bson:"bio" json:"bio"`
	ProfilePic       string               `bson:"profile_pic" json:"profilePic"`
	NativeLanguage   string               `bson:"native_language" json:"nativeLanguage"`
	LearningLanguage string               `bson:"learning_language" json:"learningLanguage"`
	Location         string               `bson:"location" json:"location"`
	IsOnboarded      bool                 `bson:"is_onboarded" json:"isOnboarded"`
	Friends          []primitive.ObjectID `bson:"friends" json:"friends"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

// PublicUser is the profile subset other users are allowed to see.
type PublicUser struct {
	ID               primitive.ObjectID `json:"_id"`
	FullName         string             `json:"fullName"`
	ProfilePic       string             `json:"profilePic"`
	NativeLanguage   string             `json:"nativeLanguage"`
	LearningLanguage string             `json:"learningLanguage"`
}

// Public projects the user onto its publicly visible fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
	}
}

// HasFriend reports whether id is in the user's friend set.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// OnboardingProfile carries the fields a user fills in to finish onboarding.
type OnboardingProfile struct {
	FullName         string `json:"fullName" validate:"required"`
	Bio              string `json:"bio" validate:"required"`
	NativeLanguage   string `json:"nativeLanguage" validate:"required"`
	LearningLanguage string `json:"learningLanguage" validate:"required"`
	Location         string `json:"location" validate:"required"`
	ProfilePic       string `json:"profilePic,omitempty" validate:"omitempty,url"`
}
