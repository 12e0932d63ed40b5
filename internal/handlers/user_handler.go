package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/config"
	"github.com/Dias221467/Lingo_Connect/internal/models"
	"github.com/Dias221467/Lingo_Connect/internal/services"
	jwtutil "github.com/Dias221467/Lingo_Connect/pkg/jwt"
	"github.com/Dias221467/Lingo_Connect/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles account, onboarding and friend list requests.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// SignupHandler creates an account and logs the new user in.
// POST /auth/signup
func (h *UserHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var input services.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.WithError(err).Warn("Failed to decode signup request")
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Signup(r.Context(), input)
	if err != nil {
		writeError(w, r, "signup", err)
		return
	}

	token, ok := h.issueToken(w, r, user)
	if !ok {
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// LoginHandler authenticates a user and sets the session cookie.
// POST /auth/login
func (h *UserHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Login(r.Context(), credentials.Email, credentials.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}

	token, ok := h.issueToken(w, r, user)
	if !ok {
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// LogoutHandler clears the session cookie.
// POST /auth/logout
func (h *UserHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Config.IsProduction(),
	})
	writeMessage(w, http.StatusOK, "Logout successful")
}

// OnboardingHandler completes the authenticated user's profile.
// POST /auth/onboarding
func (h *UserHandler) OnboardingHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var profile models.OnboardingProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.WithError(err).Warn("Failed to decode onboarding request")
		writeMessage(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Onboard(r.Context(), userID, profile)
	if err != nil {
		writeError(w, r, "onboarding", err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User onboarded")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// MeHandler returns the authenticated user.
// GET /auth/me
func (h *UserHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, "me", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

// GetRecommendedUsersHandler lists onboarded users the caller is not yet friends with.
// GET /users
func (h *UserHandler) GetRecommendedUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	users, err := h.Service.GetRecommendedUsers(r.Context(), userID)
	if err != nil {
		writeError(w, r, "get recommended users", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetMyFriendsHandler returns the caller's friends.
// GET /users/friends
func (h *UserHandler) GetMyFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	friends, err := h.Service.GetMyFriends(r.Context(), userID)
	if err != nil {
		writeError(w, r, "get friends", err)
		return
	}

	writeJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) issueToken(w http.ResponseWriter, r *http.Request, user *models.User) (string, bool) {
	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		writeError(w, r, "generate token", err)
		return "", false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Config.TokenExpiry.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.Config.IsProduction(),
	})
	return token, true
}
