package handlers

import (
	"net/http"

	"github.com/Dias221467/Lingo_Connect/internal/services"
	"github.com/Dias221467/Lingo_Connect/pkg/logger"
	"github.com/Dias221467/Lingo_Connect/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// currentUserID returns the authenticated user's id. It writes a 401 and
// returns false when the request carries no usable identity.
func currentUserID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - No token provided")
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logger.Log.Warnf("Token carries invalid user ID %q", claims.UserID)
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - Invalid token")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// pathID parses the {id} path variable. An unparseable id cannot name an
// existing entity, so it is answered with 404 and notFoundMsg.
func pathID(w http.ResponseWriter, r *http.Request, notFoundMsg string) (primitive.ObjectID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		logger.Log.Warnf("Invalid ID in path: %q", raw)
		writeMessage(w, http.StatusNotFound, notFoundMsg)
		return primitive.NilObjectID, false
	}
	return id, true
}

// SendFriendRequestHandler allows a user to send a friend request.
// POST /users/friend-request/{id}
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	recipientID, ok := pathID(w, r, "Recipient not found")
	if !ok {
		return
	}

	request, err := h.Service.SendFriendRequest(r.Context(), senderID, recipientID)
	if err != nil {
		writeError(w, r, "send friend request", err)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// AcceptFriendRequestHandler accepts an incoming friend request.
// PUT /users/friend-request/{id}/accept
func (h *FriendHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "Friend request not found")
	if !ok {
		return
	}

	if err := h.Service.AcceptFriendRequest(r.Context(), requestID, userID); err != nil {
		writeError(w, r, "accept friend request", err)
		return
	}

	writeMessage(w, http.StatusOK, "Friend request accepted")
}

// RejectFriendRequestHandler rejects an incoming friend request.
// PATCH /users/friend-requests/reject/{id}
func (h *FriendHandler) RejectFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "Friend request not found")
	if !ok {
		return
	}

	if err := h.Service.RejectFriendRequest(r.Context(), requestID, userID); err != nil {
		writeError(w, r, "reject friend request", err)
		return
	}

	writeMessage(w, http.StatusOK, "Friend request rejected")
}

// GetFriendRequestsHandler shows incoming pending requests and the user's accepted outgoing ones.
// GET /users/friend-requests
func (h *FriendHandler) GetFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	overview, err := h.Service.GetFriendRequests(r.Context(), userID)
	if err != nil {
		writeError(w, r, "get friend requests", err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// GetOutgoingFriendRequestsHandler lists pending requests the user has sent.
// GET /users/outgoing-friend-requests
func (h *FriendHandler) GetOutgoingFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	outgoing, err := h.Service.GetOutgoingFriendRequests(r.Context(), userID)
	if err != nil {
		writeError(w, r, "get outgoing friend requests", err)
		return
	}

	writeJSON(w, http.StatusOK, outgoing)
}
