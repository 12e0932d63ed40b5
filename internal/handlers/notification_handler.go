package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Dias221467/Lingo_Connect/internal/metrics"
	"github.com/Dias221467/Lingo_Connect/internal/services"
	jwtutil "github.com/Dias221467/Lingo_Connect/pkg/jwt"
	"github.com/Dias221467/Lingo_Connect/pkg/logger"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NotificationHandler serves the unseen friend request counter.
type NotificationHandler struct {
	Service      *services.FriendService
	JWTSecret    string
	PollInterval time.Duration
}

// NewNotificationHandler initializes a NotificationHandler. A non-positive
// pollInterval falls back to two seconds.
func NewNotificationHandler(service *services.FriendService, jwtSecret string, pollInterval time.Duration) *NotificationHandler {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &NotificationHandler{Service: service, JWTSecret: jwtSecret, PollInterval: pollInterval}
}

// CountUnseenHandler returns how many pending incoming requests the caller has not seen.
// GET /users/friend-requests/count
func (h *NotificationHandler) CountUnseenHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	count, err := h.Service.CountUnseen(r.Context(), userID)
	if err != nil {
		writeError(w, r, "count unseen friend requests", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// MarkAllSeenHandler marks every pending incoming request of the caller as seen.
// PATCH /users/friend-requests/seen
func (h *NotificationHandler) MarkAllSeenHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.Service.MarkAllSeen(r.Context(), userID); err != nil {
		writeError(w, r, "mark friend requests seen", err)
		return
	}

	writeMessage(w, http.StatusOK, "All incoming friend requests marked as seen")
}

// CountStreamHandler upgrades to a websocket and pushes {"count": n} whenever
// the caller's unseen count changes. Browsers cannot set headers on a
// websocket handshake, so the token comes from the query string.
// GET /users/friend-requests/count/stream?token=...
func (h *NotificationHandler) CountStreamHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - No token provided")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("Count stream auth failed")
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - Invalid token")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized - Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.Log.WithError(err).Warn("Count stream upgrade failed")
		return
	}
	defer conn.Close()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	log := logger.Log.WithField("userID", claims.UserID)
	log.Info("Count stream connected")
	defer log.Info("Count stream disconnected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The client never sends anything; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	h.pushCounts(ctx, conn, userID, log)
}

func (h *NotificationHandler) pushCounts(ctx context.Context, conn *websocket.Conn, userID primitive.ObjectID, log *logrus.Entry) {
	ticker := time.NewTicker(h.PollInterval)
	defer ticker.Stop()

	last := int64(-1)
	for {
		count, err := h.Service.CountUnseen(ctx, userID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithError(err).Error("Count stream failed to read count")
		} else if count != last {
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(map[string]int64{"count": count}); err != nil {
				log.WithError(err).Debug("Count stream write failed")
				return
			}
			last = count
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
