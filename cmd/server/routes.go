package main

import (
	"net/http"

	"github.com/Dias221467/Lingo_Connect/internal/handlers"
	"github.com/Dias221467/Lingo_Connect/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type routeHandlers struct {
	user         *handlers.UserHandler
	friend       *handlers.FriendHandler
	notification *handlers.NotificationHandler
}

func newRouter(jwtSecret string, h routeHandlers) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong 🏓"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth routes
	authRoutes := router.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/signup", h.user.SignupHandler).Methods("POST")
	authRoutes.HandleFunc("/login", h.user.LoginHandler).Methods("POST")
	authRoutes.HandleFunc("/logout", h.user.LogoutHandler).Methods("POST")

	protectedAuthRoutes := router.PathPrefix("/auth").Subrouter()
	protectedAuthRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	protectedAuthRoutes.HandleFunc("/onboarding", h.user.OnboardingHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/me", h.user.MeHandler).Methods("GET")

	// The stream authenticates from the query string, so it sits outside the auth gate.
	router.HandleFunc("/users/friend-requests/count/stream", h.notification.CountStreamHandler).Methods("GET")

	// Protected user routes
	userRoutes := router.PathPrefix("/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(jwtSecret))
	userRoutes.HandleFunc("", h.user.GetRecommendedUsersHandler).Methods("GET")
	userRoutes.HandleFunc("/friends", h.user.GetMyFriendsHandler).Methods("GET")

	userRoutes.HandleFunc("/friend-request/{id}", h.friend.SendFriendRequestHandler).Methods("POST")
	userRoutes.HandleFunc("/friend-request/{id}/accept", h.friend.AcceptFriendRequestHandler).Methods("PUT")
	userRoutes.HandleFunc("/friend-requests/reject/{id}", h.friend.RejectFriendRequestHandler).Methods("PATCH")
	userRoutes.HandleFunc("/friend-requests", h.friend.GetFriendRequestsHandler).Methods("GET")
	userRoutes.HandleFunc("/outgoing-friend-requests", h.friend.GetOutgoingFriendRequestsHandler).Methods("GET")

	userRoutes.HandleFunc("/friend-requests/seen", h.notification.MarkAllSeenHandler).Methods("PATCH")
	userRoutes.HandleFunc("/friend-requests/count", h.notification.CountUnseenHandler).Methods("GET")

	// Logging wraps recovery so recovered panics are logged as 500s.
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)

	return router
}

// newCORS lets the SPA origins call the API with credentials and send or
// read the request id header.
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
}
