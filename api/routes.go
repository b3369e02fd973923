package api

import (
	"github.com/gorilla/mux"
	"github.com/pawferry/pawferry/internal/auth"
	"github.com/pawferry/pawferry/internal/config"
	"github.com/pawferry/pawferry/internal/db"
	"github.com/pawferry/pawferry/internal/repository/sqlite"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, db *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(db)

	issuer := auth.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessDuration, cfg.RefreshDuration)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, issuer)
	petsHandler := NewPetsHandler(repo)
	bookingsHandler := NewBookingsHandler(repo, repo, repo, repo)
	pilotHandler := NewPilotHandler(repo, repo)
	adminHandler := NewAdminHandler(repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(AuthMiddleware(issuer))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	// Pet endpoints
	apiV1.HandleFunc("/pets", petsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/pets", petsHandler.List).Methods("GET")
	apiV1.HandleFunc("/pets/{id}", petsHandler.Delete).Methods("DELETE")

	// Booking endpoints (owner side)
	apiV1.HandleFunc("/bookings", bookingsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/bookings", bookingsHandler.List).Methods("GET")
	apiV1.HandleFunc("/bookings/{id}", bookingsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/bookings/{id}/cancel", bookingsHandler.Cancel).Methods("PATCH")
	apiV1.HandleFunc("/bookings/{id}/messages", bookingsHandler.CreateMessage).Methods("POST")
	apiV1.HandleFunc("/bookings/{id}/messages", bookingsHandler.ListMessages).Methods("GET")
	apiV1.HandleFunc("/bookings/{id}/tracking", bookingsHandler.GetTracking).Methods("GET")

	// Pilot endpoints
	pilotV1 := apiV1.PathPrefix("/pilot").Subrouter()
	pilotV1.Use(RequirePilot)
	pilotV1.HandleFunc("/bookings/open", pilotHandler.ListOpen).Methods("GET")
	pilotV1.HandleFunc("/bookings/{id}/accept", pilotHandler.Accept).Methods("PATCH")
	pilotV1.HandleFunc("/bookings/{id}/status", pilotHandler.Advance).Methods("PATCH")
	pilotV1.HandleFunc("/bookings/{id}/tracking", pilotHandler.Ping).Methods("POST")

	// Admin endpoints
	adminV1 := apiV1.PathPrefix("/admin").Subrouter()
	adminV1.Use(RequireAdmin)
	adminV1.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adminV1.HandleFunc("/users/{id}/deactivate", adminHandler.DeactivateUser).Methods("PATCH")

	return r
}
