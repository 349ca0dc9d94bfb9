package routes

import (
	"coinflip_server/controllers"
	"coinflip_server/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

// RegisterAuthRoutes sets up account and session routes under /api
func RegisterAuthRoutes(r *mux.Router, users *services.UserService, store *sessions.CookieStore) {
	controller := controllers.NewAuthController(users, store)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", controller.Register).Methods("POST")
	api.HandleFunc("/login", controller.Login).Methods("POST")
	api.HandleFunc("/logout", controller.Logout).Methods("POST")
	api.HandleFunc("/user", controller.GetUser).Methods("GET")
}
