package routes

import (
	"coinflip_server/controllers"
	"coinflip_server/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

// RegisterGameRoutes sets up single-player game routes under /api
func RegisterGameRoutes(r *mux.Router, users *services.UserService, store *sessions.CookieStore) {
	controller := controllers.NewGameController(users, store)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/flip", controller.Flip).Methods("POST")
	api.HandleFunc("/history", controller.History).Methods("GET")
}
