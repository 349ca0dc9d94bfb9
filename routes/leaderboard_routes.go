package routes

import (
	"coinflip_server/controllers"
	"coinflip_server/services"

	"github.com/gorilla/mux"
)

// RegisterLeaderboardRoutes sets up the public leaderboard route
func RegisterLeaderboardRoutes(r *mux.Router, users *services.UserService) {
	controller := controllers.NewLeaderboardController(users)

	r.HandleFunc("/api/leaderboard", controller.GetLeaderboard).Methods("GET")
}
