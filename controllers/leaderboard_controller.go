package controllers

import (
	"context"
	"log"
	"net/http"

	"coinflip_server/services"
)

// LeaderboardController serves the public leaderboard
type LeaderboardController struct {
	Users *services.UserService
}

// NewLeaderboardController creates a new instance of LeaderboardController
func NewLeaderboardController(users *services.UserService) *LeaderboardController {
	return &LeaderboardController{Users: users}
}

// GetLeaderboard returns the top players ordered by coin balance
func (c *LeaderboardController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := c.Users.GetLeaderboard(context.TODO(), 10)
	if err != nil {
		log.Printf("failed to load leaderboard: %v", err)
		respondFailure(w, "Failed to load leaderboard")
		return
	}

	respondJSON(w, map[string]interface{}{
		"success":     true,
		"leaderboard": leaderboard,
	})
}
