package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"coinflip_server/models"
	"coinflip_server/services"

	"github.com/gorilla/sessions"
)

// GameController handles the single-player coin flip and game history
type GameController struct {
	Users    *services.UserService
	Sessions *sessions.CookieStore
}

// NewGameController creates a new instance of GameController
func NewGameController(users *services.UserService, store *sessions.CookieStore) *GameController {
	return &GameController{Users: users, Sessions: store}
}

type flipRequest struct {
	Bet        int    `json:"bet"`
	Prediction string `json:"prediction"`
}

// Flip plays one single-player coin flip for the logged-in user
func (c *GameController) Flip(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(c.Sessions, r)
	if username == "" {
		respondFailure(w, "Not authenticated")
		return
	}

	var req flipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondFailure(w, "Invalid request payload")
		return
	}
	if !models.ValidCoinSide(req.Prediction) {
		respondFailure(w, services.ErrInvalidPrediction.Error())
		return
	}

	user, err := c.Users.GetUser(context.TODO(), username)
	if err != nil {
		log.Printf("flip: failed to fetch user %s: %v", username, err)
		respondFailure(w, "Failed to fetch user")
		return
	}
	if req.Bet <= 0 || req.Bet > user.TotalCoins {
		respondFailure(w, "Invalid bet amount")
		return
	}

	result := services.RandomCoin()
	won := models.CoinSide(req.Prediction) == result
	winAmount := req.Bet
	if !won {
		winAmount = -req.Bet
	}

	user.GamesPlayed++
	user.TotalCoins += winAmount
	if won {
		user.GamesWon++
		user.WinStreak++
		if user.WinStreak > user.BestWinStreak {
			user.BestWinStreak = user.WinStreak
		}
	} else {
		user.GamesLost++
		user.WinStreak = 0
	}

	xpAmount := services.XPFlipParticipate
	reason := "Coin flip played"
	if won {
		xpAmount = services.XPFlipWin
		reason = "Coin flip win"
	}
	xp := services.AwardXP(user, xpAmount, reason)

	if err := c.Users.SaveUserStats(context.TODO(), user); err != nil {
		log.Printf("flip: failed to save stats for %s: %v", username, err)
		respondFailure(w, "Failed to save game")
		return
	}
	if err := c.Users.AddGameHistory(context.TODO(), models.GameHistoryEntry{
		Username:     username,
		GameType:     "single",
		BetAmount:    req.Bet,
		Prediction:   req.Prediction,
		CoinResult:   string(result),
		Won:          won,
		WinAmount:    winAmount,
		BalanceAfter: user.TotalCoins,
		XPGained:     xp.XPGained,
	}); err != nil {
		log.Printf("flip: failed to record history for %s: %v", username, err)
	}

	level := services.LevelInfoFor(user.TotalXP)
	respondJSON(w, map[string]interface{}{
		"success":    true,
		"result":     result,
		"won":        won,
		"winAmount":  winAmount,
		"newBalance": user.TotalCoins,
		"stats":      user,
		"xpReward":   xp,
		"levelInfo":  level,
		"rankInfo":   services.RankForLevel(level.CurrentLevel),
	})
}

// History returns the logged-in user's most recent games
func (c *GameController) History(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(c.Sessions, r)
	if username == "" {
		respondFailure(w, "Not authenticated")
		return
	}

	history, err := c.Users.GetGameHistory(context.TODO(), username, 50)
	if err != nil {
		log.Printf("failed to fetch history for %s: %v", username, err)
		respondFailure(w, "Failed to fetch history")
		return
	}

	respondJSON(w, map[string]interface{}{
		"success": true,
		"history": history,
	})
}
