package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"coinflip_server/services"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

// AuthController handles account registration, login and session state
type AuthController struct {
	Users    *services.UserService
	Sessions *sessions.CookieStore
}

// NewAuthController creates a new instance of AuthController
func NewAuthController(users *services.UserService, store *sessions.CookieStore) *AuthController {
	return &AuthController{Users: users, Sessions: store}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account with the starting balance
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondFailure(w, "Invalid request payload")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		respondFailure(w, "Username and password required")
		return
	}

	if _, err := c.Users.GetUser(context.TODO(), creds.Username); err == nil {
		respondFailure(w, "Username already exists")
		return
	} else if !errors.Is(err, services.ErrUserNotFound) {
		log.Printf("register lookup failed for %s: %v", creds.Username, err)
		respondFailure(w, "Registration failed, try again")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("password hashing failed: %v", err)
		respondFailure(w, "Registration failed, try again")
		return
	}

	if _, err := c.Users.CreateUser(context.TODO(), creds.Username, string(hash)); err != nil {
		log.Printf("failed to create user %s: %v", creds.Username, err)
		respondFailure(w, "Registration failed, try again")
		return
	}

	c.saveSession(w, r, creds.Username)
	respondJSON(w, map[string]interface{}{
		"success": true,
		"message": "Account created successfully",
	})
}

// Login verifies credentials and opens a session
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondFailure(w, "Invalid request payload")
		return
	}

	user, err := c.Users.GetUser(context.TODO(), creds.Username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		respondFailure(w, "Invalid username or password")
		return
	}

	c.saveSession(w, r, user.Username)
	respondJSON(w, map[string]interface{}{
		"success": true,
		"message": "Login successful",
	})
}

// Logout clears the session
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := c.Sessions.Get(r, SessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		log.Printf("failed to clear session: %v", err)
	}
	respondJSON(w, map[string]interface{}{"success": true})
}

// GetUser returns the logged-in user's record with level and rank info
func (c *AuthController) GetUser(w http.ResponseWriter, r *http.Request) {
	username := currentUsername(c.Sessions, r)
	if username == "" {
		respondFailure(w, "Not authenticated")
		return
	}

	user, err := c.Users.GetUser(context.TODO(), username)
	if err != nil {
		log.Printf("failed to fetch user %s: %v", username, err)
		respondFailure(w, "Failed to fetch user")
		return
	}

	level := services.LevelInfoFor(user.TotalXP)
	respondJSON(w, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"username":  user.Username,
			"stats":     user,
			"levelInfo": level,
			"rankInfo":  services.RankForLevel(level.CurrentLevel),
		},
	})
}

func (c *AuthController) saveSession(w http.ResponseWriter, r *http.Request, username string) {
	session, _ := c.Sessions.Get(r, SessionName)
	session.Values["username"] = username
	if err := session.Save(r, w); err != nil {
		log.Printf("failed to save session for %s: %v", username, err)
	}
}
