package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

// SessionName is the cookie holding the logged-in username
const SessionName = "coinflip-session"

// respondJSON writes a JSON body. The API mirrors the game client's
// expectation of a 200 response carrying a success flag.
func respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// respondFailure writes a {success: false} body with a human-readable message
func respondFailure(w http.ResponseWriter, message string) {
	respondJSON(w, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// currentUsername returns the authenticated username from the session, or ""
func currentUsername(store *sessions.CookieStore, r *http.Request) string {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return ""
	}
	username, _ := session.Values["username"].(string)
	return username
}
