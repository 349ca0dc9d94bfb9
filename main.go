package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"coinflip_server/routes"
	"coinflip_server/services"
	"coinflip_server/socket"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize DynamoDB client and services
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	userService := &services.UserService{Dynamo: dynamoService}
	log.Println("DynamoDB client initialized.")

	// Game services
	notifier := &services.Notifier{}
	registry := services.NewPlayerRegistry()
	matchService := services.NewMatchService(registry, userService, notifier)
	lobbyService := services.NewLobbyService(registry, matchService, notifier)

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "bobbys-coin-flip-secret-key"
	}
	sessionStore := sessions.NewCookieStore([]byte(sessionSecret))

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Bobby's Coin Flip")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register REST routes
	routes.RegisterAuthRoutes(r, userService, sessionStore)
	routes.RegisterGameRoutes(r, userService, sessionStore)
	routes.RegisterLeaderboardRoutes(r, userService)

	// Mount the multiplayer socket server
	socketServer := socket.NewSocketServer(&socket.GameSockets{
		Registry: registry,
		Lobby:    lobbyService,
		Matches:  matchService,
		Users:    userService,
		Notifier: notifier,
	})
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	r.PathPrefix("/socket.io/").Handler(socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
