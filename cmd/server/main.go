package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/omega-realm/admin-api/internal/database"
	"github.com/omega-realm/admin-api/internal/handlers"
	"github.com/omega-realm/admin-api/internal/middleware"
	"github.com/omega-realm/admin-api/internal/repository"
)

func main() {
	// Load configuration from environment
	if err := godotenv.Load(); err != nil {
		log.Println("[API] No .env file found, using process environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		log.Fatal("[API] API_KEY is required")
	}
	apiKeyHeader := os.Getenv("API_KEY_HEADER")
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}

	// Connect to the login and game databases
	log.Println("[API] Initializing database connections...")
	loginDB, err := database.NewConnection(database.LoadConfigFromEnv("LOGIN_DB"))
	if err != nil {
		log.Fatalf("[API] Failed to connect to login database: %v", err)
	}
	defer loginDB.Close()

	gameDB, err := database.NewConnection(database.LoadConfigFromEnv("GAME_DB"))
	if err != nil {
		log.Fatalf("[API] Failed to connect to game database: %v", err)
	}
	defer gameDB.Close()

	log.Println("[API] Databases connected successfully")

	// Initialize repositories and handlers
	accountsHandler := handlers.NewAccountsHandler(repository.NewAccounts(loginDB))
	charactersHandler := handlers.NewCharactersHandler(repository.NewCharacters(gameDB))
	statsHandler := handlers.NewStatsHandler()

	// Setup HTTP routes
	api := http.NewServeMux()

	// Account routes (login database)
	api.HandleFunc("POST /api/login/account/register", accountsHandler.Register)
	api.HandleFunc("PUT /api/login/account/change-password", accountsHandler.ChangePassword)
	api.HandleFunc("GET /api/login/account/list", accountsHandler.List)
	api.HandleFunc("GET /api/login/account/{login}", accountsHandler.Get)
	api.HandleFunc("GET /api/login/account/{login}/history", accountsHandler.History)
	api.HandleFunc("DELETE /api/login/account/{login}", accountsHandler.Delete)
	api.HandleFunc("POST /api/login/account/{login}/ban", accountsHandler.Ban)
	api.HandleFunc("POST /api/login/account/{login}/unban", accountsHandler.Unban)

	// Character routes (game database)
	api.HandleFunc("GET /api/game/characters/list", charactersHandler.List)
	api.HandleFunc("GET /api/game/characters/stats", charactersHandler.Stats)
	api.HandleFunc("GET /api/game/characters/account/{accountName}", charactersHandler.ListByAccount)
	api.HandleFunc("GET /api/game/characters/{charName}/exists", charactersHandler.Exists)
	api.HandleFunc("GET /api/game/characters/{charId}", charactersHandler.Get)

	// Telemetry
	api.HandleFunc("GET /api/server-stats", statsHandler.ServerStats)

	mux := http.NewServeMux()

	// Health check stays open
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Everything under /api/ requires the API key
	mux.Handle("/api/", middleware.RequireAPIKey(apiKeyHeader, apiKey, api))

	// Start server
	log.Printf("[API] Starting server on port %s...", port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("[API] Server failed: %v", err)
	case sig := <-stop:
		log.Printf("[API] Received %s, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[API] Shutdown failed: %v", err)
	}
	log.Println("[API] Server stopped")
}
