/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the pricing engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Initialize SQLite store and seed the holiday table
  3. Assemble the pricing configuration from the catalog
  4. Build the orchestrator and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: pricing.db, env DATABASE_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/pricing.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - jobposting/catalog.go: The pricing catalog
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trm/pricing-engine/api"
	"github.com/trm/pricing-engine/jobposting"
	"github.com/trm/pricing-engine/pricing"
	"github.com/trm/pricing-engine/store/sqlite"
)

func main() {
	// .env is optional; flags override environment.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "pricing.db"), "SQLite database path")
	flag.Parse()

	logger := log.New(os.Stderr, "pricing: ", log.LstdFlags)

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SeedHolidays(ctx, jobposting.Holidays()); err != nil {
		logger.Printf("Warning: failed to seed holidays: %v", err)
	}

	// Assemble the pricing configuration. The holiday calendar is the
	// store, so administrators can extend the table without a deploy.
	cfg := jobposting.DefaultConfig()
	cfg.Holidays = store

	// The store backs all three repositories.
	orch, err := pricing.NewOrchestrator(cfg, store, store, store, logger)
	if err != nil {
		logger.Fatalf("Failed to build pricing engine: %v", err)
	}

	handler := api.NewHandler(store, orch, jobposting.PreviewScenarios())
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
