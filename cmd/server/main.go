/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the staffing allocation engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Load configuration (defaults, config.toml, env overrides)
  3. Open the scenario database
  4. Create the session manager with the default-table bootstrap
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  TOML configuration file path (default: config.toml)
  -port    HTTP server port (overrides config when set)
  -db      Scenario database path (overrides config when set)
           Use ":memory:" for an in-memory database
  -data    Default allocation CSV path (overrides config when set)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the scenario database
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/scenarios.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration loading
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Scenario persistence
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
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/staffing-engine/api"
	"github.com/warp/staffing-engine/config"
	"github.com/warp/staffing-engine/metrics"
	"github.com/warp/staffing-engine/session"
	"github.com/warp/staffing-engine/store/sqlite"
)

func main() {
	// .env is optional; flags and the environment win over it.
	godotenv.Load()

	configPath := flag.String("config", "config.toml", "TOML configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "Scenario database path (overrides config)")
	dataPath := flag.String("data", "", "Default allocation CSV path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.ScenarioDB = *dbPath
	}
	if *dataPath != "" {
		cfg.DataFile = *dataPath
	}

	// Scenario persistence
	store, err := sqlite.New(cfg.ScenarioDB)
	if err != nil {
		log.Fatalf("Failed to open scenario database: %v", err)
	}
	defer store.Close()

	// Engine settings from configuration
	settings := session.Settings{
		StandardCapacity: cfg.Staffing.Capacity(),
		RateCard:         metrics.DefaultRateCard().Merge(cfg.Staffing.RateOverrides()),
	}

	sessions := session.NewManager(settings, session.FileBootstrap(cfg.DataFile))
	handler := api.NewHandler(sessions, store, cfg.Staffing.Groups)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
