// Package main runs the order management API server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bod9dzys/order-api-mvp/internal/app/runtime"
	"github.com/bod9dzys/order-api-mvp/internal/config"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (defaults to config.yaml)")
	migrateOnly := flag.Bool("migrate", false, "Apply database migrations and exit")
	envFile := flag.String("env-file", ".env", "Path to an optional env file")
	flag.Parse()

	// Load the env file before config so DATABASE_URL and SECRET_KEY from
	// .env are visible. A missing file is not an error.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("env file %s: %v", *envFile, err)
	}

	if *configPath == "" {
		*configPath = os.Getenv("CONFIG_PATH")
	}

	cfg, err := config.LoadFromPath(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := runtime.NewApplicationWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialise application: %v", err)
	}

	if *migrateOnly {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := application.Migrate(ctx); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations applied")
		if err := application.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if err := application.Shutdown(context.Background()); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
