// Command create_indexes creates the cv_profiles lookup indexes: the id index
// and the trigram indexes on the candidate full name.
//
// Usage:
//
//	go run cmd/tools/create_indexes/main.go
//
// Reads DATABASE_URL or the DB_* variables, also from a .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jonathan/cvfeed/internal/config"
	"github.com/jonathan/cvfeed/internal/db"
	"github.com/jonathan/cvfeed/internal/observability"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.NewViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	database, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	applied, err := database.CreateIndexes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		database.Close()
		os.Exit(1)
	}

	observability.NewPrinter(os.Stdout).PrintIndexes(applied)
}
