package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/repository/postgres"
	"github.com/tradepulse/backend/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Connected to database successfully")

	if err := postgres.Migrate(context.Background(), db, migrations.GetFS()); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migrations applied")
}
