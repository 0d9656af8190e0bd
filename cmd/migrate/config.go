package main

import (
	"os"

	"booksvc/internal/config"
)

func loadEnvFiles() {
	// Do not override environment provided by the runtime (e.g. Docker).
	config.LoadEnvFiles()
}

func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return "db/migrations"
}
