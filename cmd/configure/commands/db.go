package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/smart-todo/smart-todo-list/internal/config"
	"github.com/smart-todo/smart-todo-list/internal/database"
)

// openDB loads configuration and connects to the database. The returned
// func closes the connection and reports close errors on stderr.
func openDB() (*config.Config, *database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}
	return cfg, db, closeFn, nil
}

func parseUUIDArg(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}
