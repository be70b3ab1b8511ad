package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed schema.sql
var schema string

func New(connStr string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(min(5, maxOpenConns))
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Migrate creates the tables the settlement and reservation jobs read and write.
// Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}
