package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/mkovalchuk/contacts-api/internal/config"
)

// Pool sizing for the API process
const (
	maxOpenConns = 25
	maxIdleConns = 5
)

// Connect opens the postgres pool, verifies the connection and wraps it
// with bun. Startup fails fast on an unreachable database.
func Connect(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)

	return NewBunDB(sqlDB), nil
}

// NewBunDB wraps an already open connection. Tests use it to run bun over a
// sqlmock connection.
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}
