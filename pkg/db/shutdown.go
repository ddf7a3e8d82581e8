package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Shutdown returns a hook that closes the connection pool.
//
// Example:
//
//	app.Run(":8080", waypoint.ShutdownHook(db.Shutdown(pool)))
func Shutdown(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		pool.Close()
		return nil
	}
}
