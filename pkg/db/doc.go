// Package db provides PostgreSQL connection pooling with startup retry
// and goose-based schema migrations.
package db
