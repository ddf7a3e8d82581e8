package db

import "errors"

// Database errors.
var (
	ErrFailedToParseConfig    = errors.New("db: failed to parse connection config")
	ErrFailedToOpenConnection = errors.New("db: failed to open connection")
	ErrSetDialect             = errors.New("db: failed to set migration dialect")
	ErrApplyMigrations        = errors.New("db: failed to apply migrations")
)
