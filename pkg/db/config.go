package db

import "time"

// Config holds PostgreSQL connection pool settings.
type Config struct {
	ConnectionString  string
	MaxOpenConns      int32
	MinConns          int32
	MaxConnIdleTime   time.Duration
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
	RetryAttempts     int
	RetryInterval     time.Duration
}

// DefaultConfig returns sensible pool defaults for a web application.
func DefaultConfig(connString string) Config {
	return Config{
		ConnectionString:  connString,
		MaxOpenConns:      10,
		MinConns:          2,
		MaxConnIdleTime:   5 * time.Minute,
		MaxConnLifetime:   time.Hour,
		HealthCheckPeriod: time.Minute,
		RetryAttempts:     3,
		RetryInterval:     time.Second,
	}
}
