// Package session provides server-side session entities, flash message
// storage, and pluggable persistence with memory, Redis, and PostgreSQL
// stores.
package session
