// Package identity provides the user-existence lookup the filter performs
// before doing any work. The users table is owned by the marketplace's
// account system; this store only reads it.
package identity

import (
	"context"
	"database/sql"
	"fmt"
)

// Store looks up marketplace users in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore creates an identity store backed by the given database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Exists reports whether a user with the given id exists.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("identity: lookup %s: %w", userID, err)
	}
	return exists, nil
}
