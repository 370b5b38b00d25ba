// Package ledger provides PostgreSQL-backed storage for contact-sharing
// violations: one immutable record per blocked message, a strictly
// increasing per-user strike ordinal, and the derived suspension
// predicate (threshold strikes within a rolling window).
//
// Suspension is never stored as a flag. It is computed from the violation
// rows on every check, with an optional Redis cache in front whose TTL
// matches the moment the derived answer would change. That keeps a single
// source of truth: the rows.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Config holds the suspension policy.
type Config struct {
	// StrikeThreshold is the number of in-window strikes that suspends a
	// user.
	StrikeThreshold int

	// StrikeWindow is the trailing window in which strikes count toward
	// the threshold. Older strikes remain in the audit trail but no
	// longer suspend.
	StrikeWindow time.Duration
}

// DefaultConfig returns the documented default policy: 3 strikes in 30
// days.
func DefaultConfig() Config {
	return Config{
		StrikeThreshold: 3,
		StrikeWindow:    30 * 24 * time.Hour,
	}
}

// Violation is one recorded policy violation. Immutable once written.
type Violation struct {
	ID             string
	UserID         string
	Category       string
	MatchedExcerpt string
	StrikeNumber   int
	CreatedAt      time.Time
}

// Store manages violation records and suspension state in PostgreSQL.
type Store struct {
	db    *sql.DB
	cache *SuspensionCache // optional; nil disables caching
	cfg   Config
}

// NewStore creates a ledger store. cache may be nil to run without the
// Redis suspension cache. Zero config fields fall back to defaults.
func NewStore(db *sql.DB, cache *SuspensionCache, cfg Config) *Store {
	def := DefaultConfig()
	if cfg.StrikeThreshold <= 0 {
		cfg.StrikeThreshold = def.StrikeThreshold
	}
	if cfg.StrikeWindow <= 0 {
		cfg.StrikeWindow = def.StrikeWindow
	}
	return &Store{db: db, cache: cache, cfg: cfg}
}

// Config returns the active suspension policy.
func (s *Store) Config() Config { return s.cfg }

// RecordStrike appends a violation record for userID and returns the
// user's new cumulative strike count.
//
// The ordinal comes from an atomic upsert on the user's counter row
// inside the same transaction as the violation insert, so concurrent
// strikes against one user serialize on the row lock and every strike
// gets a distinct, increasing number. Any database error is returned to
// the caller; a strike that could not be durably recorded must not look
// like a clean message.
func (s *Store) RecordStrike(ctx context.Context, userID, category, excerpt string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback()

	const bump = `
		INSERT INTO user_strikes (user_id, strike_count)
		VALUES ($1, 1)
		ON CONFLICT (user_id)
		DO UPDATE SET strike_count = user_strikes.strike_count + 1
		RETURNING strike_count`

	var strike int
	if err := tx.QueryRowContext(ctx, bump, userID).Scan(&strike); err != nil {
		return 0, fmt.Errorf("ledger: increment strikes: %w", err)
	}

	const insert = `
		INSERT INTO violations (id, user_id, category, matched_excerpt, strike_number)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.ExecContext(ctx, insert, uuid.New().String(), userID, category, excerpt, strike); err != nil {
		return 0, fmt.Errorf("ledger: insert violation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger: commit: %w", err)
	}
	return strike, nil
}

// CountRecent returns the number of violations recorded for userID within
// the trailing window.
func (s *Store) CountRecent(ctx context.Context, userID string, window time.Duration) (int, error) {
	const query = `
		SELECT COUNT(*)
		FROM violations
		WHERE user_id = $1
		  AND created_at >= NOW() - make_interval(secs => $2)`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID, window.Seconds()).Scan(&count); err != nil {
		return 0, fmt.Errorf("ledger: count recent: %w", err)
	}
	return count, nil
}

// IsSuspended reports whether userID has reached the strike threshold
// within the configured window.
//
// The query fetches the threshold-th most recent in-window strike: if it
// exists the user is suspended, and the time at which that strike ages
// out of the window is exactly when the answer flips back, which is used
// as the cache TTL. Cache errors fall through to the database; only a
// database error is returned.
func (s *Store) IsSuspended(ctx context.Context, userID string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Printf("[ledger] suspension cache read for %s: %v", userID, err)
		} else if hit {
			return true, nil
		}
	}

	const query = `
		SELECT created_at
		FROM violations
		WHERE user_id = $1
		  AND created_at >= NOW() - make_interval(secs => $2)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT 1`

	var pivot time.Time
	err := s.db.QueryRowContext(ctx, query, userID, s.cfg.StrikeWindow.Seconds(), s.cfg.StrikeThreshold-1).Scan(&pivot)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: suspension check: %w", err)
	}

	if s.cache != nil {
		if ttl := time.Until(pivot.Add(s.cfg.StrikeWindow)); ttl > 0 {
			if err := s.cache.Set(ctx, userID, ttl); err != nil {
				log.Printf("[ledger] suspension cache write for %s: %v", userID, err)
			}
		}
	}
	return true, nil
}

// ListViolations returns the complete audit trail for userID, oldest
// first. Strikes outside the suspension window are included; the trail is
// permanent.
func (s *Store) ListViolations(ctx context.Context, userID string) ([]Violation, error) {
	const query = `
		SELECT id, user_id, category, matched_excerpt, strike_number, created_at
		FROM violations
		WHERE user_id = $1
		ORDER BY strike_number ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list violations: %w", err)
	}
	defer rows.Close()

	var out []Violation
	for rows.Next() {
		var v Violation
		if err := rows.Scan(&v.ID, &v.UserID, &v.Category, &v.MatchedExcerpt, &v.StrikeNumber, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan violation: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: list violations: %w", err)
	}
	return out, nil
}
