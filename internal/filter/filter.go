// Package filter is the moderation core's public entry point. It ties
// normalization, contact-pattern detection, strike recording and the
// suspension check into a single decision consumed by the messaging and
// profile subsystems.
package filter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sokohub/moderation/internal/detect"
	"github.com/sokohub/moderation/internal/ledger"
	"github.com/sokohub/moderation/internal/metrics"
	"github.com/sokohub/moderation/internal/normalize"
	"github.com/sokohub/moderation/internal/patterns"
)

// User-visible block reasons. The block reason never echoes the matched
// text, so contact info is not restated back to the sender.
const (
	ReasonContactInfo = "message appears to contain contact information and cannot be sent"
	ReasonSuspended   = "account suspended"
)

// maxExcerptLen caps the audit excerpt stored with a violation.
const maxExcerptLen = 80

// ErrUnknownUser is returned when the calling user does not exist in the
// identity store. The filter short-circuits without running detection.
var ErrUnknownUser = errors.New("filter: unknown user")

// StrikeLedger is the persistence the engine needs: durable strike
// recording and the derived suspension predicate. *ledger.Store satisfies
// it; tests substitute an in-memory implementation.
type StrikeLedger interface {
	RecordStrike(ctx context.Context, userID, category, excerpt string) (int, error)
	IsSuspended(ctx context.Context, userID string) (bool, error)
	ListViolations(ctx context.Context, userID string) ([]ledger.Violation, error)
}

// UserDirectory confirms that a calling user exists. *identity.Store
// satisfies it.
type UserDirectory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

// Result is the outcome of one filter decision.
type Result struct {
	// Allowed is false iff at least one contact pattern matched.
	Allowed bool

	// Reason is a human-readable explanation, present when !Allowed.
	Reason string

	// DetectedPatterns lists the matched categories in text order.
	DetectedPatterns []patterns.Category

	// StrikeNumber is the user's new cumulative strike count when a
	// strike was recorded, 0 otherwise.
	StrikeNumber int

	// Suspended reports the user's suspension state after this decision.
	Suspended bool

	// NewlySuspended is true when this decision pushed the user over the
	// suspension threshold. Callers emit notification/suspension side
	// effects on this flag.
	NewlySuspended bool
}

// Engine is the filter orchestrator. Safe for concurrent use: detection
// is pure and all mutable state lives behind the ledger.
type Engine struct {
	detector *detect.Detector
	ledger   StrikeLedger
	users    UserDirectory
}

// NewEngine builds an engine from a detector and the two external
// collaborators.
func NewEngine(detector *detect.Detector, strikes StrikeLedger, users UserDirectory) *Engine {
	return &Engine{detector: detector, ledger: strikes, users: users}
}

// FilterMessage decides whether text from userID may be sent.
//
// Clean text returns an allowed Result and touches nothing. A detected
// violation records exactly one strike (first matched category, truncated
// excerpt for audit) and returns a blocking Result. Ledger failures
// propagate as errors: a message whose strike could not be recorded is
// never reported as allowed.
func (e *Engine) FilterMessage(ctx context.Context, userID, text string) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.FilterLatency.Observe(time.Since(start).Seconds())
	}()
	metrics.MessagesChecked.Inc()

	exists, err := e.users.Exists(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("filter: identity lookup: %w", err)
	}
	if !exists {
		return Result{}, ErrUnknownUser
	}

	matches := e.detector.Detect(normalize.Normalize(text))
	if len(matches) == 0 {
		return Result{Allowed: true}, nil
	}

	// One strike per blocked message: the first match in text order is
	// recorded, all detected categories are reported.
	first := matches[0]

	wasSuspended, err := e.ledger.IsSuspended(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("filter: suspension check: %w", err)
	}

	strike, err := e.ledger.RecordStrike(ctx, userID, string(first.Category), excerpt(first.Text))
	if err != nil {
		return Result{}, fmt.Errorf("filter: record strike: %w", err)
	}
	metrics.StrikesRecorded.Inc()
	metrics.MessagesBlocked.WithLabelValues(string(first.Category)).Inc()

	suspended, err := e.ledger.IsSuspended(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("filter: suspension check: %w", err)
	}
	if suspended && !wasSuspended {
		metrics.SuspensionsTriggered.Inc()
	}

	return Result{
		Allowed:          false,
		Reason:           ReasonContactInfo,
		DetectedPatterns: detect.Categories(matches),
		StrikeNumber:     strike,
		Suspended:        suspended,
		NewlySuspended:   suspended && !wasSuspended,
	}, nil
}

// IsUserSuspended reports whether userID is currently suspended. The
// messaging subsystem calls this before attempting any send; a suspended
// user is blocked from sending even clean text.
func (e *Engine) IsUserSuspended(ctx context.Context, userID string) (bool, error) {
	suspended, err := e.ledger.IsSuspended(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("filter: suspension check: %w", err)
	}
	return suspended, nil
}

// ListViolations exposes the audit trail for admin review tooling.
func (e *Engine) ListViolations(ctx context.Context, userID string) ([]ledger.Violation, error) {
	return e.ledger.ListViolations(ctx, userID)
}

// excerpt truncates matched text for the audit record.
func excerpt(s string) string {
	rs := []rune(s)
	if len(rs) <= maxExcerptLen {
		return s
	}
	return string(rs[:maxExcerptLen])
}
