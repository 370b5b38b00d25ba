package filter

// CheckRequest is published to filter.check by the messaging subsystem
// when an outgoing message needs content review.
type CheckRequest struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Ts        int64  `json:"ts"`
}

// CheckResult is published back on filter.result.<message_id> with the
// decision. Error is set when the check could not complete (ledger
// failure); the caller must treat the message as unresolved, not clean.
type CheckResult struct {
	MessageID    string   `json:"message_id"`
	UserID       string   `json:"user_id"`
	Allowed      bool     `json:"allowed"`
	Reason       string   `json:"reason,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	StrikeNumber int      `json:"strike_number,omitempty"`
	Suspended    bool     `json:"suspended"`
	Error        string   `json:"error,omitempty"`
}

// SuspensionEvent is published to moderation.suspended when a strike
// pushes a user over the threshold. The notification and user-management
// systems subscribe to it.
type SuspensionEvent struct {
	UserID      string `json:"user_id"`
	StrikeCount int    `json:"strike_count"`
	Ts          int64  `json:"ts"`
}
