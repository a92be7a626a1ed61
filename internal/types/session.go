package types

import (
	"errors"
	"time"
)

// Sentinel errors returned by Session.Validate.
var (
	ErrInvalidSessionWindow = errors.New("session expiresAt must be after createdAt")
	ErrIncompleteCompletion = errors.New("completed session missing completedAt or matchedTransferId")
)

// SessionStatus is the lifecycle state of a payment session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "PENDING"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionExpired   SessionStatus = "EXPIRED"
	SessionFailed    SessionStatus = "FAILED"
)

// Session is a time-bounded payment request against a single EVM address
// on one chain.
type Session struct {
	ID                string
	Amount            string
	Currency          string
	Network           string
	Address           string
	Status            SessionStatus
	CreatedAt         time.Time
	ExpiresAt         time.Time
	CompletedAt       *time.Time
	ClientRefID       string
	Metadata          map[string]string
	OriginalSessionID string
	MatchedTransferID string
}

// Validate checks the session lifecycle invariants: expiresAt > createdAt,
// and a COMPLETED session carries both completedAt and matchedTransferId.
func (s *Session) Validate() error {
	if !s.ExpiresAt.After(s.CreatedAt) {
		return ErrInvalidSessionWindow
	}
	if s.Status == SessionCompleted {
		if s.CompletedAt == nil || s.MatchedTransferID == "" {
			return ErrIncompleteCompletion
		}
	}
	return nil
}

// SessionFilter narrows ListSessions results. Nil fields are unconstrained.
type SessionFilter struct {
	Status      *SessionStatus
	Network     *string
	ClientRefID *string
	FromDate    *time.Time
	ToDate      *time.Time
}

// IsEmpty reports whether the filter constrains nothing, mirroring the
// teacher's transaction.Filter.IsEmpty helper.
func (f SessionFilter) IsEmpty() bool {
	return f.Status == nil && f.Network == nil && f.ClientRefID == nil &&
		f.FromDate == nil && f.ToDate == nil
}
