package types

import (
	"math/big"
	"time"
)

// TransferStatus is the confirmation lifecycle of an observed transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferConfirmed TransferStatus = "CONFIRMED"
	TransferFailed    TransferStatus = "FAILED"
)

// Transfer is a normalized, chain-agnostic observation of an ERC-20
// Transfer log, deduplicated on (Network, TxHash, LogIndex).
type Transfer struct {
	ID            string
	TxHash        string
	LogIndex      uint
	Network       string
	TokenContract string
	From          string
	To            string
	RawValue      *big.Int
	Amount        string
	BlockNumber   uint64
	FirstSeenAt   time.Time
	Confirmations uint64
	Status        TransferStatus
	ConfirmedAt   *time.Time
	SessionID     string

	// Matched records whether this transfer passed the match gate (sender
	// allowlist + amount tolerance) at first sighting. Only a matched
	// transfer can later drive its session to COMPLETED.
	Matched bool
}

// TransferKey is the natural identity used for deduplication across ticks.
type TransferKey struct {
	Network  string
	TxHash   string
	LogIndex uint
}

func (t *Transfer) Key() TransferKey {
	return TransferKey{Network: t.Network, TxHash: t.TxHash, LogIndex: t.LogIndex}
}

// TransferFilter narrows ListTransfers results. Nil fields are unconstrained.
type TransferFilter struct {
	Network   *string
	SessionID *string
	Status    *TransferStatus
}

func (f TransferFilter) IsEmpty() bool {
	return f.Network == nil && f.SessionID == nil && f.Status == nil
}
