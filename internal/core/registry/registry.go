// Package registry implements the SessionRegistry: the single-writer
// authority over payment sessions and their matched transfers. All
// mutation flows through one mutex-guarded entry point per operation, the
// way the teacher serializes writes through a single service method
// guarded by its repository transaction rather than fine-grained locks.
package registry

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"paygate/internal/addresssource"
	"paygate/internal/core/eventbus"
	"paygate/internal/errors"
	"paygate/internal/store"
	"paygate/internal/types"
)

// Reasons attached to a non-matching transfer.detected event.
const (
	ReasonNoSession            = "no_session"
	ReasonSenderNotAllowed     = "sender_not_allowed"
	ReasonAmountBelowTolerance = "amount_below_tolerance"
)

// Session expiration window bounds, per CreateSessionInput.ExpirationMinutes.
const (
	DefaultExpirationMinutes = 30
	MinExpirationMinutes     = 1
	MaxExpirationMinutes     = 1440
)

// Clock returns the current time; overridable in tests.
type Clock func() time.Time

// Registry is the SessionRegistry: it owns session and transfer state
// transitions and is the sole writer to the Store.
type Registry struct {
	mu sync.Mutex

	store  store.Store
	addrs  addresssource.AddressSource
	bus    *eventbus.Bus
	chains map[string]*types.Chain
	now    Clock
}

// New builds a Registry over the given chains (keyed by network ID).
func New(st store.Store, addrs addresssource.AddressSource, bus *eventbus.Bus, chains map[string]*types.Chain) *Registry {
	return &Registry{
		store:  st,
		addrs:  addrs,
		bus:    bus,
		chains: chains,
		now:    time.Now,
	}
}

// SetClock overrides the registry's time source, for deterministic tests
// in packages that wire a Registry but cannot reach its unexported fields.
func (r *Registry) SetClock(now Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// CreateSessionInput is the input to CreateSession.
type CreateSessionInput struct {
	Amount            string
	Currency          string
	Network           string
	ClientRefID       string
	Metadata          map[string]string
	ExpirationMinutes int
}

// CreateSession allocates a new PENDING session with a fresh recipient
// address on the requested network.
func (r *Registry) CreateSession(ctx context.Context, in CreateSessionInput) (*types.Session, error) {
	if _, ok := r.chains[in.Network]; !ok {
		return nil, errors.NewChainNotSupportedError(in.Network)
	}
	if _, err := ParsePositiveDecimal(in.Amount); err != nil {
		return nil, err
	}
	if in.Currency != "USDT" {
		return nil, errors.NewInvalidInputError(map[string]any{"currency": in.Currency})
	}

	minutes := in.ExpirationMinutes
	if minutes == 0 {
		minutes = DefaultExpirationMinutes
	}
	if minutes < MinExpirationMinutes || minutes > MaxExpirationMinutes {
		return nil, errors.NewInvalidInputError(map[string]any{"expirationMinutes": minutes})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	address, err := r.addrs.NewAddress(ctx, in.Network, id)
	if err != nil {
		return nil, errors.NewAddressUnavailableError(in.Network, err)
	}
	if _, err := r.store.GetSessionByAddress(ctx, in.Network, address); err == nil {
		return nil, errors.NewAddressUnavailableError(in.Network, fmt.Errorf("address %s already has an open pending session", address))
	}

	ttl := time.Duration(minutes) * time.Minute
	now := r.now()

	session := &types.Session{
		ID:          id,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Network:     in.Network,
		Address:     address,
		Status:      types.SessionPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		ClientRefID: in.ClientRefID,
		Metadata:    in.Metadata,
	}
	if err := session.Validate(); err != nil {
		return nil, errors.NewInvalidInputError(map[string]any{"error": err.Error()})
	}
	if err := r.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	r.publish(types.EventSessionCreated, types.SessionCreatedData{Session: *session})
	cp := *session
	return &cp, nil
}

// GetSession returns the session by ID.
func (r *Registry) GetSession(ctx context.Context, id string) (*types.Session, error) {
	return r.store.GetSession(ctx, id)
}

// ListSessions returns a filtered, paginated view of sessions.
func (r *Registry) ListSessions(ctx context.Context, filter types.SessionFilter, page, limit int) (*types.Page[*types.Session], error) {
	if page < 1 {
		return nil, errors.NewInvalidInputError(map[string]any{"page": page})
	}
	if limit < 1 || limit > 100 {
		return nil, errors.NewInvalidInputError(map[string]any{"limit": limit})
	}
	return r.store.ListSessions(ctx, filter, page, limit)
}

// RecreateSession issues a fresh session carrying forward an EXPIRED
// session's terms, linked back via OriginalSessionID.
func (r *Registry) RecreateSession(ctx context.Context, id string) (*types.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	original, err := r.store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if original.Status != types.SessionExpired {
		return nil, errors.NewInvalidStateError("session", string(original.Status))
	}

	newID := uuid.NewString()
	address, err := r.addrs.NewAddress(ctx, original.Network, newID)
	if err != nil {
		return nil, errors.NewAddressUnavailableError(original.Network, err)
	}
	if _, err := r.store.GetSessionByAddress(ctx, original.Network, address); err == nil {
		return nil, errors.NewAddressUnavailableError(original.Network, fmt.Errorf("address %s already has an open pending session", address))
	}

	now := r.now()
	ttl := original.ExpiresAt.Sub(original.CreatedAt)
	if ttl <= 0 {
		ttl = DefaultExpirationMinutes * time.Minute
	}

	session := &types.Session{
		ID:                newID,
		Amount:            original.Amount,
		Currency:          original.Currency,
		Network:           original.Network,
		Address:           address,
		Status:            types.SessionPending,
		CreatedAt:         now,
		ExpiresAt:         now.Add(ttl),
		ClientRefID:       original.ClientRefID,
		Metadata:          original.Metadata,
		OriginalSessionID: original.ID,
	}
	if err := r.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	r.publish(types.EventSessionRecreated, types.SessionRecreatedData{
		Session:           *session,
		OriginalSessionID: original.ID,
	})
	cp := *session
	return &cp, nil
}

// ExpireDue transitions every PENDING session whose ExpiresAt is at or
// before now into EXPIRED.
func (r *Registry) ExpireDue(ctx context.Context, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := types.SessionPending
	var due []*types.Session
	for page := 1; ; page++ {
		result, err := r.store.ListSessions(ctx, types.SessionFilter{Status: &pending}, page, 100)
		if err != nil {
			return err
		}
		for _, session := range result.Items {
			if !now.Before(session.ExpiresAt) {
				due = append(due, session)
			}
		}
		if !result.HasMore {
			break
		}
	}

	for _, session := range due {
		session.Status = types.SessionExpired
		if err := r.store.SaveSession(ctx, session); err != nil {
			return err
		}
		r.publish(types.EventSessionExpired, types.SessionExpiredData{SessionID: session.ID})
	}
	return nil
}

// Observation is a single observed ERC-20 Transfer log, as reported by a
// ChainWatcher tick. RawValue and Confirmations are the watcher's current
// view as of this tick; Apply is safe to call repeatedly with updated
// confirmation counts for the same (Network, TxHash, LogIndex).
type Observation struct {
	Network       string
	TxHash        string
	LogIndex      uint
	From          string
	To            string
	RawValue      *big.Int
	BlockNumber   uint64
	Confirmations uint64
}

// Apply folds one observed transfer into registry state: it deduplicates
// on the transfer's natural key, resolves the owning session (if any),
// runs the match gate, and drives the PENDING -> COMPLETED transition
// once a matched transfer reaches the chain's required confirmations.
func (r *Registry) Apply(ctx context.Context, obs Observation) error {
	chain, ok := r.chains[obs.Network]
	if !ok {
		return errors.NewChainNotSupportedError(obs.Network)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := types.TransferKey{Network: obs.Network, TxHash: obs.TxHash, LogIndex: obs.LogIndex}
	existing, err := r.store.GetTransferByKey(ctx, key)
	if err == nil {
		return r.applyToExisting(ctx, chain, existing, obs)
	}
	return r.applyNew(ctx, chain, obs)
}

func (r *Registry) applyNew(ctx context.Context, chain *types.Chain, obs Observation) error {
	now := r.now()
	transfer := &types.Transfer{
		ID:            uuid.NewString(),
		TxHash:        obs.TxHash,
		LogIndex:      obs.LogIndex,
		Network:       obs.Network,
		TokenContract: chain.TokenContract.Hex(),
		From:          obs.From,
		To:            obs.To,
		RawValue:      obs.RawValue,
		Amount:        FromSmallestUnit(obs.RawValue, chain.TokenDecimals),
		BlockNumber:   obs.BlockNumber,
		FirstSeenAt:   now,
		Confirmations: obs.Confirmations,
		Status:        types.TransferPending,
	}

	session, sessErr := r.store.GetSessionByAddress(ctx, obs.Network, obs.To)
	if sessErr != nil {
		if err := r.store.SaveTransfer(ctx, transfer); err != nil {
			return err
		}
		r.publish(types.EventTransferDetected, types.TransferDetectedData{
			Transfer: *transfer,
			Matched:  false,
			Reason:   ReasonNoSession,
		})
		return nil
	}

	transfer.SessionID = session.ID

	matched, reason := r.evaluateMatchGate(chain, session, obs)
	transfer.Matched = matched

	if !matched {
		if err := r.store.SaveTransfer(ctx, transfer); err != nil {
			return err
		}
		r.publish(types.EventTransferDetected, types.TransferDetectedData{
			Transfer:  *transfer,
			SessionID: session.ID,
			Matched:   false,
			Reason:    reason,
		})
		return nil
	}

	if err := r.store.SaveTransfer(ctx, transfer); err != nil {
		return err
	}
	r.publish(types.EventTransferDetected, types.TransferDetectedData{
		Transfer:  *transfer,
		SessionID: session.ID,
		Matched:   true,
	})
	if obs.Confirmations < chain.RequiredConfirmations {
		return nil
	}

	if session.Status != types.SessionPending {
		// The session left PENDING (expired) before this transfer's first
		// sighting already met the confirmation threshold. It still
		// confirms for audit purposes, but it no longer completes a session.
		now := r.now()
		transfer.Status = types.TransferConfirmed
		transfer.ConfirmedAt = &now
		if err := r.store.SaveTransfer(ctx, transfer); err != nil {
			return err
		}
		r.publish(types.EventTransferConfirmed, types.TransferConfirmedData{
			TransferID: transfer.ID,
			SessionID:  "",
		})
		return nil
	}

	return r.confirmAndComplete(ctx, transfer, session)
}

func (r *Registry) applyToExisting(ctx context.Context, chain *types.Chain, existing *types.Transfer, obs Observation) error {
	if obs.Confirmations <= existing.Confirmations {
		return nil
	}
	existing.Confirmations = obs.Confirmations

	if existing.Status != types.TransferPending || existing.Confirmations < chain.RequiredConfirmations {
		if err := r.store.SaveTransfer(ctx, existing); err != nil {
			return err
		}
		r.publish(types.EventTransferUpdated, types.TransferUpdatedData{
			TransferID:    existing.ID,
			Confirmations: existing.Confirmations,
		})
		return nil
	}

	if !existing.Matched || existing.SessionID == "" {
		if err := r.store.SaveTransfer(ctx, existing); err != nil {
			return err
		}
		r.publish(types.EventTransferUpdated, types.TransferUpdatedData{
			TransferID:    existing.ID,
			Confirmations: existing.Confirmations,
		})
		return nil
	}

	session, err := r.store.GetSession(ctx, existing.SessionID)
	if err != nil {
		return err
	}
	if session.Status != types.SessionPending {
		// The session expired (or otherwise left PENDING) before this
		// transfer reached its confirmation threshold. The transfer still
		// confirms for audit purposes, but it no longer completes a session.
		existing.Status = types.TransferConfirmed
		now := r.now()
		existing.ConfirmedAt = &now
		if err := r.store.SaveTransfer(ctx, existing); err != nil {
			return err
		}
		r.publish(types.EventTransferConfirmed, types.TransferConfirmedData{
			TransferID: existing.ID,
			SessionID:  "",
		})
		return nil
	}

	return r.confirmAndComplete(ctx, existing, session)
}

// confirmAndComplete transitions transfer -> CONFIRMED and session ->
// COMPLETED, emitting transfer.confirmed then session.completed.
func (r *Registry) confirmAndComplete(ctx context.Context, transfer *types.Transfer, session *types.Session) error {
	now := r.now()

	transfer.Status = types.TransferConfirmed
	transfer.ConfirmedAt = &now
	if err := r.store.SaveTransfer(ctx, transfer); err != nil {
		return err
	}

	session.Status = types.SessionCompleted
	session.CompletedAt = &now
	session.MatchedTransferID = transfer.ID
	if err := r.store.SaveSession(ctx, session); err != nil {
		return err
	}

	r.publish(types.EventTransferConfirmed, types.TransferConfirmedData{
		TransferID: transfer.ID,
		SessionID:  session.ID,
	})
	r.publish(types.EventSessionCompleted, types.SessionCompletedData{
		SessionID:  session.ID,
		TransferID: transfer.ID,
	})
	return nil
}

// evaluateMatchGate applies the sender allowlist then the amount
// tolerance policy, in that order.
func (r *Registry) evaluateMatchGate(chain *types.Chain, session *types.Session, obs Observation) (matched bool, reason string) {
	from := common.HexToAddress(obs.From)
	if !chain.AllowsSender(from) {
		return false, ReasonSenderNotAllowed
	}

	target := session.Amount
	if chain.TargetAmount != "" {
		target = chain.TargetAmount
	}
	targetSmallest, err := ToSmallestUnit(target, chain.TokenDecimals)
	if err != nil {
		return false, ReasonAmountBelowTolerance
	}
	if !meetsAmountPolicy(obs.RawValue, targetSmallest) {
		return false, ReasonAmountBelowTolerance
	}
	return true, ""
}

func (r *Registry) publish(eventType types.EventType, data any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(types.Event{Type: eventType, CreatedAt: r.now(), Data: data})
}
