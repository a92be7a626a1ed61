package store

import (
	"context"
	"sort"
	"sync"

	"paygate/internal/errors"
	"paygate/internal/types"
)

// memoryStore is an in-memory Store backed by maps and a single
// reader-writer lock, the way the teacher's SQL repository is backed by a
// table — just without the table. Secondary indices mirror the data
// model's sessionsById/sessionsByAddress/transfersByKey/transfersBySession.
type memoryStore struct {
	mu sync.RWMutex

	sessionsByID      map[string]*types.Session
	sessionsByAddress map[string]string // (network, lowercase(address)) -> sessionID

	transfersByKey     map[types.TransferKey]*types.Transfer
	transfersBySession map[string][]string // sessionID -> ordered transferIDs, by first-seen order
	transfersByID      map[string]*types.Transfer
}

// New creates an empty in-memory Store.
func New() Store {
	return &memoryStore{
		sessionsByID:       make(map[string]*types.Session),
		sessionsByAddress:  make(map[string]string),
		transfersByKey:     make(map[types.TransferKey]*types.Transfer),
		transfersBySession: make(map[string][]string),
		transfersByID:      make(map[string]*types.Transfer),
	}
}

func addressKey(network, address string) string {
	return network + ":" + types.NormalizeAddress(address)
}

func (s *memoryStore) SaveSession(_ context.Context, session *types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessionsByID[session.ID] = &cp

	key := addressKey(session.Network, session.Address)
	if session.Status == types.SessionPending {
		s.sessionsByAddress[key] = session.ID
	} else if s.sessionsByAddress[key] == session.ID {
		// The session left PENDING; free its address so a new session (or
		// a RecreateSession) can claim it. Only the session that currently
		// owns the slot may clear it.
		delete(s.sessionsByAddress, key)
	}
	return nil
}

func (s *memoryStore) GetSession(_ context.Context, id string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessionsByID[id]
	if !ok {
		return nil, errors.NewSessionNotFoundError(id)
	}
	cp := *session
	return &cp, nil
}

// GetSessionByAddress returns the open PENDING session at (network,
// address), if any; a session that has completed or expired is not
// addressable this way (§3: exactly one open PENDING session per address).
func (s *memoryStore) GetSessionByAddress(_ context.Context, network, address string) (*types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.sessionsByAddress[addressKey(network, address)]
	if !ok {
		return nil, errors.NewNotFoundError("session")
	}
	session := s.sessionsByID[id]
	if session.Status != types.SessionPending {
		return nil, errors.NewNotFoundError("session")
	}
	cp := *session
	return &cp, nil
}

func (s *memoryStore) ListSessions(_ context.Context, filter types.SessionFilter, page, limit int) (*types.Page[*types.Session], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*types.Session, 0, len(s.sessionsByID))
	for _, session := range s.sessionsByID {
		if sessionMatchesFilter(session, filter) {
			cp := *session
			matched = append(matched, &cp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return paginate(matched, page, limit), nil
}

func sessionMatchesFilter(s *types.Session, f types.SessionFilter) bool {
	if f.Status != nil && s.Status != *f.Status {
		return false
	}
	if f.Network != nil && s.Network != *f.Network {
		return false
	}
	if f.ClientRefID != nil && s.ClientRefID != *f.ClientRefID {
		return false
	}
	if f.FromDate != nil && s.CreatedAt.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && s.CreatedAt.After(*f.ToDate) {
		return false
	}
	return true
}

func (s *memoryStore) SaveTransfer(_ context.Context, transfer *types.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := transfer.Key()
	cp := *transfer
	_, existed := s.transfersByKey[key]
	s.transfersByKey[key] = &cp
	s.transfersByID[transfer.ID] = &cp

	if !existed && transfer.SessionID != "" {
		s.transfersBySession[transfer.SessionID] = append(s.transfersBySession[transfer.SessionID], transfer.ID)
	}
	return nil
}

func (s *memoryStore) GetTransfer(_ context.Context, id string) (*types.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfersByID[id]
	if !ok {
		return nil, errors.NewTransferNotFoundError(id)
	}
	cp := *t
	return &cp, nil
}

func (s *memoryStore) GetTransferByKey(_ context.Context, key types.TransferKey) (*types.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transfersByKey[key]
	if !ok {
		return nil, errors.NewNotFoundError("transfer")
	}
	cp := *t
	return &cp, nil
}

func (s *memoryStore) ListTransfers(_ context.Context, filter types.TransferFilter, page, limit int) (*types.Page[*types.Transfer], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*types.Transfer, 0, len(s.transfersByID))
	for _, t := range s.transfersByID {
		if transferMatchesFilter(t, filter) {
			cp := *t
			matched = append(matched, &cp)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].BlockNumber != matched[j].BlockNumber {
			return matched[i].BlockNumber > matched[j].BlockNumber
		}
		return matched[i].ID < matched[j].ID
	})

	return paginate(matched, page, limit), nil
}

func transferMatchesFilter(t *types.Transfer, f types.TransferFilter) bool {
	if f.Network != nil && t.Network != *f.Network {
		return false
	}
	if f.SessionID != nil && t.SessionID != *f.SessionID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

func (s *memoryStore) ListTransfersBySession(_ context.Context, sessionID string) ([]*types.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.transfersBySession[sessionID]
	result := make([]*types.Transfer, 0, len(ids))
	for _, id := range ids {
		cp := *s.transfersByID[id]
		result = append(result, &cp)
	}
	return result, nil
}

func paginate[T any](items []T, page, limit int) *types.Page[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return types.NewPage(items[start:end], page, limit, total)
}
