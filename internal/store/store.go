// Package store defines the persistence boundary the SessionRegistry
// consumes. The reference deployment uses the in-memory implementation in
// this package; durability across restarts is a configuration choice, not
// a core responsibility.
package store

import (
	"context"

	"paygate/internal/types"
)

// Store is the persistence contract for sessions and transfers. Writes
// come only from the registry, under its lock; reads may also come from
// outside that lock (the registry's GetSession/ListSessions and the
// transfer API handler call the store directly), so the in-memory
// implementation guards itself with a reader-writer lock.
type Store interface {
	SaveSession(ctx context.Context, session *types.Session) error
	GetSession(ctx context.Context, id string) (*types.Session, error)
	GetSessionByAddress(ctx context.Context, network, address string) (*types.Session, error)
	ListSessions(ctx context.Context, filter types.SessionFilter, page, limit int) (*types.Page[*types.Session], error)

	SaveTransfer(ctx context.Context, transfer *types.Transfer) error
	GetTransfer(ctx context.Context, id string) (*types.Transfer, error)
	GetTransferByKey(ctx context.Context, key types.TransferKey) (*types.Transfer, error)
	ListTransfers(ctx context.Context, filter types.TransferFilter, page, limit int) (*types.Page[*types.Transfer], error)
	ListTransfersBySession(ctx context.Context, sessionID string) ([]*types.Transfer, error)
}
