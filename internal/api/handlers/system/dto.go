package system

import "paygate/internal/core/watcher"

// ChainStatus is the lifecycle state of one chain's watcher.
type ChainStatus string

const (
	ChainStatusActive   ChainStatus = "ACTIVE"
	ChainStatusHalted   ChainStatus = "HALTED"
	ChainStatusInactive ChainStatus = "INACTIVE"
)

// NetworkStatusResponse is one entry of GET /system/network-status.
type NetworkStatusResponse struct {
	ID                    string      `json:"id"`
	Status                ChainStatus `json:"status"`
	LastBlock             uint64      `json:"lastBlock"`
	RequiredConfirmations uint64      `json:"requiredConfirmations"`
}

// toResponse converts a watcher.Status into its API representation.
func toResponse(s watcher.Status) NetworkStatusResponse {
	status := ChainStatusInactive
	switch {
	case s.Halted:
		status = ChainStatusHalted
	case s.Running:
		status = ChainStatusActive
	}

	return NetworkStatusResponse{
		ID:                    s.Network,
		Status:                status,
		LastBlock:             s.LastBlock,
		RequiredConfirmations: s.RequiredConfirmations,
	}
}
