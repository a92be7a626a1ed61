package transfer

import (
	"time"

	"paygate/internal/types"
)

// ListTransfersRequest is the query payload for GET /transactions.
type ListTransfersRequest struct {
	Network   string `form:"network"`
	SessionID string `form:"sessionId"`
	Status    string `form:"status"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// Response is an observed transfer in API responses.
type Response struct {
	ID            string     `json:"id"`
	Network       string     `json:"network"`
	TxHash        string     `json:"txHash"`
	LogIndex      uint       `json:"logIndex"`
	TokenContract string     `json:"tokenContract"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	Amount        string     `json:"amount"`
	BlockNumber   uint64     `json:"blockNumber"`
	Confirmations uint64     `json:"confirmations"`
	Status        string     `json:"status"`
	Matched       bool       `json:"matched"`
	FirstSeenAt   time.Time  `json:"firstSeenAt"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
	SessionID     string     `json:"sessionId,omitempty"`
}

// ToResponse converts a domain Transfer into its API representation.
func ToResponse(t *types.Transfer) Response {
	return Response{
		ID:            t.ID,
		Network:       t.Network,
		TxHash:        t.TxHash,
		LogIndex:      t.LogIndex,
		TokenContract: t.TokenContract,
		From:          t.From,
		To:            t.To,
		Amount:        t.Amount,
		BlockNumber:   t.BlockNumber,
		Confirmations: t.Confirmations,
		Status:        string(t.Status),
		Matched:       t.Matched,
		FirstSeenAt:   t.FirstSeenAt,
		ConfirmedAt:   t.ConfirmedAt,
		SessionID:     t.SessionID,
	}
}

// toFilter converts a ListTransfersRequest into a types.TransferFilter.
func toFilter(req ListTransfersRequest) types.TransferFilter {
	filter := types.TransferFilter{}

	if req.Network != "" {
		filter.Network = &req.Network
	}
	if req.SessionID != "" {
		filter.SessionID = &req.SessionID
	}
	if req.Status != "" {
		status := types.TransferStatus(req.Status)
		filter.Status = &status
	}
	return filter
}
