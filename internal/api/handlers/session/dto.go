package session

import (
	"time"

	"paygate/internal/core/registry"
	"paygate/internal/types"
)

// CreateSessionRequest is the payload for POST /payment-sessions.
type CreateSessionRequest struct {
	Amount            string            `json:"amount" binding:"required"`
	Currency          string            `json:"currency" binding:"required"`
	Network           string            `json:"network" binding:"required"`
	ClientRefID       string            `json:"clientRefId"`
	Metadata          map[string]string `json:"metadata"`
	ExpirationMinutes int               `json:"expirationMinutes"`
}

// ListSessionsRequest is the query payload for GET /payment-sessions.
type ListSessionsRequest struct {
	Status      string `form:"status"`
	Network     string `form:"network"`
	ClientRefID string `form:"clientRefId"`
	FromDate    string `form:"fromDate"`
	ToDate      string `form:"toDate"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// Response is a payment session in API responses.
type Response struct {
	ID                string            `json:"id"`
	Amount            string            `json:"amount"`
	Currency          string            `json:"currency"`
	Network           string            `json:"network"`
	Address           string            `json:"address"`
	Status            string            `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExpiresAt         time.Time         `json:"expiresAt"`
	CompletedAt       *time.Time        `json:"completedAt,omitempty"`
	ClientRefID       string            `json:"clientRefId,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	OriginalSessionID string            `json:"originalSessionId,omitempty"`
	MatchedTransferID string            `json:"matchedTransferId,omitempty"`
}

// ToResponse converts a domain Session into its API representation.
func ToResponse(s *types.Session) Response {
	return Response{
		ID:                s.ID,
		Amount:            s.Amount,
		Currency:          s.Currency,
		Network:           s.Network,
		Address:           s.Address,
		Status:            string(s.Status),
		CreatedAt:         s.CreatedAt,
		ExpiresAt:         s.ExpiresAt,
		CompletedAt:       s.CompletedAt,
		ClientRefID:       s.ClientRefID,
		Metadata:          s.Metadata,
		OriginalSessionID: s.OriginalSessionID,
		MatchedTransferID: s.MatchedTransferID,
	}
}

// toInput converts a CreateSessionRequest into a registry.CreateSessionInput.
func toInput(req CreateSessionRequest) registry.CreateSessionInput {
	return registry.CreateSessionInput{
		Amount:            req.Amount,
		Currency:          req.Currency,
		Network:           req.Network,
		ClientRefID:       req.ClientRefID,
		Metadata:          req.Metadata,
		ExpirationMinutes: req.ExpirationMinutes,
	}
}

// toFilter converts a ListSessionsRequest into a types.SessionFilter.
func toFilter(req ListSessionsRequest) (types.SessionFilter, error) {
	filter := types.SessionFilter{}

	if req.Status != "" {
		status := types.SessionStatus(req.Status)
		filter.Status = &status
	}
	if req.Network != "" {
		filter.Network = &req.Network
	}
	if req.ClientRefID != "" {
		filter.ClientRefID = &req.ClientRefID
	}
	if req.FromDate != "" {
		t, err := time.Parse(time.RFC3339, req.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &t
	}
	if req.ToDate != "" {
		t, err := time.Parse(time.RFC3339, req.ToDate)
		if err != nil {
			return filter, err
		}
		filter.ToDate = &t
	}
	return filter, nil
}
