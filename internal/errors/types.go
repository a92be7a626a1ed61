package errors

// Chain configuration error codes.
const (
	ErrCodeMissingRPCURL = "missing_rpc_url"
)

// NewMissingRPCURLError creates an error for missing RPC URL configuration
func NewMissingRPCURLError(chainID string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingRPCURL,
		Message: "missing RPC URL",
		Details: map[string]any{
			"chain": chainID,
		},
	}
}
