package errors

import "fmt"

// Core module error codes: chain configuration and ChainClient/ChainWatcher
// transport errors.
const (
	ErrCodeInvalidBlockchainConfig = "invalid_blockchain_config"

	ErrCodeChainNotSupported  = "chain_not_supported"
	ErrCodeInvalidTransaction = "invalid_transaction"
	ErrCodeRPCError           = "rpc_error"
	ErrCodeRangeTooWide       = "range_too_wide"
	ErrCodeInvalidAddress     = "invalid_address"
	ErrCodeInvalidAmount      = "invalid_amount"
)

// NewInvalidBlockchainConfigError creates an error for invalid blockchain configuration
func NewInvalidBlockchainConfigError(chain string, key string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidBlockchainConfig,
		Message: fmt.Sprintf("invalid blockchain configuration for %s: missing %s", chain, key),
		Details: map[string]any{
			"chain": chain,
			"key":   key,
		},
	}
}

// NewChainNotSupportedError creates a new error for unsupported chains
func NewChainNotSupportedError(chain string) *AppError {
	return &AppError{
		Code:    ErrCodeChainNotSupported,
		Message: fmt.Sprintf("chain not supported: %s", chain),
		Details: map[string]any{"chain": chain},
	}
}

// NewInvalidAddressError creates a new error for invalid addresses
func NewInvalidAddressError(address string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidAddress,
		Message: fmt.Sprintf("invalid address: %s", address),
		Details: map[string]any{"address": address},
	}
}

// NewInvalidAmountError creates a new error for invalid amounts
func NewInvalidAmountError(amount string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount: %s", amount),
		Details: map[string]any{"amount": amount},
	}
}

// NewRPCError wraps a transient JSON-RPC failure (ChainClient calls).
func NewRPCError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeRPCError,
		Message: fmt.Sprintf("rpc error: %v", err),
		Err:     err,
	}
}

// NewRangeTooWideError signals that a getLogs call exceeded the provider's
// accepted block range; the caller (ChainWatcher.Tick) halves its window
// and retries.
func NewRangeTooWideError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeRangeTooWide,
		Message: fmt.Sprintf("block range too wide: %v", err),
		Err:     err,
	}
}

// NewInvalidTransactionError creates a new error for invalid transactions
func NewInvalidTransactionError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidTransaction,
		Message: fmt.Sprintf("invalid transaction: %v", err),
		Err:     err,
	}
}
