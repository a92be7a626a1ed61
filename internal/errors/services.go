package errors

// Registry/service error codes.
const (
	ErrCodeInvalidInput       = "invalid_input"
	ErrCodeNotFound           = "not_found"
	ErrCodeAlreadyExists      = "already_exists"
	ErrCodeOperationFailed    = "operation_failed"
	ErrCodeInvalidState       = "invalid_state"
	ErrCodeAddressUnavailable = "address_unavailable"

	ErrCodeSessionNotFound  = "session_not_found"
	ErrCodeTransferNotFound = "transfer_not_found"
)

// NewInvalidInputError creates an error for invalid input data
func NewInvalidInputError(details map[string]any) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: "invalid input data",
		Details: details,
	}
}

// NewNotFoundError creates a generic not found error
func NewNotFoundError(entity string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: entity + " not found",
	}
}

// NewAlreadyExistsError creates a generic already exists error
func NewAlreadyExistsError(entity string) *AppError {
	return &AppError{
		Code:    ErrCodeAlreadyExists,
		Message: entity + " already exists",
	}
}

// NewOperationFailedError creates a generic operation failed error
func NewOperationFailedError(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeOperationFailed,
		Message: operation + " operation failed",
		Err:     err,
	}
}

// NewInvalidStateError creates an error for an operation attempted from the
// wrong lifecycle state (e.g. RecreateSession on a non-EXPIRED session).
func NewInvalidStateError(entity, state string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidState,
		Message: entity + " is in invalid state: " + state,
		Details: map[string]any{"state": state},
	}
}

// NewAddressUnavailableError creates an error for when the AddressSource
// cannot issue a unique address for a new session.
func NewAddressUnavailableError(network string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeAddressUnavailable,
		Message: "no address available for network " + network,
		Err:     err,
	}
}

// NewSessionNotFoundError creates an error for a missing payment session
func NewSessionNotFoundError(id string) *AppError {
	return &AppError{
		Code:    ErrCodeSessionNotFound,
		Message: "session not found: " + id,
	}
}

// NewTransferNotFoundError creates an error for a missing transfer
func NewTransferNotFoundError(id string) *AppError {
	return &AppError{
		Code:    ErrCodeTransferNotFound,
		Message: "transfer not found: " + id,
	}
}
