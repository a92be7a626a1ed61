package errors

// HTTP handler layer error codes, matching the documented error envelope
// codes {invalid_request, unauthorized, not_found, server_error, rate_limited}.
const (
	ErrCodeValidationError  = "validation_error"
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeMissingParameter = "missing_parameter"
	ErrCodeInvalidParameter = "invalid_parameter"

	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"

	ErrCodeInternalError      = "server_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeTimeout            = "timeout"
	ErrCodeRateLimited        = "rate_limited"
)

// NewValidationError creates an error for request validation failures
func NewValidationError(details map[string]any) *AppError {
	return &AppError{
		Code:    ErrCodeValidationError,
		Message: "request validation failed",
		Details: details,
	}
}

// NewInvalidRequestError creates an error for malformed requests
func NewInvalidRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRequest,
		Message: message,
	}
}

// NewMissingParameterError creates an error for missing required parameters
func NewMissingParameterError(param string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingParameter,
		Message: "missing required parameter: " + param,
	}
}

// NewInvalidParameterError creates an error for invalid parameter values
func NewInvalidParameterError(param string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParameter,
		Message: "invalid parameter: " + param,
		Details: map[string]any{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// NewUnauthorizedError creates an error for unauthorized access (missing or
// invalid API key bearer token)
func NewUnauthorizedError() *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: "authentication required",
	}
}

// NewForbiddenError creates an error for forbidden access
func NewForbiddenError() *AppError {
	return &AppError{
		Code:    ErrCodeForbidden,
		Message: "access forbidden",
	}
}

// NewInternalError creates an error for internal server errors
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternalError,
		Message: "internal server error",
		Err:     err,
	}
}

// NewServiceUnavailableError creates an error for service unavailability
func NewServiceUnavailableError(service string) *AppError {
	return &AppError{
		Code:    ErrCodeServiceUnavailable,
		Message: service + " is currently unavailable",
	}
}

// NewTimeoutError creates an error for request timeouts
func NewTimeoutError() *AppError {
	return &AppError{
		Code:    ErrCodeTimeout,
		Message: "request timed out",
	}
}

// NewRateLimitedError creates an error for requests rejected by the
// per-API-key rate limiter.
func NewRateLimitedError() *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: "rate limit exceeded",
	}
}
