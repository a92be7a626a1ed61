package middleares

import (
	"net/http"

	"paygate/internal/errors"
)

// DefaultErrorMapper maps an AppError code to the HTTP status documented by
// the error envelope contract, falling back to 500 for anything untyped or
// unrecognized.
func DefaultErrorMapper(err error) (int, any) {
	appErr, ok := err.(*errors.AppError)
	if !ok {
		appErr = &errors.AppError{
			Code:    errors.ErrCodeInternalError,
			Message: err.Error(),
			Err:     err,
		}
		return http.StatusInternalServerError, appErr
	}

	switch appErr.Code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeValidationError,
		errors.ErrCodeInvalidRequest,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeInvalidParameter,
		errors.ErrCodeInvalidAddress,
		errors.ErrCodeInvalidTransaction,
		errors.ErrCodeInvalidAmount,
		errors.ErrCodeInvalidBlockchainConfig,
		errors.ErrCodeMissingRPCURL,
		errors.ErrCodeInvalidState:
		return http.StatusBadRequest, appErr

	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized, appErr

	case errors.ErrCodeForbidden:
		return http.StatusForbidden, appErr

	case errors.ErrCodeNotFound,
		errors.ErrCodeSessionNotFound,
		errors.ErrCodeTransferNotFound:
		return http.StatusNotFound, appErr

	case errors.ErrCodeAlreadyExists, errors.ErrCodeAddressUnavailable:
		return http.StatusConflict, appErr

	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests, appErr

	case errors.ErrCodeTimeout:
		return http.StatusRequestTimeout, appErr

	case errors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable, appErr

	default:
		return http.StatusInternalServerError, appErr
	}
}
