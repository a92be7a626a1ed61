package errors

import (
	"encoding/json"
	"fmt"
)

// AppError is the error type every session/transfer/chain failure in this
// service surfaces as, so the API layer can map Code to an HTTP status
// without inspecting error strings. Constructors live in core.go,
// services.go, handlers.go and types.go, grouped by the layer they serve.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// MarshalJSON flattens AppError to {code, message, details, error}, with
// error holding the same text Error() returns (including the wrapped cause).
func (e *AppError) MarshalJSON() ([]byte, error) {
	type Alias AppError
	return json.Marshal(&struct {
		*Alias
		Error string `json:"error"`
	}{
		Alias: (*Alias)(e),
		Error: e.Error(),
	})
}

// Is lets errors.Is match two AppErrors by Code alone, ignoring Details/Err,
// so a freshly constructed AppError (e.g. NewSessionNotFoundError("")) can
// serve as a comparison sentinel for a handler's error-type checks.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
