package middleares

import (
	"github.com/gin-gonic/gin"
)

// ErrorMapper maps an error attached to the Gin context to an HTTP status
// and JSON body. A mapper returning a nil body defers to the next mapper.
type ErrorMapper func(err error) (int, any)

// ErrorHandler renders the last error a handler attached via c.Error(err),
// trying an optional route-specific mapper before DefaultErrorMapper.
type ErrorHandler struct {
	mapper        ErrorMapper
	defaultMapper ErrorMapper
}

// NewErrorHandler builds an ErrorHandler; mapper may be nil to always use
// DefaultErrorMapper.
func NewErrorHandler(mapper ErrorMapper) *ErrorHandler {
	return &ErrorHandler{
		mapper:        mapper,
		defaultMapper: DefaultErrorMapper,
	}
}

// Middleware runs the handler chain, then writes any attached error as a
// JSON response instead of letting Gin's default recovery format it.
func (h *ErrorHandler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if h.mapper != nil {
			if status, body := h.mapper(err); body != nil {
				c.JSON(status, body)
				return
			}
		}
		status, body := h.defaultMapper(err)
		c.JSON(status, body)
	}
}
