package wire

import (
	"github.com/google/wire"

	"paygate/internal/api"
	"paygate/internal/api/handlers/session"
	"paygate/internal/api/handlers/system"
	"paygate/internal/api/handlers/transfer"
)

// ServerSet combines every HTTP handler and the top-level api.Server.
var ServerSet = wire.NewSet(
	session.NewHandler,
	transfer.NewHandler,
	NewSystemHandler,
	api.NewServer,
)

// NewSystemHandler adapts Runtime.Watchers into the system handler's
// dependency, since the handler only needs read access to watcher status.
func NewSystemHandler(runtime *Runtime, core *Core) *system.Handler {
	return system.NewHandler(runtime.Watchers, core.Logger)
}
