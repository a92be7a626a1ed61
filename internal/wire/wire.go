//go:build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"paygate/internal/api"
	"paygate/internal/config"
	"paygate/internal/logger"
)

// Container holds every top-level dependency main.go needs to start and
// stop the application.
type Container struct {
	Config  *config.Config
	Logger  logger.Logger
	Core    *Core
	Runtime *Runtime
	Server  *api.Server
}

// NewContainer creates a new dependency injection container.
func NewContainer(core *Core, runtime *Runtime, server *api.Server) *Container {
	return &Container{
		Config:  core.Config,
		Logger:  core.Logger,
		Core:    core,
		Runtime: runtime,
		Server:  server,
	}
}

// ContainerSet combines every dependency set.
var ContainerSet = wire.NewSet(
	CoreSet,
	RuntimeSet,
	ServerSet,
	NewContainer,
)

// BuildContainer wires up the full application dependency graph. This
// function's body is a placeholder; `wire` regenerates wire_gen.go from
// the provider sets above, which is what actually runs at build time.
func BuildContainer(ctx context.Context) (*Container, error) {
	wire.Build(ContainerSet)
	return nil, nil
}
