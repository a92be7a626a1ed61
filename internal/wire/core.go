package wire

import (
	"github.com/google/wire"

	"paygate/internal/addresssource"
	"paygate/internal/config"
	"paygate/internal/core/eventbus"
	"paygate/internal/core/registry"
	"paygate/internal/logger"
	"paygate/internal/store"
	"paygate/internal/types"
)

// CoreSet combines the dependencies every other layer is built on top of.
var CoreSet = wire.NewSet(
	config.LoadConfig,
	logger.NewLogger,
	NewChains,
	eventbus.New,
	store.New,
	NewAddressSource,
	registry.New,
	NewCore,
)

// NewChains converts the loaded configuration's active networks into
// validated chain definitions.
func NewChains(cfg *config.Config) (map[string]*types.Chain, error) {
	return cfg.BuildChains()
}

// NewAddressSource builds the fixed, single-recipient-per-chain address
// source the registry assigns every new session's address from.
func NewAddressSource(chains map[string]*types.Chain) addresssource.AddressSource {
	recipients := make(map[string]string, len(chains))
	for id, chain := range chains {
		recipients[id] = chain.Recipient.Hex()
	}
	return addresssource.NewFixedAddressSource(recipients)
}

// Core holds the infrastructure every watcher, scanner, dispatcher, and
// HTTP handler is built against.
type Core struct {
	Config   *config.Config
	Logger   logger.Logger
	Chains   map[string]*types.Chain
	Bus      *eventbus.Bus
	Store    store.Store
	Registry *registry.Registry
}

// NewCore assembles the Core from its already-constructed dependencies.
func NewCore(
	cfg *config.Config,
	log logger.Logger,
	chains map[string]*types.Chain,
	bus *eventbus.Bus,
	st store.Store,
	reg *registry.Registry,
) *Core {
	return &Core{
		Config:   cfg,
		Logger:   log,
		Chains:   chains,
		Bus:      bus,
		Store:    st,
		Registry: reg,
	}
}
