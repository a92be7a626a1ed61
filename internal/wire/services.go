package wire

import (
	"context"

	"github.com/google/wire"

	"paygate/internal/core/chainclient"
	"paygate/internal/core/eventbus"
	"paygate/internal/core/expiry"
	"paygate/internal/core/watcher"
	"paygate/internal/logger"
	"paygate/internal/webhook"
)

// RuntimeSet combines the chain watchers and background tasks built on top
// of Core.
var RuntimeSet = wire.NewSet(
	NewRuntime,
)

// Runtime holds one ChainWatcher per active network plus the background
// tasks that run alongside the HTTP server.
type Runtime struct {
	Clients           map[string]chainclient.Client
	Watchers          map[string]*watcher.ChainWatcher
	ExpiryScanner     *expiry.Scanner
	WebhookDispatcher *webhook.Dispatcher
	bus               *eventbus.Bus
}

// NewRuntime dials one ChainClient per active network, builds its
// ChainWatcher, and wires the expiry scanner and (if configured) the
// webhook dispatcher.
func NewRuntime(ctx context.Context, core *Core) (*Runtime, error) {
	clients := make(map[string]chainclient.Client, len(core.Chains))
	watchers := make(map[string]*watcher.ChainWatcher, len(core.Chains))

	for id, chain := range core.Chains {
		client, err := chainclient.Dial(ctx, id, chain.RPCUrl, core.Logger)
		if err != nil {
			return nil, err
		}
		clients[id] = client

		w := watcher.New(chain, client, core.Registry, core.Bus, core.Logger)
		if err := w.Initialize(ctx); err != nil {
			core.Logger.Error("watcher initialization failed, chain will not start",
				logger.Network(id), logger.Error(err))
			w.Halt("initialization failed: " + err.Error())
			watchers[id] = w
			continue
		}
		watchers[id] = w
	}

	scanner := expiry.New(core.Registry, core.Logger, 0)

	var dispatcher *webhook.Dispatcher
	if core.Config.WebhookURL != "" {
		dispatcher = webhook.New(core.Config.WebhookURL, core.Config.WebhookSecret, core.Logger)
	}

	return &Runtime{
		Clients:           clients,
		Watchers:          watchers,
		ExpiryScanner:     scanner,
		WebhookDispatcher: dispatcher,
		bus:               core.Bus,
	}, nil
}

// Start begins every watcher's polling loop, the expiry scanner, and the
// webhook dispatcher (if configured).
func (r *Runtime) Start(ctx context.Context) {
	for _, w := range r.Watchers {
		w.Start(ctx)
	}
	r.ExpiryScanner.Start(ctx)
	if r.WebhookDispatcher != nil {
		r.WebhookDispatcher.Start(ctx, r.bus)
	}
}

// Stop halts every watcher, the expiry scanner, and the webhook dispatcher.
func (r *Runtime) Stop() {
	for _, w := range r.Watchers {
		w.Stop()
	}
	r.ExpiryScanner.Stop()
	if r.WebhookDispatcher != nil {
		r.WebhookDispatcher.Stop()
	}
	for _, c := range r.Clients {
		c.Close()
	}
}
