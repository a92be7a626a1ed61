// Package watcher tails a single EVM chain for USDT Transfer logs directed
// at the configured recipient address and feeds each normalized sighting
// into the session registry.
package watcher

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"paygate/internal/core/chainclient"
	"paygate/internal/core/eventbus"
	"paygate/internal/core/registry"
	"paygate/internal/errors"
	"paygate/internal/logger"
	"paygate/internal/types"
)

// maxRangeRetries bounds how many times Tick halves its window after a
// RangeTooWide error before giving up on the tick.
const maxRangeRetries = 3

// Status is a point-in-time snapshot of a ChainWatcher for the
// network-status API and diagnostics.
type Status struct {
	Network               string
	Running               bool
	Halted                bool
	HaltReason            string
	LastBlock             uint64
	RequiredConfirmations uint64
}

// ChainWatcher polls one chain's head, fetches Transfer logs for the
// configured token/recipient pair, and applies each one to the registry.
// One instance runs per active network.
type ChainWatcher struct {
	chain    *types.Chain
	client   chainclient.Client
	registry *registry.Registry
	bus      *eventbus.Bus
	log      logger.Logger

	mu         sync.Mutex
	running    bool
	halted     bool
	haltReason string
	cursor     uint64
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New constructs a ChainWatcher for chain, not yet initialized or started.
func New(chain *types.Chain, client chainclient.Client, reg *registry.Registry, bus *eventbus.Bus, log logger.Logger) *ChainWatcher {
	return &ChainWatcher{chain: chain, client: client, registry: reg, bus: bus, log: log}
}

// Initialize sets the cursor to the current chain head, so the first tick
// only picks up blocks seen after startup.
func (w *ChainWatcher) Initialize(ctx context.Context) error {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		return errors.NewRPCError(err)
	}

	w.mu.Lock()
	w.cursor = head
	w.mu.Unlock()

	w.log.Info("watcher initialized",
		logger.Network(w.chain.ID),
		logger.Int64("cursor", int64(head)),
	)
	return nil
}

// Start schedules ticks every chain.PollIntervalMs until Stop is called.
// Idempotent: calling Start on an already-running watcher is a no-op. A
// halted watcher refuses to (re)start; halting is terminal for its
// lifetime (§7 fatal config errors / invariant violations).
func (w *ChainWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running || w.halted {
		w.mu.Unlock()
		return
	}
	tickCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	interval := time.Duration(w.chain.PollIntervalMs) * time.Millisecond

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				w.Tick(tickCtx)
			}
		}
	}()
}

// Stop prevents further ticks and waits for any in-flight tick to finish.
// Idempotent.
func (w *ChainWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Status returns a snapshot of the watcher's current state.
func (w *ChainWatcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Status{
		Network:               w.chain.ID,
		Running:               w.running,
		Halted:                w.halted,
		HaltReason:            w.haltReason,
		LastBlock:             w.cursor,
		RequiredConfirmations: w.chain.RequiredConfirmations,
	}
}

// Halt marks the watcher halted, stops its polling loop (if running), and
// emits chain.halted. Idempotent: halting an already-halted watcher is a
// no-op. Called for fatal config errors at startup (Initialize failure) and
// for invariant violations surfaced while applying observed logs (§7).
func (w *ChainWatcher) Halt(reason string) {
	w.mu.Lock()
	if w.halted {
		w.mu.Unlock()
		return
	}
	w.halted = true
	w.haltReason = reason
	w.running = false
	cancel := w.cancel
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	w.log.Error("chain watcher halted", logger.Network(w.chain.ID), logger.String("reason", reason))
	if w.bus != nil {
		w.bus.Publish(types.Event{
			Type:      types.EventChainHalted,
			CreatedAt: time.Now(),
			Data:      types.ChainHaltedData{Network: w.chain.ID, Reason: reason},
		})
	}
}

// Tick runs one poll cycle: fetch the head, compute the block range,
// fetch logs, parse and apply each one, then advance the cursor. Transient
// errors are logged and skip the tick without advancing the cursor.
func (w *ChainWatcher) Tick(ctx context.Context) {
	head, err := w.client.BlockNumber(ctx)
	if err != nil {
		w.log.Warn("tick: failed to read chain head", logger.Network(w.chain.ID), logger.Error(err))
		return
	}

	w.mu.Lock()
	cursor := w.cursor
	w.mu.Unlock()

	from := cursor + 1
	if head < from {
		return
	}

	if head-from+1 > w.chain.MaxBlockRange {
		from = head - w.chain.MaxBlockRange + 1
	}

	logs, err := w.fetchLogsWithRetry(ctx, from, head)
	if err != nil {
		w.log.Warn("tick: failed to fetch logs", logger.Network(w.chain.ID), logger.Error(err))
		return
	}

	for _, l := range logs {
		if err := w.applyLog(ctx, l, head); err != nil {
			// Apply rejected the log for a reason other than a malformed
			// log (those are skipped inside applyLog without an error) —
			// an invariant violation the watcher cannot recover from.
			w.Halt("apply failed: " + err.Error())
			return
		}
	}

	w.mu.Lock()
	w.cursor = head
	w.mu.Unlock()
}

// fetchLogsWithRetry requests the Transfer-log filter for [from, head],
// halving the window up to maxRangeRetries times on RangeTooWideError.
func (w *ChainWatcher) fetchLogsWithRetry(ctx context.Context, from, head uint64) ([]chainclient.Log, error) {
	transferSig := crypto.Keccak256Hash([]byte(chainclient.TransferEventSignature))
	filter := chainclient.Filter{
		Address: w.chain.TokenContract,
		Topics: [][]common.Hash{
			{transferSig},
			{},
			{chainclient.PadAddressTopic(w.chain.Recipient)},
		},
		FromBlock: from,
		ToBlock:   head,
	}

	window := head - from + 1
	for attempt := 0; attempt <= maxRangeRetries; attempt++ {
		logs, err := w.client.GetLogs(ctx, filter)
		if err == nil {
			return logs, nil
		}

		appErr, ok := err.(*errors.AppError)
		if !ok || appErr.Code != errors.ErrCodeRangeTooWide || attempt == maxRangeRetries {
			return nil, err
		}

		window /= 2
		if window == 0 {
			window = 1
		}
		filter.FromBlock = filter.ToBlock - window + 1
	}
	return nil, errors.NewRangeTooWideError(nil)
}

// applyLog parses a raw Transfer log and applies it to the registry.
// Logs whose `to` doesn't match the configured recipient are rejected
// defensively (the topic filter should already guarantee this).
func (w *ChainWatcher) applyLog(ctx context.Context, l chainclient.Log, head uint64) error {
	if len(l.Topics) < 3 {
		return nil
	}
	to := common.BytesToAddress(l.Topics[2].Bytes())
	if to != w.chain.Recipient {
		return nil
	}
	from := common.BytesToAddress(l.Topics[1].Bytes())
	rawValue := chainclient.RawValueFromData(l.Data)

	confirmations := uint64(0)
	if head >= l.BlockNumber {
		confirmations = head - l.BlockNumber + 1
	}

	return w.registry.Apply(ctx, registry.Observation{
		Network:       w.chain.ID,
		TxHash:        l.TxHash.Hex(),
		LogIndex:      l.LogIndex,
		From:          from.Hex(),
		To:            to.Hex(),
		RawValue:      new(big.Int).Set(rawValue),
		BlockNumber:   l.BlockNumber,
		Confirmations: confirmations,
	})
}
