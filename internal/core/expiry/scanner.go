// Package expiry periodically sweeps PENDING sessions past their
// expiresAt and transitions them to EXPIRED via the registry.
package expiry

import (
	"context"
	"time"

	"paygate/internal/core/registry"
	"paygate/internal/logger"
)

// DefaultInterval is used when the configured interval is zero or exceeds
// the documented 30s ceiling.
const DefaultInterval = 30 * time.Second

// MaxInterval is the upper bound on the scan interval.
const MaxInterval = 30 * time.Second

// Scanner periodically calls registry.ExpireDue on a ticker.
type Scanner struct {
	registry *registry.Registry
	log      logger.Logger
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Scanner with the given interval, clamped to (0, MaxInterval].
func New(reg *registry.Registry, log logger.Logger, interval time.Duration) *Scanner {
	if interval <= 0 || interval > MaxInterval {
		interval = DefaultInterval
	}
	return &Scanner{registry: reg, log: log, interval: interval}
}

// Start schedules periodic ExpireDue calls until Stop is called.
// Idempotent: calling Start while already running is a no-op.
func (s *Scanner) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.log.Info("starting session expiry scanner", logger.String("interval", s.interval.String()))

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := s.registry.ExpireDue(runCtx, time.Now()); err != nil {
					s.log.Error("session expiry scan failed", logger.Error(err))
				}
			}
		}
	}()
}

// Stop cancels the scanner and waits for the in-flight scan to finish.
// Idempotent.
func (s *Scanner) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
}
