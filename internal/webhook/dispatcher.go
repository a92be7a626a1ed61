// Package webhook delivers domain events to a single configured URL as a
// signed JSON envelope. Delivery mechanics (retry/backoff) are this
// subscriber's own concern; a failed delivery never blocks the EventBus.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"paygate/internal/core/eventbus"
	"paygate/internal/logger"
	"paygate/internal/types"
)

const (
	defaultTimeout    = 10 * time.Second
	maxRetries        = 3
	baseRetryDelay    = 1 * time.Second
	requestsPerSecond = 5
	burstSize         = 2

	subscriberName = "webhook"
)

// envelope is the documented wire format for every delivered event.
type envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Data      payload   `json:"data"`
}

type payload struct {
	Session  *types.Session  `json:"session,omitempty"`
	Transfer *types.Transfer `json:"transfer,omitempty"`
}

// Dispatcher subscribes to the EventBus and POSTs each event to url, signed
// with secret. Grounded on the teacher's rate-limited Etherscan HTTP client
// (rate.NewLimiter, defaultTimeout, exponential retry backoff).
type Dispatcher struct {
	url        string
	secret     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Logger

	unsubscribe eventbus.Unsubscribe
}

// New builds a Dispatcher. Call Start to begin consuming the bus.
func New(url, secret string, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		log:        log,
	}
}

// Start subscribes to bus and begins delivering events in the background
// until ctx is done or Stop is called.
func (d *Dispatcher) Start(ctx context.Context, bus *eventbus.Bus) {
	events, unsubscribe := bus.Subscribe(subscriberName, 0)
	d.unsubscribe = unsubscribe

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				d.deliver(ctx, event)
			}
		}
	}()
}

// Stop unsubscribes from the bus.
func (d *Dispatcher) Stop() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event types.Event) {
	env := toEnvelope(event)

	body, err := json.Marshal(env)
	if err != nil {
		d.log.Error("webhook: failed to encode event", logger.Error(err), logger.String("event_type", env.Type))
		return
	}

	if err := d.post(ctx, body); err != nil {
		d.log.Error("webhook: delivery failed", logger.Error(err), logger.String("event_type", env.Type))
	}
}

// post delivers body with up to maxRetries attempts and exponential
// backoff, honoring the shared rate limiter on every attempt.
func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Signature", d.sign(body))

		resp, err := d.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	return lastErr
}

// sign computes X-Signature: t=<unix>,v1=<hex HMAC-SHA256 over "<t>.<body>">.
func (d *Dispatcher) sign(body []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(d.secret))
	mac.Write([]byte(fmt.Sprintf("%d.", ts)))
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func toEnvelope(event types.Event) envelope {
	env := envelope{
		ID:        fmt.Sprintf("%s-%d", event.Type, event.CreatedAt.UnixNano()),
		Type:      string(event.Type),
		CreatedAt: event.CreatedAt,
	}

	switch data := event.Data.(type) {
	case types.SessionCreatedData:
		env.Data.Session = &data.Session
	case types.SessionRecreatedData:
		env.Data.Session = &data.Session
	case types.TransferDetectedData:
		env.Data.Transfer = &data.Transfer
	}

	return env
}
