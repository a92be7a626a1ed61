package expiry

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/addresssource"
	"paygate/internal/core/eventbus"
	"paygate/internal/core/registry"
	"paygate/internal/logger"
	"paygate/internal/store"
	"paygate/internal/types"
)

const testNetwork = "BEP20_TESTNET"

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	chain := &types.Chain{
		ID:                    testNetwork,
		RPCUrl:                "https://rpc.example.test",
		RequiredConfirmations: 3,
		Recipient:             common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	bus := eventbus.New(log)
	addrs := addresssource.NewFixedAddressSource(map[string]string{testNetwork: chain.Recipient.Hex()})
	return registry.New(store.New(), addrs, bus, map[string]*types.Chain{testNetwork: chain})
}

func TestScannerExpiresOverdueSessions(t *testing.T) {
	reg := newTestRegistry(t)
	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	reg.SetClock(func() time.Time { return past })

	session, err := reg.CreateSession(context.Background(), registry.CreateSessionInput{
		Amount: "100", Currency: "USDT", Network: testNetwork, ExpirationMinutes: 1,
	})
	require.NoError(t, err)
	reg.SetClock(time.Now)

	scanner := New(reg, log, 20*time.Millisecond)
	scanner.Start(context.Background())
	defer scanner.Stop()

	require.Eventually(t, func() bool {
		got, err := reg.GetSession(context.Background(), session.ID)
		return err == nil && got.Status == types.SessionExpired
	}, 2*time.Second, 10*time.Millisecond)
}

func TestScannerStartStopIdempotent(t *testing.T) {
	reg := newTestRegistry(t)
	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	scanner := New(reg, log, 10*time.Millisecond)
	scanner.Start(context.Background())
	scanner.Start(context.Background())
	scanner.Stop()
	scanner.Stop()
}

func TestNewClampsInvalidInterval(t *testing.T) {
	reg := newTestRegistry(t)
	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	scanner := New(reg, log, 0)
	assert.Equal(t, DefaultInterval, scanner.interval)

	scanner = New(reg, log, time.Hour)
	assert.Equal(t, DefaultInterval, scanner.interval)
}
