package registry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygate/internal/addresssource"
	"paygate/internal/core/eventbus"
	"paygate/internal/errors"
	"paygate/internal/logger"
	"paygate/internal/store"
	"paygate/internal/types"
)

const testNetwork = "BEP20_TESTNET"

func newTestRegistry(t *testing.T, chain *types.Chain) (*Registry, *eventbus.Bus, *fakeClock) {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	bus := eventbus.New(log)
	addrs := addresssource.NewFixedAddressSource(map[string]string{testNetwork: chain.Recipient.Hex()})
	reg := New(store.New(), addrs, bus, map[string]*types.Chain{testNetwork: chain})

	clock := &fakeClock{t: time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)}
	reg.now = clock.Now
	return reg, bus, clock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testChain() *types.Chain {
	return &types.Chain{
		ID:                    testNetwork,
		RPCUrl:                "https://rpc.example.test",
		TokenContract:         common.HexToAddress("0x1111111111111111111111111111111111111111"),
		TokenDecimals:         18,
		RequiredConfirmations: 3,
		Recipient:             common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
}

func drain(ch <-chan types.Event, n int) []types.Event {
	events := make([]types.Event, 0, n)
	for i := 0; i < n; i++ {
		select {
		case e := <-ch:
			events = append(events, e)
		case <-time.After(time.Second):
			return events
		}
	}
	return events
}

func TestCreateSessionAssignsRecipientAndPublishesEvent(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)

	session, err := reg.CreateSession(context.Background(), CreateSessionInput{
		Amount:   "100",
		Currency: "USDT",
		Network:  testNetwork,
	})
	require.NoError(t, err)
	assert.Equal(t, types.SessionPending, session.Status)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", session.Address)

	got := drain(events, 1)
	require.Len(t, got, 1)
	assert.Equal(t, types.EventSessionCreated, got[0].Type)
}

func TestCreateSessionUnknownNetwork(t *testing.T) {
	reg, _, _ := newTestRegistry(t, testChain())
	_, err := reg.CreateSession(context.Background(), CreateSessionInput{Amount: "100", Currency: "USDT", Network: "NOPE"})
	require.Error(t, err)
}

// Address uniqueness (§3/§8): with a single fixed recipient per chain, a
// second CreateSession while the first is still PENDING would otherwise
// silently mint a session sharing the first's address and orphan it.
func TestCreateSessionRejectsWhenAddressAlreadyOpen(t *testing.T) {
	reg, _, _ := newTestRegistry(t, testChain())
	ctx := context.Background()

	_, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)

	_, err = reg.CreateSession(ctx, CreateSessionInput{Amount: "50", Currency: "USDT", Network: testNetwork})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAddressUnavailable, appErr.Code)
}

// S1: a matching transfer below required confirmations leaves the session
// PENDING and emits transfer.detected with matchedSession=true.
func TestApplyMatchedBelowConfirmations(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1) // session.created

	target, _ := ToSmallestUnit("100", 18)
	err = reg.Apply(ctx, Observation{
		Network:       testNetwork,
		TxHash:        "0xabc",
		LogIndex:      0,
		From:          "0x3333333333333333333333333333333333333333",
		To:            session.Address,
		RawValue:      target,
		BlockNumber:   10,
		Confirmations: 1,
	})
	require.NoError(t, err)

	got := drain(events, 1)
	require.Len(t, got, 1)
	assert.Equal(t, types.EventTransferDetected, got[0].Type)
	data := got[0].Data.(types.TransferDetectedData)
	assert.True(t, data.Matched)
	assert.Equal(t, session.ID, data.SessionID)

	refreshed, err := reg.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionPending, refreshed.Status)
}

// S2: confirmations crossing the threshold on a later sighting completes
// the session and emits transfer.confirmed then session.completed.
func TestApplyConfirmationCrossingCompletesSession(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	target, _ := ToSmallestUnit("100", 18)
	from := "0x4444444444444444444444444444444444444444"
	obs := Observation{
		Network:     testNetwork,
		TxHash:      "0xdef",
		LogIndex:    1,
		From:        from,
		To:          session.Address,
		RawValue:    target,
		BlockNumber: 20,
	}

	obs.Confirmations = 1
	require.NoError(t, reg.Apply(ctx, obs))
	drain(events, 1) // transfer.detected

	obs.Confirmations = 3
	require.NoError(t, reg.Apply(ctx, obs))

	got := drain(events, 2)
	require.Len(t, got, 2)
	assert.Equal(t, types.EventTransferConfirmed, got[0].Type)
	assert.Equal(t, types.EventSessionCompleted, got[1].Type)

	refreshed, err := reg.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, refreshed.Status)
	require.NotNil(t, refreshed.CompletedAt)
	assert.NotEmpty(t, refreshed.MatchedTransferID)
}

// S3: an amount below the -5% tolerance floor is rejected by the match
// gate but the transfer is still recorded and linked to the session.
func TestApplyAmountBelowToleranceRejected(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	tooLow, _ := ToSmallestUnit("90", 18) // more than 5% short of 100
	err = reg.Apply(ctx, Observation{
		Network:       testNetwork,
		TxHash:        "0x111",
		LogIndex:      0,
		From:          "0x5555555555555555555555555555555555555555",
		To:            session.Address,
		RawValue:      tooLow,
		BlockNumber:   5,
		Confirmations: 5,
	})
	require.NoError(t, err)

	got := drain(events, 1)
	require.Len(t, got, 1)
	data := got[0].Data.(types.TransferDetectedData)
	assert.False(t, data.Matched)
	assert.Equal(t, ReasonAmountBelowTolerance, data.Reason)
	assert.Equal(t, session.ID, data.SessionID)

	refreshed, err := reg.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionPending, refreshed.Status)
}

// An amount exactly at the -5% floor is accepted.
func TestApplyAmountAtToleranceFloorAccepted(t *testing.T) {
	chain := testChain()
	chain.RequiredConfirmations = 1
	reg, bus, _ := newTestRegistry(t, chain)
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	atFloor, _ := ToSmallestUnit("95", 18)
	err = reg.Apply(ctx, Observation{
		Network:       testNetwork,
		TxHash:        "0x222",
		LogIndex:      0,
		From:          "0x6666666666666666666666666666666666666666",
		To:            session.Address,
		RawValue:      atFloor,
		BlockNumber:   7,
		Confirmations: 1,
	})
	require.NoError(t, err)

	got := drain(events, 3)
	require.Len(t, got, 3)
	assert.Equal(t, types.EventTransferDetected, got[0].Type)
	assert.Equal(t, types.EventTransferConfirmed, got[1].Type)
	assert.Equal(t, types.EventSessionCompleted, got[2].Type)
}

// S4: a sender outside the allowlist never completes the session even at
// full confirmations.
func TestApplySenderNotAllowed(t *testing.T) {
	chain := testChain()
	chain.RequiredConfirmations = 1
	allowed := common.HexToAddress("0x7777777777777777777777777777777777777777")
	chain.SenderAllowlist = map[common.Address]struct{}{allowed: {}}

	reg, bus, _ := newTestRegistry(t, chain)
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	target, _ := ToSmallestUnit("100", 18)
	err = reg.Apply(ctx, Observation{
		Network:       testNetwork,
		TxHash:        "0x333",
		LogIndex:      0,
		From:          "0x8888888888888888888888888888888888888888",
		To:            session.Address,
		RawValue:      target,
		BlockNumber:   9,
		Confirmations: 1,
	})
	require.NoError(t, err)

	got := drain(events, 1)
	require.Len(t, got, 1)
	data := got[0].Data.(types.TransferDetectedData)
	assert.False(t, data.Matched)
	assert.Equal(t, ReasonSenderNotAllowed, data.Reason)

	refreshed, err := reg.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionPending, refreshed.Status)
}

// S5: a transfer to an address with no open session is recorded as an
// unlinked observation.
func TestApplyNoSessionForAddress(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	err := reg.Apply(ctx, Observation{
		Network:       testNetwork,
		TxHash:        "0x444",
		LogIndex:      0,
		From:          "0x9999999999999999999999999999999999999999",
		To:            "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		RawValue:      big.NewInt(1),
		BlockNumber:   1,
		Confirmations: 1,
	})
	require.NoError(t, err)

	got := drain(events, 1)
	require.Len(t, got, 1)
	data := got[0].Data.(types.TransferDetectedData)
	assert.False(t, data.Matched)
	assert.Empty(t, data.SessionID)
	assert.Equal(t, ReasonNoSession, data.Reason)
}

// Confirmations must never move backward: a lower re-observation is
// ignored entirely.
func TestApplyConfirmationsMonotonic(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	target, _ := ToSmallestUnit("100", 18)
	obs := Observation{
		Network:     testNetwork,
		TxHash:      "0x555",
		LogIndex:    0,
		From:        "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		To:          session.Address,
		RawValue:    target,
		BlockNumber: 30,
	}

	obs.Confirmations = 2
	require.NoError(t, reg.Apply(ctx, obs))
	drain(events, 1)

	obs.Confirmations = 1 // stale re-observation
	require.NoError(t, reg.Apply(ctx, obs))

	select {
	case e := <-events:
		t.Fatalf("unexpected event published for a non-increasing confirmation count: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

// S6: a transfer that only reaches its confirmation threshold after its
// session has already expired confirms (for audit) without completing
// the session.
func TestApplyConfirmedAfterExpiryDoesNotComplete(t *testing.T) {
	chain := testChain()
	reg, bus, clock := newTestRegistry(t, chain)
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork, ExpirationMinutes: 1})
	require.NoError(t, err)
	drain(events, 1)

	target, _ := ToSmallestUnit("100", 18)
	obs := Observation{
		Network:     testNetwork,
		TxHash:      "0x666",
		LogIndex:    0,
		From:        "0xcccccccccccccccccccccccccccccccccccccccc",
		To:          session.Address,
		RawValue:    target,
		BlockNumber: 40,
	}
	obs.Confirmations = 1
	require.NoError(t, reg.Apply(ctx, obs))
	drain(events, 1)

	clock.Advance(2 * time.Minute)
	require.NoError(t, reg.ExpireDue(ctx, clock.Now()))
	expiredEvt := drain(events, 1)
	require.Len(t, expiredEvt, 1)
	assert.Equal(t, types.EventSessionExpired, expiredEvt[0].Type)

	obs.Confirmations = chain.RequiredConfirmations
	require.NoError(t, reg.Apply(ctx, obs))

	got := drain(events, 1)
	require.Len(t, got, 1)
	assert.Equal(t, types.EventTransferConfirmed, got[0].Type)
	data := got[0].Data.(types.TransferConfirmedData)
	assert.Empty(t, data.SessionID)

	refreshed, err := reg.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionExpired, refreshed.Status)
}

func TestExpireDueIsIdempotent(t *testing.T) {
	reg, bus, clock := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	_, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork, ExpirationMinutes: 1})
	require.NoError(t, err)
	drain(events, 1)

	clock.Advance(time.Minute)
	require.NoError(t, reg.ExpireDue(ctx, clock.Now()))
	drain(events, 1)

	require.NoError(t, reg.ExpireDue(ctx, clock.Now()))
	select {
	case e := <-events:
		t.Fatalf("unexpected duplicate session.expired event: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRecreateSessionRequiresExpired(t *testing.T) {
	reg, bus, _ := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{Amount: "100", Currency: "USDT", Network: testNetwork})
	require.NoError(t, err)
	drain(events, 1)

	_, err = reg.RecreateSession(ctx, session.ID)
	require.Error(t, err)
}

func TestRecreateSessionCarriesTermsForward(t *testing.T) {
	reg, bus, clock := newTestRegistry(t, testChain())
	events, _ := bus.Subscribe("test", 8)
	ctx := context.Background()

	session, err := reg.CreateSession(ctx, CreateSessionInput{
		Amount:            "42.5",
		Currency:          "USDT",
		Network:           testNetwork,
		ClientRefID:       "order-1",
		ExpirationMinutes: 1,
	})
	require.NoError(t, err)
	drain(events, 1)

	clock.Advance(2 * time.Minute)
	require.NoError(t, reg.ExpireDue(ctx, clock.Now()))
	drain(events, 1)

	recreated, err := reg.RecreateSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, recreated.OriginalSessionID)
	assert.Equal(t, "42.5", recreated.Amount)
	assert.Equal(t, "order-1", recreated.ClientRefID)
	assert.Equal(t, types.SessionPending, recreated.Status)

	got := drain(events, 1)
	require.Len(t, got, 1)
	assert.Equal(t, types.EventSessionRecreated, got[0].Type)
}

func TestListSessionsRejectsOutOfRangeLimit(t *testing.T) {
	reg, _, _ := newTestRegistry(t, testChain())
	ctx := context.Background()

	_, err := reg.ListSessions(ctx, types.SessionFilter{}, 1, 0)
	require.Error(t, err)

	_, err = reg.ListSessions(ctx, types.SessionFilter{}, 1, 101)
	require.Error(t, err)

	_, err = reg.ListSessions(ctx, types.SessionFilter{}, 0, 10)
	require.Error(t, err)
}
