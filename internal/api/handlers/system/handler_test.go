package system

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"paygate/internal/addresssource"
	"paygate/internal/core/chainclient"
	"paygate/internal/core/eventbus"
	"paygate/internal/core/registry"
	"paygate/internal/core/watcher"
	"paygate/internal/logger"
	"paygate/internal/store"
	"paygate/internal/types"
)

type noopClient struct{ head uint64 }

func (c *noopClient) BlockNumber(context.Context) (uint64, error) { return c.head, nil }
func (c *noopClient) GetLogs(context.Context, chainclient.Filter) ([]chainclient.Log, error) {
	return nil, nil
}
func (c *noopClient) GetReceipt(context.Context, common.Hash) (*chainclient.Receipt, error) {
	return nil, nil
}
func (c *noopClient) Close() {}

func newTestWatcher(t *testing.T, networkID string, head uint64) *watcher.ChainWatcher {
	t.Helper()

	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	chain := &types.Chain{
		ID:                    networkID,
		RPCUrl:                "https://rpc.example.test",
		RequiredConfirmations: 5,
	}
	bus := eventbus.New(log)
	addrs := addresssource.NewFixedAddressSource(nil)
	reg := registry.New(store.New(), addrs, bus, map[string]*types.Chain{networkID: chain})

	w := watcher.New(chain, &noopClient{head: head}, reg, bus, log)
	require.NoError(t, w.Initialize(context.Background()))
	return w
}

func TestNetworkStatusReportsPerChain(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log, err := logger.NewLogger(logger.WithLevel("error"))
	require.NoError(t, err)

	watchers := map[string]*watcher.ChainWatcher{
		"BEP20":  newTestWatcher(t, "BEP20", 100),
		"POLYGON": newTestWatcher(t, "POLYGON", 200),
	}
	h := NewHandler(watchers, log)

	router := gin.New()
	group := router.Group("/api/v1")
	h.SetupRoutes(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/network-status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body []NetworkStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	require.Equal(t, "BEP20", body[0].ID)
	require.Equal(t, ChainStatusInactive, body[0].Status)
	require.Equal(t, uint64(100), body[0].LastBlock)
	require.Equal(t, "POLYGON", body[1].ID)
	require.Equal(t, uint64(200), body[1].LastBlock)
}
