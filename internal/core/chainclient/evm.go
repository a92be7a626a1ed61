package chainclient

import (
	"context"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"paygate/internal/errors"
	"paygate/internal/logger"
)

const defaultCallTimeout = 10 * time.Second

// rangeTooWidePatterns are substrings seen in provider error messages when
// a getLogs call spans too many blocks. Matched the way the teacher's
// retryOperation classifies retriable errors via a shouldRetry predicate.
var rangeTooWidePatterns = []string{
	"query returned more than",
	"block range is too large",
	"limit exceeded",
	"exceed maximum block range",
}

// EVMClient implements Client for EVM-compatible chains (BEP20, Polygon,
// Amoy, ...) over go-ethereum's ethclient/rpc.
type EVMClient struct {
	client    *ethclient.Client
	rpcClient *rpc.Client
	chainID   string
	log       logger.Logger
}

// Dial connects to rpcURL and returns an EVMClient for chainID (used only
// for logging/error context, not for transport selection).
func Dial(ctx context.Context, chainID, rpcURL string, log logger.Logger) (*EVMClient, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.NewRPCError(err)
	}

	return &EVMClient{
		client:    ethclient.NewClient(rpcClient),
		rpcClient: rpcClient,
		chainID:   chainID,
		log:       log,
	}, nil
}

// BlockNumber returns the current chain head.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	head, err := c.client.BlockNumber(ctx)
	if err != nil {
		return 0, errors.NewRPCError(err)
	}
	return head, nil
}

// GetLogs builds an ethereum.FilterQuery from filter and converts results
// into the chain-agnostic Log type.
func (c *EVMClient) GetLogs(ctx context.Context, filter Filter) ([]Log, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	query := ethereum.FilterQuery{
		Addresses: []common.Address{filter.Address},
		Topics:    filter.Topics,
		FromBlock: new(big.Int).SetUint64(filter.FromBlock),
		ToBlock:   new(big.Int).SetUint64(filter.ToBlock),
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		if isRangeTooWide(err) {
			return nil, errors.NewRangeTooWideError(err)
		}
		return nil, errors.NewRPCError(err)
	}

	result := make([]Log, len(logs))
	for i, l := range logs {
		result[i] = Log{
			Address:     l.Address,
			Topics:      l.Topics,
			Data:        l.Data,
			BlockNumber: l.BlockNumber,
			TxHash:      l.TxHash,
			LogIndex:    l.Index,
		}
	}
	return result, nil
}

// GetReceipt returns the receipt for hash.
func (c *EVMClient) GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultCallTimeout)
	defer cancel()

	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, errors.NewNotFoundError("transaction receipt")
		}
		return nil, errors.NewRPCError(err)
	}

	return &Receipt{
		BlockNumber: receipt.BlockNumber.Uint64(),
		Status:      receipt.Status,
	}, nil
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.client.Close()
}

func isRangeTooWide(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, pattern := range rangeTooWidePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
