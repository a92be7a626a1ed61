// Package chainclient is a thin, typed wrapper over an EVM JSON-RPC
// endpoint: BlockNumber, GetLogs, GetReceipt. One Client is constructed per
// active chain.
package chainclient

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Log is a chain-agnostic normalization of an Ethereum event log.
type Log struct {
	Address     common.Address
	Topics      []common.Hash
	Data        []byte
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
}

// Receipt is the minimal transaction receipt information the watcher needs.
type Receipt struct {
	BlockNumber uint64
	Status      uint64
}

// Filter describes a getLogs request.
type Filter struct {
	Address   common.Address
	Topics    [][]common.Hash
	FromBlock uint64
	ToBlock   uint64
}

// Client is the contract every per-chain RPC wrapper must satisfy. All
// calls honor ctx's deadline; the client does not retry internally —
// retry policy lives in the caller (ChainWatcher.Tick).
type Client interface {
	// BlockNumber returns the current chain head.
	BlockNumber(ctx context.Context) (uint64, error)
	// GetLogs returns logs matching filter. Returns an *errors.AppError
	// with code ErrCodeRangeTooWide when the provider rejects the
	// requested range.
	GetLogs(ctx context.Context, filter Filter) ([]Log, error)
	// GetReceipt returns the receipt for hash, or a not-found AppError.
	GetReceipt(ctx context.Context, hash common.Hash) (*Receipt, error)
	// Close releases the underlying RPC connection.
	Close()
}

// TransferEventSignature is the canonical ERC-20 Transfer event signature.
const TransferEventSignature = "Transfer(address,address,uint256)"

// PadAddressTopic left-pads an address into the 32-byte topic form used to
// match it against an indexed event argument.
func PadAddressTopic(addr common.Address) common.Hash {
	var hash common.Hash
	copy(hash[12:], addr.Bytes())
	return hash
}

// RawValueFromData parses the unindexed uint256 value out of an ERC-20
// Transfer log's data field.
func RawValueFromData(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}
