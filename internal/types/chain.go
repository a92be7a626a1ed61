package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Chain errors.
var (
	ErrInvalidAddress       = errors.New("invalid address")
	ErrUnsupportedChain     = errors.New("unsupported blockchain")
	ErrMissingRPCURL        = errors.New("missing RPC URL")
	ErrInvalidTokenDecimals = errors.New("token decimals out of range")
	ErrInvalidConfirmations = errors.New("required confirmations must be positive")
)

// Chain is the static, per-network configuration for one supported EVM
// chain. One Chain is constructed per entry in ACTIVE_NETWORKS.
type Chain struct {
	// ID is the stable network tag used throughout the system
	// (BEP20, BEP20_TESTNET, POLYGON, AMOY).
	ID string

	RPCUrl                string
	TokenContract         common.Address
	TokenDecimals         uint8
	RequiredConfirmations uint64
	PollIntervalMs        uint64
	MaxBlockRange         uint64
	Recipient             common.Address

	// TargetAmount, when set, overrides a session's own amount for the
	// completion match gate (decimal string, smallest-unit agnostic).
	TargetAmount string

	// SenderAllowlist, when non-empty, restricts which `from` addresses
	// may complete a session on this chain.
	SenderAllowlist map[common.Address]struct{}
}

const (
	DefaultMaxBlockRange     = 500
	DefaultPollIntervalMs    = 5000
	MinTokenDecimals         = 0
	MaxTokenDecimals         = 30
	MinRequiredConfirmations = 1
)

// Validate checks the invariants from the data model: tokenDecimals in
// [0,30] and requiredConfirmations >= 1.
func (c *Chain) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("chain %s: %w", c.ID, ErrMissingRPCURL)
	}
	if c.TokenDecimals > MaxTokenDecimals {
		return fmt.Errorf("chain %s: decimals=%d: %w", c.ID, c.TokenDecimals, ErrInvalidTokenDecimals)
	}
	if c.RequiredConfirmations < MinRequiredConfirmations {
		return fmt.Errorf("chain %s: confirmations=%d: %w", c.ID, c.RequiredConfirmations, ErrInvalidConfirmations)
	}
	return nil
}

// AllowsSender reports whether from may complete a session on this chain.
// An empty allowlist permits any sender.
func (c *Chain) AllowsSender(from common.Address) bool {
	if len(c.SenderAllowlist) == 0 {
		return true
	}
	_, ok := c.SenderAllowlist[from]
	return ok
}

// IsValidAddress validates an EVM address string.
func IsValidAddress(address string) bool {
	return ValidateAddress(address) == nil
}

// ValidateAddress validates an EVM address string (0x followed by 40 hex
// characters). Mixed-case input must be a valid EIP-55 checksum or fully
// lowercase.
func ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: invalid format", ErrInvalidAddress)
	}

	checksumAddr := common.HexToAddress(address)
	if address != checksumAddr.Hex() && address != strings.ToLower(checksumAddr.Hex()) {
		return fmt.Errorf("%w: checksum validation failed", ErrInvalidAddress)
	}

	return nil
}

// NormalizeAddress lowercases an address for use as an index key, matching
// the registry's (network, lowercase(address)) composite key.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}
