// Package addresssource provides the pluggable recipient-address
// assignment SPEC_FULL.md adds at the SessionRegistry's boundary (§3
// AddressSource).
package addresssource

import "context"

// AddressSource produces the recipient address assigned to a new session.
type AddressSource interface {
	NewAddress(ctx context.Context, network, sessionID string) (string, error)
}

// FixedAddressSource returns each chain's single configured recipient
// address for every session, matching the core's single-recipient-per-chain
// log filter (§6's on-wire filter watches exactly one address per chain).
type FixedAddressSource struct {
	recipients map[string]string // network -> recipient address
}

// NewFixedAddressSource builds a FixedAddressSource from a network ->
// recipient map, typically derived from the configured chains.
func NewFixedAddressSource(recipients map[string]string) *FixedAddressSource {
	return &FixedAddressSource{recipients: recipients}
}

func (f *FixedAddressSource) NewAddress(_ context.Context, network, _ string) (string, error) {
	addr, ok := f.recipients[network]
	if !ok {
		return "", ErrUnknownNetwork
	}
	return addr, nil
}
