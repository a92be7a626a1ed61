package addresssource

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownNetwork is returned when a source has no address configured
// for the requested network.
var ErrUnknownNetwork = errors.New("address source: unknown network")

// DerivedAddressSource labels every session with a deterministic
// per-session sub-address, for deployments that want per-session
// bookkeeping. It still resolves to the chain's single configured
// recipient for the actual on-chain log filter (§4.1 watches exactly one
// address per chain); the derived label is a memo distinguishing sessions
// sharing that recipient, not a distinct filtered address.
type DerivedAddressSource struct {
	recipients map[string]string
}

// NewDerivedAddressSource builds a DerivedAddressSource from a network ->
// recipient map.
func NewDerivedAddressSource(recipients map[string]string) *DerivedAddressSource {
	return &DerivedAddressSource{recipients: recipients}
}

func (d *DerivedAddressSource) NewAddress(_ context.Context, network, sessionID string) (string, error) {
	recipient, ok := d.recipients[network]
	if !ok {
		return "", ErrUnknownNetwork
	}
	// The label is informational only; the watcher always filters on the
	// chain's configured recipient regardless of this value.
	return fmt.Sprintf("%s#%s", recipient, sessionID), nil
}
