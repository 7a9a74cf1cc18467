// Package ownable implements the single-owner gate used by the rate store and
// the proxy.
package ownable

import (
	"fmt"

	"pricerelay/internal/domain"
	"pricerelay/internal/host"
)

// OnlyOwner fails unless the transaction signer is owner.
func OnlyOwner(cc *host.CallContext, owner host.AccountID) error {
	if cc.Signer() != owner {
		return fmt.Errorf("%w: %s", domain.ErrNotAnOwner, cc.Signer())
	}
	return nil
}

// Transfer checks the gate and logs the change. The caller persists next.
func Transfer(cc *host.CallContext, current, next host.AccountID) error {
	if err := OnlyOwner(cc, current); err != nil {
		return err
	}
	if _, err := host.ParseAccountID(string(next)); err != nil {
		return err
	}
	cc.Log("transfer ownership from %s to %s", current, next)
	return nil
}
