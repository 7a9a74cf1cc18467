package host

import (
	"fmt"
	"regexp"
)

// AccountID names a contract or a transaction signer.
type AccountID string

var accountIDPattern = regexp.MustCompile(`^[a-z0-9._-]{2,64}$`)

func ParseAccountID(s string) (AccountID, error) {
	if !accountIDPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountID, s)
	}
	return AccountID(s), nil
}

func (a AccountID) String() string { return string(a) }

// Gas is the execution budget unit. One TGas is 1e12 gas.
type Gas uint64

const TGas Gas = 1_000_000_000_000

const (
	// BaseReceiptGas is burnt by every receipt before the method runs.
	BaseReceiptGas Gas = 2*TGas + TGas/2
	// StorageWriteGas is burnt per key written.
	StorageWriteGas Gas = TGas / 2
	// MaxPrepaidGas caps what a transaction may attach.
	MaxPrepaidGas Gas = 300 * TGas
)
