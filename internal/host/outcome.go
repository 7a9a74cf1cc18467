package host

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// ReceiptOutcome describes one executed method invocation.
type ReceiptOutcome struct {
	ID          uint64    `json:"id"`
	Receiver    AccountID `json:"receiver"`
	Method      string    `json:"method"`
	Predecessor AccountID `json:"predecessor"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	Logs        []string  `json:"logs"`
	GasBurnt    Gas       `json:"gas_burnt"`
}

// Outcome is the state of a submitted transaction. It stays pending until
// every receipt spawned by the transaction has run.
type Outcome struct {
	ID          uuid.UUID        `json:"id"`
	Signer      AccountID        `json:"signer"`
	Receiver    AccountID        `json:"receiver"`
	Method      string           `json:"method"`
	Status      Status           `json:"status"`
	Result      any              `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
	Receipts    []ReceiptOutcome `json:"receipts"`
	SubmittedAt time.Time        `json:"submitted_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`

	err error
}

// Err is the failure of the transaction's own call, if any.
func (o Outcome) Err() error { return o.err }

func (o Outcome) Final() bool { return o.Status != StatusPending }

// Logs flattens receipt logs in execution order.
func (o Outcome) Logs() []string {
	var out []string
	for _, r := range o.Receipts {
		out = append(out, r.Logs...)
	}
	return out
}

func (o Outcome) clone() Outcome {
	o.Receipts = slices.Clone(o.Receipts)
	return o
}

// History keeps finished outcomes queryable after the runtime forgets them.
type History interface {
	Put(o Outcome)
	Get(id uuid.UUID) (Outcome, bool)
}
