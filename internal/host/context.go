package host

import (
	"context"
	"fmt"
	"slices"
)

// CallContext is handed to a contract for the duration of one receipt. Writes
// are buffered and only reach the Store if the receipt succeeds; the same
// holds for outgoing calls.
type CallContext struct {
	ctx         context.Context
	store       Store
	signer      AccountID
	predecessor AccountID
	current     AccountID
	prepaid     Gas
	used        Gas
	blockTime   uint64
	view        bool
	callback    *PromiseResult

	writes   map[string][]byte
	logs     []string
	outgoing []*Promise
	newID    func() uint64
}

// Context is the context of the runtime loop executing this receipt.
func (cc *CallContext) Context() context.Context { return cc.ctx }

// Signer is the account that submitted the originating transaction.
func (cc *CallContext) Signer() AccountID { return cc.signer }

// Predecessor is the immediate caller. It equals CurrentAccount when the
// receipt is a continuation scheduled by this contract.
func (cc *CallContext) Predecessor() AccountID { return cc.predecessor }

func (cc *CallContext) CurrentAccount() AccountID { return cc.current }

func (cc *CallContext) PrepaidGas() Gas { return cc.prepaid }

func (cc *CallContext) RemainingGas() Gas {
	if cc.used >= cc.prepaid {
		return 0
	}
	return cc.prepaid - cc.used
}

// BlockTimestamp is the receipt execution time in unix nanoseconds.
func (cc *CallContext) BlockTimestamp() uint64 { return cc.blockTime }

// Log appends a line to the receipt outcome.
func (cc *CallContext) Log(format string, args ...any) {
	cc.logs = append(cc.logs, fmt.Sprintf(format, args...))
}

// UseGas burns g, failing once the prepaid budget is exhausted.
func (cc *CallContext) UseGas(g Gas) error {
	if g > cc.RemainingGas() {
		cc.used = cc.prepaid
		return fmt.Errorf("%w: %d", ErrGasExceeded, cc.prepaid)
	}
	cc.used += g
	return nil
}

// PromiseResult returns the result of the call this receipt continues, if any.
func (cc *CallContext) PromiseResult() (PromiseResult, bool) {
	if cc.callback == nil {
		return PromiseResult{}, false
	}
	return *cc.callback, true
}

// Call schedules method on target with gas attached. The call is dispatched
// only after this receipt completes successfully.
func (cc *CallContext) Call(target AccountID, method string, args any, gas Gas) (*Promise, error) {
	if cc.view {
		return nil, ErrViewPromise
	}
	if gas == 0 || gas > MaxPrepaidGas {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGas, gas)
	}
	p := &Promise{
		id:          cc.newID(),
		receiver:    target,
		method:      method,
		args:        args,
		gas:         gas,
		signer:      cc.signer,
		predecessor: cc.current,
		newID:       cc.newID,
	}
	cc.outgoing = append(cc.outgoing, p)
	return p, nil
}

func (cc *CallContext) read(key string) ([]byte, bool, error) {
	if v, ok := cc.writes[key]; ok {
		return v, true, nil
	}
	return cc.store.Get(cc.ctx, string(cc.current), key)
}

func (cc *CallContext) write(key string, value []byte) error {
	if cc.view {
		return ErrViewWrite
	}
	if err := cc.UseGas(StorageWriteGas); err != nil {
		return err
	}
	if cc.writes == nil {
		cc.writes = make(map[string][]byte)
	}
	cc.writes[key] = value
	return nil
}

// commit flushes buffered writes as one batch in key order.
func (cc *CallContext) commit() error {
	if len(cc.writes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(cc.writes))
	for k := range cc.writes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	batch := make([]Write, 0, len(keys))
	for _, k := range keys {
		batch = append(batch, Write{Key: k, Value: cc.writes[k]})
	}
	return cc.store.Apply(cc.ctx, string(cc.current), batch)
}
