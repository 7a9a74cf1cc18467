package host

// PromiseResult is what a continuation receives from the call it waited on.
// Err is set when the call failed; Value is nil when the callee returned
// nothing.
type PromiseResult struct {
	Value any
	Err   error
}

func (r PromiseResult) Failed() bool { return r.Err != nil }

// Promise is a pending cross-contract call. Its ID doubles as the request
// token that correlates the call with its continuation.
type Promise struct {
	id          uint64
	receiver    AccountID
	method      string
	args        any
	gas         Gas
	signer      AccountID
	predecessor AccountID
	newID       func() uint64

	tx         *transaction
	dependency *Promise
	next       *Promise
	forward    []*Promise
	resolved   bool
	result     PromiseResult
}

func (p *Promise) ID() uint64 { return p.id }

// Then schedules method on the account that created p, to run exactly once
// after p resolves, whether p succeeded or failed. A promise takes at most one
// continuation.
func (p *Promise) Then(method string, args any, gas Gas) *Promise {
	if p.next != nil {
		panic("host: promise " + p.method + " already has a continuation")
	}
	c := &Promise{
		id:          p.newID(),
		receiver:    p.predecessor,
		method:      method,
		args:        args,
		gas:         gas,
		signer:      p.signer,
		predecessor: p.predecessor,
		newID:       p.newID,
		dependency:  p,
	}
	p.next = c
	return c
}
