// Package proxy forwards reference data queries to a replaceable rate store so
// consumers keep a stable address when the backend changes.
package proxy

import (
	"fmt"

	"pricerelay/internal/contract/oracle"
	"pricerelay/internal/contract/ownable"
	"pricerelay/internal/domain"
	"pricerelay/internal/host"
)

const (
	MethodGetRef = "get_ref"
	MethodSetRef = "set_ref"
)

// SingleCallGas is attached to every forwarded query.
const SingleCallGas = 200 * host.TGas

type InitArgs struct {
	Ref host.AccountID `json:"ref"`
}

type SetRefArgs struct {
	NewRef host.AccountID `json:"new_ref"`
}

type State struct {
	Ref   host.AccountID `json:"ref"`
	Owner host.AccountID `json:"owner"`
}

type Contract struct {
	state host.Value[State]
}

func New() *Contract {
	return &Contract{state: host.NewValue[State](host.StateKey)}
}

func (c *Contract) Invoke(cc *host.CallContext, method string, args any) (any, error) {
	switch method {
	case host.InitMethod:
		a, err := host.DecodeArgs[InitArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.Init(cc, a.Ref)
	case oracle.MethodGetOwner:
		st, err := c.load(cc)
		return st.Owner, err
	case oracle.MethodTransferOwnership:
		a, err := host.DecodeArgs[oracle.TransferOwnershipArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.TransferOwnership(cc, a.NewOwner)
	case MethodGetRef:
		st, err := c.load(cc)
		return st.Ref, err
	case MethodSetRef:
		a, err := host.DecodeArgs[SetRefArgs](args)
		if err != nil {
			return nil, err
		}
		return nil, c.SetRef(cc, a.NewRef)
	case oracle.MethodGetReferenceData:
		a, err := host.DecodeArgs[oracle.PairArgs](args)
		if err != nil {
			return nil, err
		}
		return c.forward(cc, method, a)
	case oracle.MethodGetReferenceBulk, oracle.MethodGetReferenceEach:
		a, err := host.DecodeArgs[oracle.PairsArgs](args)
		if err != nil {
			return nil, err
		}
		return c.forward(cc, method, a)
	}
	return nil, fmt.Errorf("%w: %s", host.ErrMethodNotFound, method)
}

func (c *Contract) Init(cc *host.CallContext, ref host.AccountID) error {
	if _, exists, err := c.state.Get(cc); err != nil {
		return err
	} else if exists {
		return domain.ErrAlreadyInitialized
	}
	if _, err := host.ParseAccountID(string(ref)); err != nil {
		return err
	}
	return c.state.Set(cc, State{Ref: ref, Owner: cc.Signer()})
}

func (c *Contract) TransferOwnership(cc *host.CallContext, newOwner host.AccountID) error {
	st, err := c.load(cc)
	if err != nil {
		return err
	}
	if err = ownable.Transfer(cc, st.Owner, newOwner); err != nil {
		return err
	}
	st.Owner = newOwner
	return c.state.Set(cc, st)
}

// SetRef points the proxy at another rate store. Owner only.
func (c *Contract) SetRef(cc *host.CallContext, newRef host.AccountID) error {
	st, err := c.load(cc)
	if err != nil {
		return err
	}
	if err = ownable.OnlyOwner(cc, st.Owner); err != nil {
		return err
	}
	if _, err = host.ParseAccountID(string(newRef)); err != nil {
		return err
	}
	cc.Log("set ref from %s to %s", st.Ref, newRef)
	st.Ref = newRef
	return c.state.Set(cc, st)
}

// forward re-issues the query against the current ref. The returned promise
// makes the proxy receipt resolve with the store's answer unchanged.
func (c *Contract) forward(cc *host.CallContext, method string, args any) (*host.Promise, error) {
	st, err := c.load(cc)
	if err != nil {
		return nil, err
	}
	return cc.Call(st.Ref, method, args, SingleCallGas)
}

func (c *Contract) load(cc *host.CallContext) (State, error) {
	st, ok, err := c.state.Get(cc)
	if err != nil {
		return st, err
	}
	if !ok {
		return st, domain.ErrNotInitialized
	}
	return st, nil
}
