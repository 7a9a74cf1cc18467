package host

// InitMethod is invoked once when a contract is deployed.
const InitMethod = "new"

// Contract dispatches a named method. Returning a *Promise created during the
// call makes the receipt resolve with that promise's eventual result.
type Contract interface {
	Invoke(cc *CallContext, method string, args any) (any, error)
}

// Transaction is a signed request to invoke a method.
type Transaction struct {
	Signer   AccountID
	Receiver AccountID
	Method   string
	Args     any
	// Gas attached to the first receipt. Zero means MaxPrepaidGas.
	Gas Gas
}
