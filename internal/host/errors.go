package host

import "errors"

var (
	ErrInvalidAccountID = errors.New("invalid account id")
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already registered")
	ErrMethodNotFound   = errors.New("method not found")
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrGasExceeded      = errors.New("exceeded the prepaid gas")
	ErrInvalidGas       = errors.New("invalid prepaid gas")
	ErrViewWrite        = errors.New("storage write is not allowed in a view call")
	ErrViewPromise      = errors.New("cross-contract calls are not allowed in a view call")
	ErrTxNotFound       = errors.New("transaction not found")
	ErrRuntimeStopped   = errors.New("runtime stopped")
)
