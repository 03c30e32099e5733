package api

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/initia-labs/movevm/types"
)

// GoError is the result code of a host callback as seen by the VM.
type GoError int32

const (
	GoErrorNone GoError = 0
	// GoErrorPanic means the callback panicked and the panic was recovered.
	GoErrorPanic GoError = 1
	// GoErrorBadArgument means the VM passed an argument the callback could not use.
	GoErrorBadArgument GoError = 2
	// GoErrorCannotSerialize means the callback result could not be encoded.
	GoErrorCannotSerialize GoError = 3
	// GoErrorUser means the callback returned an error of its own.
	GoErrorUser GoError = 4
	// GoErrorUnimplemented means the host does not provide this capability.
	GoErrorUnimplemented GoError = 5
	GoErrorOther         GoError = -1
)

func (e GoError) String() string {
	switch e {
	case GoErrorNone:
		return "none"
	case GoErrorPanic:
		return "panic"
	case GoErrorBadArgument:
		return "bad_argument"
	case GoErrorCannotSerialize:
		return "cannot_serialize"
	case GoErrorUser:
		return "user"
	case GoErrorUnimplemented:
		return "unimplemented"
	default:
		return "other"
	}
}

// CallbackError is a failed host callback. It matches types.ErrGoCallback
// under errors.Is, as well as the error the callback returned, if any.
type CallbackError struct {
	Code   GoError
	Method string
	Msg    string
	cause  error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s callback failed (%s): %s", e.Method, e.Code, e.Msg)
}

func (e *CallbackError) Unwrap() []error {
	if e.cause == nil {
		return []error{types.ErrGoCallback}
	}
	return []error{types.ErrGoCallback, e.cause}
}

/****** DB ********/

// KVStore is the minimal store the host hands to the VM. Implementations
// report failures by panicking.
type KVStore interface {
	Get(key []byte) []byte
	Has(key []byte) bool
	Set(key, value []byte)
	Delete(key []byte)
}

/****** GoAPI ******/

// recoverPanic turns a panic in a host callback into a *CallbackError stored
// in ret. It must be deferred directly by the guarded method.
func recoverPanic(logger zerolog.Logger, method string, ret *error) {
	rec := recover()
	switch r := rec.(type) {
	case nil:
		// Do nothing, there was no panic
	case *CallbackError:
		*ret = r
	case error:
		logger.Error().Err(r).Str("method", method).Msg("panic in go callback")
		*ret = &CallbackError{Code: GoErrorPanic, Method: method, Msg: r.Error(), cause: r}
	default:
		logger.Error().Str("method", method).Msgf("panic in go callback: %#v", rec)
		*ret = &CallbackError{Code: GoErrorPanic, Method: method, Msg: fmt.Sprint(rec)}
	}
}

func userError(method string, err error) error {
	if err == nil {
		return nil
	}
	return &CallbackError{Code: GoErrorUser, Method: method, Msg: err.Error(), cause: err}
}

// guardedAPI recovers panics of the wrapped host API. Methods that cannot
// return an error re-panic with a *CallbackError, which the native dispatcher
// recovers into an ordinary error.
type guardedAPI struct {
	inner  types.GoAPI
	logger zerolog.Logger
}

var _ types.GoAPI = guardedAPI{}

// GuardAPI wraps a host API so that neither panics nor returned errors escape
// without being classified as a *CallbackError.
func GuardAPI(inner types.GoAPI, logger zerolog.Logger) types.GoAPI {
	if g, ok := inner.(guardedAPI); ok {
		return g
	}
	return guardedAPI{inner: inner, logger: logger}
}

func (g guardedAPI) GetAccountInfo(addr types.AccountAddress) (found bool, accountNumber, sequence uint64, accountType uint8) {
	var err error
	func() {
		defer recoverPanic(g.logger, "get_account_info", &err)
		found, accountNumber, sequence, accountType = g.inner.GetAccountInfo(addr)
	}()
	if err != nil {
		panic(err)
	}
	return found, accountNumber, sequence, accountType
}

func (g guardedAPI) AmountToShare(validator []byte, metadata types.AccountAddress, amount uint64) (share uint64, err error) {
	defer recoverPanic(g.logger, "amount_to_share", &err)
	share, err = g.inner.AmountToShare(validator, metadata, amount)
	return share, userError("amount_to_share", err)
}

func (g guardedAPI) ShareToAmount(validator []byte, metadata types.AccountAddress, share uint64) (amount uint64, err error) {
	defer recoverPanic(g.logger, "share_to_amount", &err)
	amount, err = g.inner.ShareToAmount(validator, metadata, share)
	return amount, userError("share_to_amount", err)
}

func (g guardedAPI) UnbondTimestamp() (ts uint64) {
	var err error
	func() {
		defer recoverPanic(g.logger, "unbond_timestamp", &err)
		ts = g.inner.UnbondTimestamp()
	}()
	if err != nil {
		panic(err)
	}
	return ts
}

func (g guardedAPI) GetPrice(pairID string) (price []byte, updatedAt, decimals uint64, err error) {
	defer recoverPanic(g.logger, "get_price", &err)
	price, updatedAt, decimals, err = g.inner.GetPrice(pairID)
	return price, updatedAt, decimals, userError("get_price", err)
}

func (g guardedAPI) Query(request []byte, gasBalance uint64) (response []byte, gasUsed uint64, err error) {
	defer recoverPanic(g.logger, "query", &err)
	response, gasUsed, err = g.inner.Query(request, gasBalance)
	return response, gasUsed, userError("query", err)
}

// RecoverCallbackPanic converts a re-panicked *CallbackError back into an
// error. Any other panic is propagated.
func RecoverCallbackPanic(ret *error) {
	rec := recover()
	if rec == nil {
		return
	}
	if cbErr, ok := rec.(*CallbackError); ok {
		*ret = cbErr
		return
	}
	panic(rec)
}
