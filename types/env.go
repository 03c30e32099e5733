package types

import (
	"fmt"

	"github.com/shamaton/msgpack/v2"
)

//---------- Env ---------

// Env is the execution environment of a single VM invocation. It carries the
// trusted block and transaction metadata the production extensions are built
// from.
//
// Env is msgpack encoded (as an array) before crossing the boundary.
type Env struct {
	// BlockHeight is the height of the block this transaction is executed in.
	BlockHeight uint64 `msgpack:"block_height"`
	// BlockTimestamp is the block time in seconds since unix epoch.
	BlockTimestamp uint64 `msgpack:"block_timestamp"`
	// TxHash is the hash of the transaction being executed.
	TxHash [32]byte `msgpack:"tx_hash"`
	// Sender is the signer of the transaction.
	Sender AccountAddress `msgpack:"sender"`
	// SessionID identifies the execution session. Account numbers handed out
	// by the account context are namespaced by it.
	SessionID uint64 `msgpack:"session_id"`
}

// MarshalEnv encodes an Env as a msgpack array.
func MarshalEnv(env Env) ([]byte, error) {
	return msgpack.MarshalAsArray(env)
}

// UnmarshalEnv decodes an env payload produced by MarshalEnv.
func UnmarshalEnv(data []byte) (Env, error) {
	var env Env
	if len(data) == 0 {
		return env, fmt.Errorf("empty env payload")
	}
	if err := msgpack.UnmarshalAsArray(data, &env); err != nil {
		return env, fmt.Errorf("cannot decode env payload: %w", err)
	}
	return env, nil
}
