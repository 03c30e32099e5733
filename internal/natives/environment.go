package natives

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/initia-labs/movevm/internal/api"
	"github.com/initia-labs/movevm/types"
)

// BlankAPI is the host API of unit tests: no accounts, a 1:1 staking ratio,
// zero prices and empty query responses.
type BlankAPI struct{}

var _ types.GoAPI = BlankAPI{}

func (BlankAPI) GetAccountInfo(types.AccountAddress) (bool, uint64, uint64, uint8) {
	return false, 0, 0, 0
}

func (BlankAPI) AmountToShare(_ []byte, _ types.AccountAddress, amount uint64) (uint64, error) {
	return amount, nil
}

func (BlankAPI) ShareToAmount(_ []byte, _ types.AccountAddress, share uint64) (uint64, error) {
	return share, nil
}

func (BlankAPI) UnbondTimestamp() uint64 {
	return 0
}

func (BlankAPI) GetPrice(string) ([]byte, uint64, uint64, error) {
	return types.SerializeUint64AsUint256(0), 0, 0, nil
}

func (BlankAPI) Query([]byte, uint64) ([]byte, uint64, error) {
	return []byte{}, 0, nil
}

// TestEnvironment is the mock chain state shared by every unit test of a
// process. The extension hook only ever reads these references, so all tests
// observe identical state regardless of order.
type TestEnvironment struct {
	API           *BlankAPI
	TableResolver *BlankTableResolver
}

// NewTestEnvironment returns a fresh environment. Most callers want
// DefaultTestEnvironment instead.
func NewTestEnvironment() *TestEnvironment {
	return &TestEnvironment{
		API:           &BlankAPI{},
		TableResolver: NewBlankTableResolver(),
	}
}

var (
	defaultEnv     *TestEnvironment
	defaultEnvOnce sync.Once
)

// DefaultTestEnvironment returns the process wide environment, built on first use.
func DefaultTestEnvironment() *TestEnvironment {
	defaultEnvOnce.Do(func() {
		defaultEnv = NewTestEnvironment()
	})
	return defaultEnv
}

// AddUnitTestContexts attaches the unit test contexts to exts: session 1,
// zero table handle seed, block 0 at time 0, zero sender and hash, empty
// code, cosmos and event contexts, and the blank host API.
func (env *TestEnvironment) AddUnitTestContexts(exts *NativeContextExtensions) {
	var zero [32]byte
	exts.Add(NewAccountContext(env.API, 1))
	exts.Add(NewTableContext(zero, env.TableResolver))
	exts.Add(NewBlockContext(0, 0))
	exts.Add(NewCodeContext())
	exts.Add(NewStakingContext(env.API))
	exts.Add(NewCosmosContext())
	exts.Add(NewTransactionContext(types.ZeroAddress, zero))
	exts.Add(NewEventContext())
	exts.Add(NewOracleContext(env.API))
	exts.Add(NewQueryContext(env.API))
}

// ExtensionHook populates the extension set of a unit test session.
type ExtensionHook func(exts *NativeContextExtensions)

var (
	hookMu        sync.RWMutex
	extensionHook ExtensionHook
)

// SetExtensionHook installs the process wide hook. A second call replaces the
// first without error.
func SetExtensionHook(hook ExtensionHook) {
	hookMu.Lock()
	defer hookMu.Unlock()
	extensionHook = hook
}

// ConfigureForUnitTest installs a hook that attaches env's contexts.
func ConfigureForUnitTest(env *TestEnvironment) {
	SetExtensionHook(env.AddUnitTestContexts)
}

// NewUnitTestExtensions builds a fresh extension set and runs the installed
// hook on it. Without a hook the set is empty.
func NewUnitTestExtensions() *NativeContextExtensions {
	exts := NewNativeContextExtensions()
	hookMu.RLock()
	hook := extensionHook
	hookMu.RUnlock()
	if hook != nil {
		hook(exts)
	}
	return exts
}

// ProductionParams are the host-provided pieces of a real invocation.
type ProductionParams struct {
	API types.GoAPI
	// TableResolver may be nil; tables then start empty.
	TableResolver  TableResolver
	BlockHeight    uint64
	BlockTimestamp uint64
	TxHash         [32]byte
	Sender         types.AccountAddress
	SessionID      uint64
	Logger         zerolog.Logger
}

// NewExtensions builds the extension set of a production invocation. The
// host API is guarded so its panics surface as callback errors.
func NewExtensions(p ProductionParams) *NativeContextExtensions {
	guarded := api.GuardAPI(p.API, p.Logger)
	exts := NewNativeContextExtensions()
	exts.Add(NewAccountContext(guarded, p.SessionID))
	exts.Add(NewTableContext(p.TxHash, p.TableResolver))
	exts.Add(NewBlockContext(p.BlockHeight, p.BlockTimestamp))
	exts.Add(NewCodeContext())
	exts.Add(NewStakingContext(guarded))
	exts.Add(NewCosmosContext())
	exts.Add(NewTransactionContext(p.Sender, p.TxHash))
	exts.Add(NewEventContext())
	exts.Add(NewOracleContext(guarded))
	exts.Add(NewQueryContext(guarded))
	return exts
}

// NewExtensionsFromEnv builds production extensions from a decoded env.
func NewExtensionsFromEnv(env types.Env, goAPI types.GoAPI, resolver TableResolver, logger zerolog.Logger) *NativeContextExtensions {
	return NewExtensions(ProductionParams{
		API:            goAPI,
		TableResolver:  resolver,
		BlockHeight:    env.BlockHeight,
		BlockTimestamp: env.BlockTimestamp,
		TxHash:         env.TxHash,
		Sender:         env.Sender,
		SessionID:      env.SessionID,
		Logger:         logger,
	})
}

// NewExtensionsFromPayload decodes a msgpack env payload and builds
// production extensions from it.
func NewExtensionsFromPayload(payload api.ByteSliceView, goAPI types.GoAPI, resolver TableResolver, logger zerolog.Logger) (*NativeContextExtensions, error) {
	env, err := types.UnmarshalEnv(payload.Read())
	if err != nil {
		return nil, types.NewMarshallingError("env", err)
	}
	return NewExtensionsFromEnv(env, goAPI, resolver, logger), nil
}
