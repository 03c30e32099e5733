package natives

import (
	"errors"
	"fmt"

	"github.com/initia-labs/movevm/internal/api"
	"github.com/initia-labs/movevm/internal/gas"
	"github.com/initia-labs/movevm/types"
)

// NativeContext is what a native sees of the running session.
type NativeContext struct {
	Extensions *NativeContextExtensions
	Gas        types.GasMeter
}

// NativeFunction implements a Move native. Arguments and results are BCS
// encoded values, one per slice.
type NativeFunction func(ctx *NativeContext, args [][]byte) ([][]byte, error)

// AbortError is a Move abort raised by a native.
type AbortError struct {
	Module   string
	Function string
	Code     uint64
	Reason   string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s::%s aborted with code %d: %s", e.Module, e.Function, e.Code, e.Reason)
}

func (e *AbortError) Unwrap() error {
	return types.ErrNativeAbort
}

// Abort codes shared by the natives.
const (
	AbortAlreadyExists    uint64 = 100
	AbortNotFound         uint64 = 101
	AbortAlreadyRequested uint64 = 102
	AbortHostFailure      uint64 = 103
)

// NativeEntry binds a native to its module and function name.
type NativeEntry struct {
	Address  types.AccountAddress
	Module   string
	Function string
	Fn       NativeFunction
}

// NativeFunctionTable is the full list of natives handed to the VM.
type NativeFunctionTable []NativeEntry

// Lookup finds the native for module::function.
func (t NativeFunctionTable) Lookup(module, function string) (NativeFunction, bool) {
	for _, e := range t {
		if e.Module == module && e.Function == function {
			return e.Fn, true
		}
	}
	return nil, false
}

// Call dispatches module::function. Host callbacks that panicked are
// returned as errors.
func (t NativeFunctionTable) Call(ctx *NativeContext, module, function string, args [][]byte) (ret [][]byte, err error) {
	fn, ok := t.Lookup(module, function)
	if !ok {
		return nil, fmt.Errorf("native %s::%s not found", module, function)
	}
	defer api.RecoverCallbackPanic(&err)
	return fn(ctx, args)
}

// All returns every native, each charging its cost from nativeGas.
func All(nativeGas gas.NativeGasParameters, misc gas.MiscGasParameters) NativeFunctionTable {
	n := natives{gas: nativeGas, misc: misc}
	add := func(module, function string, fn NativeFunction) NativeEntry {
		return NativeEntry{Address: types.StdAddress, Module: module, Function: function, Fn: fn}
	}
	return NativeFunctionTable{
		add("account", "exists_at", n.accountExistsAt),
		add("account", "get_account_info", n.accountGetInfo),
		add("account", "request_create_account", n.accountRequestCreate),
		add("block", "get_block_info", n.blockGetInfo),
		add("code", "request_publish", n.codeRequestPublish),
		add("cosmos", "stargate", n.cosmosStargate),
		add("event", "write_module_event", n.eventWriteModuleEvent),
		add("oracle", "get_price", n.oracleGetPrice),
		add("query", "query_stargate", n.queryStargate),
		add("staking", "amount_to_share", n.stakingAmountToShare),
		add("staking", "share_to_amount", n.stakingShareToAmount),
		add("table", "new_table_handle", n.tableNewHandle),
		add("table", "add_box", n.tableAddBox),
		add("table", "borrow_box", n.tableBorrowBox),
		add("table", "contains_box", n.tableContainsBox),
		add("table", "remove_box", n.tableRemoveBox),
		add("transaction", "get_transaction_hash", n.transactionGetHash),
		add("transaction", "generate_unique_address", n.transactionGenerateUniqueAddress),
	}
}

type natives struct {
	gas  gas.NativeGasParameters
	misc gas.MiscGasParameters
}

func expectArgs(module, function string, args [][]byte, n int) error {
	if len(args) != n {
		return types.ErrMarshalling.Wrapf("%s::%s takes %d arguments, got %d", module, function, n, len(args))
	}
	return nil
}

func argsSize(args [][]byte) int {
	total := 0
	for _, a := range args {
		total += len(a)
	}
	return total
}

func charge(ctx *NativeContext, cost gas.NativeCost, size int, descriptor string) error {
	return ctx.Gas.Charge(cost.Cost(size), descriptor)
}

func abort(module, function string, code uint64, reason string) error {
	return &AbortError{Module: module, Function: function, Code: code, Reason: reason}
}

//---------- account ---------

func (n natives) accountExistsAt(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("account", "exists_at", args, 1); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Account, 0, "account::exists_at"); err != nil {
		return nil, err
	}
	addr, err := decodeAddress(args[0])
	if err != nil {
		return nil, argError(0, "address", err)
	}
	accounts, err := GetExtension[*AccountContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	found, _, _, _ := accounts.GetAccountInfo(addr)
	return [][]byte{encodeBool(found)}, nil
}

func (n natives) accountGetInfo(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("account", "get_account_info", args, 1); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Account, 0, "account::get_account_info"); err != nil {
		return nil, err
	}
	addr, err := decodeAddress(args[0])
	if err != nil {
		return nil, argError(0, "address", err)
	}
	accounts, err := GetExtension[*AccountContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	found, num, seq, typ := accounts.GetAccountInfo(addr)
	return [][]byte{encodeBool(found), encodeU64(num), encodeU64(seq), encodeU8(typ)}, nil
}

func (n natives) accountRequestCreate(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("account", "request_create_account", args, 2); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Account, 0, "account::request_create_account"); err != nil {
		return nil, err
	}
	addr, err := decodeAddress(args[0])
	if err != nil {
		return nil, argError(0, "address", err)
	}
	typ, err := decodeU8(args[1])
	if err != nil {
		return nil, argError(1, "u8", err)
	}
	accounts, err := GetExtension[*AccountContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	num, err := accounts.RequestCreateAccount(addr, typ)
	if err != nil {
		return nil, abort("account", "request_create_account", AbortAlreadyExists, err.Error())
	}
	return [][]byte{encodeU64(num)}, nil
}

//---------- block ---------

func (n natives) blockGetInfo(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("block", "get_block_info", args, 0); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Block, 0, "block::get_block_info"); err != nil {
		return nil, err
	}
	block, err := GetExtension[*BlockContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	return [][]byte{encodeU64(block.Height), encodeU64(block.Timestamp)}, nil
}

//---------- code ---------

func (n natives) codeRequestPublish(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("code", "request_publish", args, 3); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Code, argsSize(args), "code::request_publish"); err != nil {
		return nil, err
	}
	publisher, err := decodeAddress(args[0])
	if err != nil {
		return nil, argError(0, "address", err)
	}
	bundle, err := decodeBytesVector(args[1])
	if err != nil {
		return nil, argError(1, "vector<vector<u8>>", err)
	}
	policy, err := decodeU8(args[2])
	if err != nil {
		return nil, argError(2, "u8", err)
	}
	code, err := GetExtension[*CodeContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	if err := code.RequestPublish(PublishRequest{Publisher: publisher, CodeBundle: bundle, UpgradePolicy: policy}); err != nil {
		return nil, abort("code", "request_publish", AbortAlreadyRequested, err.Error())
	}
	return nil, nil
}

//---------- cosmos ---------

func (n natives) cosmosStargate(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("cosmos", "stargate", args, 3); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Cosmos, argsSize(args), "cosmos::stargate"); err != nil {
		return nil, err
	}
	sender, err := decodeAddress(args[0])
	if err != nil {
		return nil, argError(0, "address", err)
	}
	data, err := decodeBytes(args[1])
	if err != nil {
		return nil, argError(1, "vector<u8>", err)
	}
	allowFailure, err := decodeBool(args[2])
	if err != nil {
		return nil, argError(2, "bool", err)
	}
	cosmos, err := GetExtension[*CosmosContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	cosmos.Dispatch(CosmosMessage{Sender: sender, Data: append([]byte(nil), data...), AllowFailure: allowFailure})
	return nil, nil
}

//---------- event ---------

func (n natives) eventWriteModuleEvent(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("event", "write_module_event", args, 2); err != nil {
		return nil, err
	}
	typeTag, err := decodeString(args[0])
	if err != nil {
		return nil, argError(0, "string", err)
	}
	data, err := decodeBytes(args[1])
	if err != nil {
		return nil, argError(1, "vector<u8>", err)
	}
	// priced by abstract size rather than raw bytes
	size := int(n.misc.AbstractValueSize.PerByte) * (len(typeTag) + len(data))
	if err := charge(ctx, n.gas.Event, size, "event::write_module_event"); err != nil {
		return nil, err
	}
	events, err := GetExtension[*EventContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	events.Emit(Event{TypeTag: typeTag, Data: append([]byte(nil), data...)})
	return nil, nil
}

//---------- oracle ---------

func (n natives) oracleGetPrice(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("oracle", "get_price", args, 1); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Oracle, 0, "oracle::get_price"); err != nil {
		return nil, err
	}
	pairID, err := decodeString(args[0])
	if err != nil {
		return nil, argError(0, "string", err)
	}
	oracle, err := GetExtension[*OracleContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	price, updatedAt, decimals, err := oracle.api.GetPrice(pairID)
	if err != nil {
		return nil, abort("oracle", "get_price", AbortHostFailure, err.Error())
	}
	if len(price) != types.Uint256Len {
		return nil, abort("oracle", "get_price", AbortHostFailure, fmt.Sprintf("price has %d bytes", len(price)))
	}
	return [][]byte{price, encodeU64(updatedAt), encodeU64(decimals)}, nil
}

//---------- query ---------

func (n natives) queryStargate(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("query", "query_stargate", args, 1); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Query, len(args[0]), "query::query_stargate"); err != nil {
		return nil, err
	}
	request, err := decodeBytes(args[0])
	if err != nil {
		return nil, argError(0, "vector<u8>", err)
	}
	query, err := GetExtension[*QueryContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	response, gasUsed, err := query.api.Query(request, ctx.Gas.Balance())
	if chargeErr := ctx.Gas.Charge(gasUsed, "query::query_stargate host"); chargeErr != nil {
		return nil, chargeErr
	}
	if errors.Is(err, types.ErrOutOfGas) {
		return nil, err
	} else if err != nil {
		return nil, abort("query", "query_stargate", AbortHostFailure, err.Error())
	}
	return [][]byte{encodeBytes(response)}, nil
}

//---------- staking ---------

func (n natives) stakingConvert(ctx *NativeContext, function string, args [][]byte) ([][]byte, error) {
	if err := expectArgs("staking", function, args, 3); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Staking, 0, "staking::"+function); err != nil {
		return nil, err
	}
	validator, err := decodeBytes(args[0])
	if err != nil {
		return nil, argError(0, "vector<u8>", err)
	}
	metadata, err := decodeAddress(args[1])
	if err != nil {
		return nil, argError(1, "address", err)
	}
	value, err := decodeU64(args[2])
	if err != nil {
		return nil, argError(2, "u64", err)
	}
	staking, err := GetExtension[*StakingContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	var out uint64
	if function == "amount_to_share" {
		out, err = staking.api.AmountToShare(validator, metadata, value)
	} else {
		out, err = staking.api.ShareToAmount(validator, metadata, value)
	}
	if err != nil {
		return nil, abort("staking", function, AbortHostFailure, err.Error())
	}
	return [][]byte{encodeU64(out)}, nil
}

func (n natives) stakingAmountToShare(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	return n.stakingConvert(ctx, "amount_to_share", args)
}

func (n natives) stakingShareToAmount(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	return n.stakingConvert(ctx, "share_to_amount", args)
}

//---------- table ---------

func (n natives) tableNewHandle(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("table", "new_table_handle", args, 0); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Table.NewTableHandle, 0, "table::new_table_handle"); err != nil {
		return nil, err
	}
	tables, err := GetExtension[*TableContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	return [][]byte{encodeAddress(tables.NewTableHandle())}, nil
}

// tableEntry decodes the (handle, key) prefix shared by the box natives.
func tableEntry(ctx *NativeContext, function string, args [][]byte, n int) (*TableContext, types.AccountAddress, []byte, error) {
	if err := expectArgs("table", function, args, n); err != nil {
		return nil, types.AccountAddress{}, nil, err
	}
	handle, err := decodeAddress(args[0])
	if err != nil {
		return nil, types.AccountAddress{}, nil, argError(0, "address", err)
	}
	key, err := decodeBytes(args[1])
	if err != nil {
		return nil, types.AccountAddress{}, nil, argError(1, "vector<u8>", err)
	}
	tables, err := GetExtension[*TableContext](ctx.Extensions)
	if err != nil {
		return nil, types.AccountAddress{}, nil, err
	}
	return tables, handle, key, nil
}

func (n natives) tableAddBox(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := charge(ctx, n.gas.Table.AddBox, argsSize(args), "table::add_box"); err != nil {
		return nil, err
	}
	tables, handle, key, err := tableEntry(ctx, "add_box", args, 3)
	if err != nil {
		return nil, err
	}
	value, err := decodeBytes(args[2])
	if err != nil {
		return nil, argError(2, "vector<u8>", err)
	}
	_, exists, err := tables.Get(handle, key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, abort("table", "add_box", AbortAlreadyExists, "entry already exists")
	}
	tables.set(handle, key, value)
	return nil, nil
}

func (n natives) tableBorrowBox(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := charge(ctx, n.gas.Table.BorrowBox, argsSize(args), "table::borrow_box"); err != nil {
		return nil, err
	}
	tables, handle, key, err := tableEntry(ctx, "borrow_box", args, 2)
	if err != nil {
		return nil, err
	}
	value, found, err := tables.Get(handle, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, abort("table", "borrow_box", AbortNotFound, "entry not found")
	}
	return [][]byte{encodeBytes(value)}, nil
}

func (n natives) tableContainsBox(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := charge(ctx, n.gas.Table.ContainsBox, argsSize(args), "table::contains_box"); err != nil {
		return nil, err
	}
	tables, handle, key, err := tableEntry(ctx, "contains_box", args, 2)
	if err != nil {
		return nil, err
	}
	_, found, err := tables.Get(handle, key)
	if err != nil {
		return nil, err
	}
	return [][]byte{encodeBool(found)}, nil
}

func (n natives) tableRemoveBox(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := charge(ctx, n.gas.Table.RemoveBox, argsSize(args), "table::remove_box"); err != nil {
		return nil, err
	}
	tables, handle, key, err := tableEntry(ctx, "remove_box", args, 2)
	if err != nil {
		return nil, err
	}
	value, found, err := tables.Get(handle, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, abort("table", "remove_box", AbortNotFound, "entry not found")
	}
	tables.remove(handle, key)
	return [][]byte{encodeBytes(value)}, nil
}

//---------- transaction ---------

func (n natives) transactionGetHash(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("transaction", "get_transaction_hash", args, 0); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Transaction, 0, "transaction::get_transaction_hash"); err != nil {
		return nil, err
	}
	tx, err := GetExtension[*TransactionContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	hash := tx.TxHash()
	return [][]byte{encodeBytes(hash[:])}, nil
}

func (n natives) transactionGenerateUniqueAddress(ctx *NativeContext, args [][]byte) ([][]byte, error) {
	if err := expectArgs("transaction", "generate_unique_address", args, 0); err != nil {
		return nil, err
	}
	if err := charge(ctx, n.gas.Transaction, 0, "transaction::generate_unique_address"); err != nil {
		return nil, err
	}
	tx, err := GetExtension[*TransactionContext](ctx.Extensions)
	if err != nil {
		return nil, err
	}
	return [][]byte{encodeAddress(tx.GenerateUniqueAddress())}, nil
}
