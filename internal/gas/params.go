package gas

import (
	"math"
	"math/bits"

	"github.com/initia-labs/movevm/types"
)

// InstructionGasParameters prices bytecode instructions.
type InstructionGasParameters struct {
	// Simple covers stack and local operations, arithmetic and branches.
	Simple types.Gas
	// Call is charged per function call plus CallPerArg for every argument.
	Call       types.Gas
	CallPerArg types.Gas
	// LdConstPerByte is charged for the serialized size of loaded constants.
	LdConstPerByte types.Gas
	// Global covers borrow_global, exists, move_from and move_to.
	Global types.Gas
	// VecPerElem is charged by vector pack and unpack per element.
	VecPerElem types.Gas
}

// StorageGasParameters prices resource loads and writes.
type StorageGasParameters struct {
	LoadBase     types.Gas
	LoadPerByte  types.Gas
	WriteBase    types.Gas
	WritePerByte types.Gas
}

// GasParameters is the cost table of the interpreter loop.
type GasParameters struct {
	Instruction InstructionGasParameters
	Storage     StorageGasParameters
}

// NativeCost is a base cost plus a per byte cost.
type NativeCost struct {
	Base    types.Gas
	PerByte types.Gas
}

// Cost returns the total for an argument of n bytes.
func (c NativeCost) Cost(n int) types.Gas {
	if n <= 0 {
		return c.Base
	}
	return linear(c.Base, c.PerByte, uint64(n))
}

// linear returns base + per*n, saturating at math.MaxUint64 so an oversized
// argument always runs out of gas.
func linear(base, per, n uint64) types.Gas {
	hi, product := bits.Mul64(per, n)
	if hi != 0 {
		return math.MaxUint64
	}
	sum, carry := bits.Add64(base, product, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// TableGasParameters prices the table natives.
type TableGasParameters struct {
	NewTableHandle NativeCost
	AddBox         NativeCost
	BorrowBox      NativeCost
	ContainsBox    NativeCost
	RemoveBox      NativeCost
}

// NativeGasParameters prices every native function, grouped by module.
type NativeGasParameters struct {
	Account     NativeCost
	Block       NativeCost
	Code        NativeCost
	Cosmos      NativeCost
	Event       NativeCost
	Oracle      NativeCost
	Query       NativeCost
	Staking     NativeCost
	Table       TableGasParameters
	Transaction NativeCost
}

// AbstractValueSizeParameters give the abstract memory size of values, used
// to price events and query responses that are not raw bytes.
type AbstractValueSizeParameters struct {
	U8      types.Gas
	U64     types.Gas
	U256    types.Gas
	Bool    types.Gas
	Address types.Gas
	// PerByte applies to vector<u8> contents.
	PerByte types.Gas
}

// MiscGasParameters collect the cost parameters that are neither
// instructions nor natives.
type MiscGasParameters struct {
	AbstractValueSize AbstractValueSizeParameters
}

// InitialParameters returns the instruction table used by unit tests.
func InitialParameters() GasParameters {
	return GasParameters{
		Instruction: InstructionGasParameters{
			Simple:         1,
			Call:           20,
			CallPerArg:     2,
			LdConstPerByte: 1,
			Global:         50,
			VecPerElem:     2,
		},
		Storage: StorageGasParameters{
			LoadBase:     300,
			LoadPerByte:  1,
			WriteBase:    400,
			WritePerByte: 2,
		},
	}
}

// InitialNativeParameters returns the native cost table used by unit tests.
func InitialNativeParameters() NativeGasParameters {
	return NativeGasParameters{
		Account:     NativeCost{Base: 500},
		Block:       NativeCost{Base: 100},
		Code:        NativeCost{Base: 500, PerByte: 1},
		Cosmos:      NativeCost{Base: 1000, PerByte: 1},
		Event:       NativeCost{Base: 200, PerByte: 1},
		Oracle:      NativeCost{Base: 500},
		Query:       NativeCost{Base: 1000, PerByte: 1},
		Staking:     NativeCost{Base: 500},
		Transaction: NativeCost{Base: 100, PerByte: 1},
		Table: TableGasParameters{
			NewTableHandle: NativeCost{Base: 300},
			AddBox:         NativeCost{Base: 400, PerByte: 2},
			BorrowBox:      NativeCost{Base: 300, PerByte: 1},
			ContainsBox:    NativeCost{Base: 300, PerByte: 1},
			RemoveBox:      NativeCost{Base: 400, PerByte: 1},
		},
	}
}

// InitialMiscParameters returns the abstract value sizes used by unit tests.
func InitialMiscParameters() MiscGasParameters {
	return MiscGasParameters{
		AbstractValueSize: AbstractValueSizeParameters{
			U8:      40,
			U64:     40,
			U256:    40,
			Bool:    40,
			Address: 40,
			PerByte: 1,
		},
	}
}
