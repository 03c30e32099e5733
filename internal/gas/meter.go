package gas

import (
	"fmt"

	"github.com/initia-labs/movevm/types"
)

// OutOfGasError is returned once a charge would exceed the meter's limit.
type OutOfGasError struct {
	Wanted     uint64
	Available  uint64
	Descriptor string
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas: required %d, but only %d available (%s)", e.Wanted, e.Available, e.Descriptor)
}

func (e *OutOfGasError) Unwrap() error {
	return types.ErrOutOfGas
}

// InstructionKind selects an instruction cost class.
type InstructionKind uint8

const (
	InstrSimple InstructionKind = iota
	InstrCall
	InstrLdConst
	InstrGlobal
	InstrVec
)

// TestMeter is a bounded gas meter for unit tests. It is not safe for
// concurrent use; clone one meter per test instead.
type TestMeter struct {
	params   GasParameters
	limit    uint64
	consumed uint64
}

var _ types.GasMeter = (*TestMeter)(nil)

// NewTestMeter creates a meter charging params, capped at limit.
func NewTestMeter(params GasParameters, limit uint64) *TestMeter {
	return &TestMeter{
		params:   params,
		limit:    limit,
		consumed: 0,
	}
}

// Charge consumes amount. A failed charge leaves the meter unchanged.
func (m *TestMeter) Charge(amount types.Gas, descriptor string) error {
	if amount > m.Balance() {
		return &OutOfGasError{
			Wanted:     amount,
			Available:  m.Balance(),
			Descriptor: descriptor,
		}
	}
	m.consumed += amount
	return nil
}

// ChargeInstruction charges one instruction of the given kind. size is the
// argument count for calls, the constant size for loads, the element count
// for vector operations and the resource size for global operations.
func (m *TestMeter) ChargeInstruction(kind InstructionKind, size uint64) error {
	p := m.params.Instruction
	switch kind {
	case InstrCall:
		return m.Charge(linear(p.Call, p.CallPerArg, size), "call")
	case InstrLdConst:
		return m.Charge(linear(p.Simple, p.LdConstPerByte, size), "ld_const")
	case InstrGlobal:
		return m.Charge(linear(p.Global+m.params.Storage.LoadBase, m.params.Storage.LoadPerByte, size), "global")
	case InstrVec:
		return m.Charge(linear(p.Simple, p.VecPerElem, size), "vector")
	default:
		return m.Charge(p.Simple, "simple")
	}
}

// ChargeWrite charges a resource write of size bytes.
func (m *TestMeter) ChargeWrite(size uint64) error {
	s := m.params.Storage
	return m.Charge(linear(s.WriteBase, s.WritePerByte, size), "write")
}

// GasConsumed returns the gas used so far.
func (m *TestMeter) GasConsumed() types.Gas {
	return m.consumed
}

// Balance returns the gas left.
func (m *TestMeter) Balance() types.Gas {
	if m.consumed >= m.limit {
		return 0
	}
	return m.limit - m.consumed
}

// Limit returns the meter's cap.
func (m *TestMeter) Limit() types.Gas {
	return m.limit
}

// Clone returns an independent meter with the same parameters, limit and
// consumption.
func (m *TestMeter) Clone() *TestMeter {
	c := *m
	return &c
}

// Report contains information about gas usage
type Report struct {
	Limit     uint64
	Remaining uint64
	Used      uint64
}

// Report summarises the meter.
func (m *TestMeter) Report() Report {
	return Report{
		Limit:     m.limit,
		Remaining: m.Balance(),
		Used:      m.consumed,
	}
}
