package gas

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/movevm/types"
)

func TestTestMeterCharge(t *testing.T) {
	m := NewTestMeter(InitialParameters(), 100)
	require.NoError(t, m.Charge(60, "a"))
	require.NoError(t, m.Charge(40, "b"))
	assert.Equal(t, uint64(100), m.GasConsumed())
	assert.Equal(t, uint64(0), m.Balance())

	err := m.Charge(1, "c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrOutOfGas))
	var oog *OutOfGasError
	require.True(t, errors.As(err, &oog))
	assert.Equal(t, uint64(1), oog.Wanted)
	assert.Equal(t, uint64(0), oog.Available)
	assert.Equal(t, "c", oog.Descriptor)

	// failed charges are not recorded
	assert.Equal(t, uint64(100), m.GasConsumed())
}

func TestTestMeterDoesNotOverflow(t *testing.T) {
	m := NewTestMeter(InitialParameters(), 10)
	require.NoError(t, m.Charge(5, "a"))
	err := m.Charge(math.MaxUint64, "huge")
	require.Error(t, err)
	assert.Equal(t, uint64(5), m.GasConsumed())
}

func TestTestMeterSaturatesLargeSizes(t *testing.T) {
	m := NewTestMeter(InitialParameters(), 1_000_000)

	err := m.ChargeWrite(math.MaxUint64 / 2)
	require.Error(t, err)
	var oog *OutOfGasError
	require.True(t, errors.As(err, &oog))
	assert.Equal(t, uint64(math.MaxUint64), oog.Wanted)

	require.Error(t, m.ChargeInstruction(InstrVec, math.MaxUint64))
	require.Error(t, m.ChargeInstruction(InstrCall, 1<<62))
	assert.Zero(t, m.GasConsumed())

	assert.Equal(t, uint64(math.MaxUint64), linear(math.MaxUint64-1, 1, 2))
	assert.Equal(t, uint64(7), linear(1, 2, 3))
}

func TestTestMeterInstructions(t *testing.T) {
	p := InitialParameters()
	m := NewTestMeter(p, 1_000_000)

	require.NoError(t, m.ChargeInstruction(InstrSimple, 0))
	assert.Equal(t, p.Instruction.Simple, m.GasConsumed())

	before := m.GasConsumed()
	require.NoError(t, m.ChargeInstruction(InstrCall, 3))
	assert.Equal(t, p.Instruction.Call+3*p.Instruction.CallPerArg, m.GasConsumed()-before)

	before = m.GasConsumed()
	require.NoError(t, m.ChargeWrite(10))
	assert.Equal(t, p.Storage.WriteBase+10*p.Storage.WritePerByte, m.GasConsumed()-before)

	r := m.Report()
	assert.Equal(t, uint64(1_000_000), r.Limit)
	assert.Equal(t, r.Limit-r.Used, r.Remaining)
}

func TestTestMeterClone(t *testing.T) {
	proto := NewTestMeter(InitialParameters(), 50)
	a := proto.Clone()
	b := proto.Clone()

	require.NoError(t, a.Charge(50, "a"))
	assert.Equal(t, uint64(0), a.Balance())
	assert.Equal(t, uint64(50), b.Balance())
	assert.Equal(t, uint64(50), proto.Balance())
	assert.Equal(t, uint64(50), b.Limit())
}

func TestNativeCost(t *testing.T) {
	c := NativeCost{Base: 10, PerByte: 2}
	assert.Equal(t, uint64(10), c.Cost(0))
	assert.Equal(t, uint64(16), c.Cost(3))
	assert.Equal(t, uint64(10), c.Cost(-1))

	huge := NativeCost{Base: 10, PerByte: math.MaxUint64}
	assert.Equal(t, uint64(math.MaxUint64), huge.Cost(2))
}
