package types

// Gas represents the amount of computational resources consumed during execution.
type Gas = uint64

// GasMeter is charged by natives and by the interpreter loop. Charge returns an
// error wrapping ErrOutOfGas once the meter's limit is exceeded; the charge
// that failed is not recorded.
type GasMeter interface {
	Charge(amount Gas, descriptor string) error
	GasConsumed() Gas
	Balance() Gas
}
