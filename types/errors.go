package types

import (
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
)

// DefaultCodespace is the codespace every bridge error is registered in.
const DefaultCodespace = "movevm"

var (
	// ErrMarshalling is returned when a byte view does not hold what the
	// field requires, typically invalid UTF-8.
	ErrMarshalling = errorsmod.Register(DefaultCodespace, 2, "marshalling error")
	// ErrInvalidConfig is returned when a textual configuration field cannot be parsed.
	ErrInvalidConfig = errorsmod.Register(DefaultCodespace, 3, "invalid configuration")
	// ErrBackendFailure wraps failures of the external toolchain.
	ErrBackendFailure = errorsmod.Register(DefaultCodespace, 4, "backend failure")
	// ErrTestFailure is returned when one or more unit tests did not pass.
	ErrTestFailure = errorsmod.Register(DefaultCodespace, 5, "unit test failure")
	// ErrInfrastructure is returned when the test runner could not be started.
	ErrInfrastructure = errorsmod.Register(DefaultCodespace, 6, "infrastructure failure")
	// ErrMissingExtension is returned by a native whose context is not attached.
	ErrMissingExtension = errorsmod.Register(DefaultCodespace, 7, "missing native extension")
	// ErrOutOfGas is returned once a gas meter's limit is exceeded.
	ErrOutOfGas = errorsmod.Register(DefaultCodespace, 8, "out of gas")
	// ErrGoCallback is returned when a host callback fails or panics.
	ErrGoCallback = errorsmod.Register(DefaultCodespace, 9, "go callback failure")
	// ErrNativeAbort is returned when a native aborts with a Move abort code.
	ErrNativeAbort = errorsmod.Register(DefaultCodespace, 10, "native abort")
)

// ErrorCategory is the coarse class of an error surfaced to the foreign caller.
type ErrorCategory string

const (
	CategoryMarshalling      ErrorCategory = "marshalling"
	CategoryConfiguration    ErrorCategory = "configuration"
	CategoryToolchain        ErrorCategory = "toolchain"
	CategoryTestFailure      ErrorCategory = "test_failure"
	CategoryInfrastructure   ErrorCategory = "infrastructure"
	CategoryMissingExtension ErrorCategory = "missing_extension"
	CategoryOutOfGas         ErrorCategory = "out_of_gas"
	CategoryCallback         ErrorCategory = "callback"
	CategoryAbort            ErrorCategory = "abort"
	CategoryUnknown          ErrorCategory = "unknown"
)

var categories = []struct {
	err      *errorsmod.Error
	category ErrorCategory
}{
	{ErrMarshalling, CategoryMarshalling},
	{ErrInvalidConfig, CategoryConfiguration},
	{ErrBackendFailure, CategoryToolchain},
	{ErrTestFailure, CategoryTestFailure},
	{ErrInfrastructure, CategoryInfrastructure},
	{ErrMissingExtension, CategoryMissingExtension},
	{ErrOutOfGas, CategoryOutOfGas},
	{ErrGoCallback, CategoryCallback},
	{ErrNativeAbort, CategoryAbort},
}

// BridgeError is an error whose message is exactly what the foreign caller
// sees. Kind classifies it and is reachable through errors.Is.
type BridgeError struct {
	Kind *errorsmod.Error
	Msg  string
}

var _ error = (*BridgeError)(nil)

func (e *BridgeError) Error() string {
	if e == nil {
		return "(nil)"
	}
	return e.Msg
}

// Unwrap exposes the category for errors.Is.
func (e *BridgeError) Unwrap() error { return e.Kind }

// Cause lets errorsmod walk to the registered error.
func (e *BridgeError) Cause() error { return e.Kind }

// NewBackendFailure creates a toolchain failure with the given message.
func NewBackendFailure(msg string) error {
	return &BridgeError{Kind: ErrBackendFailure, Msg: msg}
}

// NewMarshallingError reports a byte view field that could not be decoded.
func NewMarshallingError(field string, err error) error {
	return &BridgeError{Kind: ErrMarshalling, Msg: fmt.Sprintf("invalid %s: %v", field, err)}
}

// NewConfigError reports a configuration field that could not be parsed.
func NewConfigError(field string, err error) error {
	return &BridgeError{Kind: ErrInvalidConfig, Msg: fmt.Sprintf("invalid %s: %v", field, err)}
}

// ErrorDescriptor is what crosses the boundary instead of a Go error value.
type ErrorDescriptor struct {
	Codespace string        `json:"codespace"`
	Code      uint32        `json:"code"`
	Category  ErrorCategory `json:"category"`
	Message   string        `json:"message"`
}

// Describe flattens err into an ErrorDescriptor. Errors outside the bridge's
// taxonomy are reported with CategoryUnknown and code 1.
func Describe(err error) ErrorDescriptor {
	if err == nil {
		return ErrorDescriptor{}
	}
	for _, c := range categories {
		if errors.Is(err, c.err) {
			return ErrorDescriptor{
				Codespace: c.err.Codespace(),
				Code:      c.err.ABCICode(),
				Category:  c.category,
				Message:   err.Error(),
			}
		}
	}
	return ErrorDescriptor{
		Codespace: errorsmod.UndefinedCodespace,
		Code:      1,
		Category:  CategoryUnknown,
		Message:   err.Error(),
	}
}
