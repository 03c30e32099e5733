package types

import (
	"errors"
	"fmt"
	"testing"

	errorsmod "cosmossdk.io/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeErrorKeepsMessage(t *testing.T) {
	err := NewBackendFailure("failed to build: boom")
	assert.Equal(t, "failed to build: boom", err.Error())
	assert.True(t, errors.Is(err, ErrBackendFailure))
	assert.False(t, errors.Is(err, ErrMarshalling))
}

func TestFieldErrorsNameTheField(t *testing.T) {
	err := NewMarshallingError("package_path", errors.New("invalid utf-8"))
	assert.Contains(t, err.Error(), "package_path")
	assert.True(t, errors.Is(err, ErrMarshalling))

	err = NewConfigError("verbosity", errors.New("unknown level"))
	assert.Contains(t, err.Error(), "verbosity")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestDescribe(t *testing.T) {
	require.Equal(t, ErrorDescriptor{}, Describe(nil))

	d := Describe(NewBackendFailure("failed to test: nope"))
	require.NotEmpty(t, d.Codespace)
	assert.Equal(t, DefaultCodespace, d.Codespace)
	assert.Equal(t, uint32(4), d.Code)
	assert.Equal(t, CategoryToolchain, d.Category)
	assert.Equal(t, "failed to test: nope", d.Message)

	d = Describe(errorsmod.Wrap(ErrOutOfGas, "charging 10"))
	assert.Equal(t, CategoryOutOfGas, d.Category)
	assert.Equal(t, uint32(8), d.Code)

	d = Describe(fmt.Errorf("context: %w", ErrMissingExtension))
	assert.Equal(t, CategoryMissingExtension, d.Category)

	d = Describe(errors.New("random"))
	assert.Equal(t, CategoryUnknown, d.Category)
	assert.Equal(t, "random", d.Message)
}
