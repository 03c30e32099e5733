package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvRoundTrip(t *testing.T) {
	env := Env{
		BlockHeight:    100,
		BlockTimestamp: 1578939743,
		TxHash:         [32]byte{1, 2, 3},
		Sender:         StdAddress,
		SessionID:      7,
	}
	bz, err := MarshalEnv(env)
	require.NoError(t, err)

	decoded, err := UnmarshalEnv(bz)
	require.NoError(t, err)
	assert.Equal(t, env, decoded)
}

func TestUnmarshalEnvRejectsGarbage(t *testing.T) {
	_, err := UnmarshalEnv(nil)
	require.Error(t, err)

	_, err = UnmarshalEnv([]byte{0xc1})
	require.Error(t, err)
}
