package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/initia-labs/movevm/types"
)

func TestLookup(t *testing.T) {
	l := NewLookup()
	assert.Nil(t, l.Get([]byte("foo")))

	l.Set([]byte("foo"), []byte("bar"))
	l.Set([]byte("fop"), []byte("baz"))
	assert.Equal(t, []byte("bar"), l.Get([]byte("foo")))

	iter := l.Iterator([]byte("foo"), nil)
	var keys []string
	for ; iter.Valid(); iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Close())
	assert.Equal(t, []string{"foo", "fop"}, keys)

	rev := l.ReverseIterator(nil, nil)
	require.True(t, rev.Valid())
	assert.Equal(t, []byte("fop"), rev.Key())
	require.NoError(t, rev.Close())

	l.Delete([]byte("foo"))
	assert.Nil(t, l.Get([]byte("foo")))
}

func TestMockAccountAPI(t *testing.T) {
	api := NewEmptyMockAPI(100)
	found, _, _, _ := api.GetAccountInfo(types.StdAddress)
	assert.False(t, found)

	api.AccountAPI.SetAccountInfo(types.StdAddress, 3, 9, 1)
	found, num, seq, typ := api.GetAccountInfo(types.StdAddress)
	assert.True(t, found)
	assert.Equal(t, uint64(3), num)
	assert.Equal(t, uint64(9), seq)
	assert.Equal(t, uint8(1), typ)
}

func TestMockStakingAPI(t *testing.T) {
	api := NewEmptyMockAPI(100)
	validator := []byte("val")

	_, err := api.AmountToShare(validator, types.StdAddress, 10)
	require.EqualError(t, err, "validator not found")

	api.StakingAPI.SetShareRatio(validator, types.ZeroAddress, 1, 1)
	_, err = api.AmountToShare(validator, types.StdAddress, 10)
	require.EqualError(t, err, "metadata not found")

	api.StakingAPI.SetShareRatio(validator, types.StdAddress, 2, 1)
	share, err := api.AmountToShare(validator, types.StdAddress, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), share)

	amount, err := api.ShareToAmount(validator, types.StdAddress, 20)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), amount)

	api.StakingAPI.SetShareRatio(validator, types.StdAddress, 0, 1)
	_, err = api.ShareToAmount(validator, types.StdAddress, 20)
	require.Error(t, err)

	assert.Equal(t, uint64(100)+UnbondingPeriod, api.UnbondTimestamp())
}

func TestMockOracleAPI(t *testing.T) {
	api := NewEmptyMockAPI(0)
	_, _, _, err := api.GetPrice("BITCOIN/USD")
	require.EqualError(t, err, "pair not found")

	api.OracleAPI.SetPrice("BITCOIN/USD", 12345, 1000, 8)
	price, updatedAt, decimals, err := api.GetPrice("BITCOIN/USD")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), updatedAt)
	assert.Equal(t, uint64(8), decimals)

	v, err := types.DeserializeUint256(price)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), v.Uint64())
}

func TestMockQueryAPI(t *testing.T) {
	api := NewEmptyMockAPI(0)
	_, _, err := api.Query([]byte("req"), 100)
	require.EqualError(t, err, "query not found")

	api.QueryAPI.SetResponse([]byte("req"), []byte("res"), 40)
	res, gasUsed, err := api.Query([]byte("req"), 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("res"), res)
	assert.Equal(t, uint64(40), gasUsed)

	_, _, err = api.Query([]byte("req"), 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrOutOfGas))
}
