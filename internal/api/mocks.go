package api

import (
	"errors"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/initia-labs/movevm/types"
)

/*** Mock KVStore ****/

// Lookup is an in-memory KVStore.
type Lookup struct {
	db *dbm.MemDB
}

func NewLookup() *Lookup {
	return &Lookup{
		db: dbm.NewMemDB(),
	}
}

// Get wraps the underlying DB's Get method panicking on error.
func (l Lookup) Get(key []byte) []byte {
	v, err := l.db.Get(key)
	if err != nil {
		panic(err)
	}

	return v
}

// Has wraps the underlying DB's Has method panicking on error.
func (l Lookup) Has(key []byte) bool {
	ok, err := l.db.Has(key)
	if err != nil {
		panic(err)
	}

	return ok
}

// Set wraps the underlying DB's Set method panicking on error.
func (l Lookup) Set(key, value []byte) {
	if err := l.db.Set(key, value); err != nil {
		panic(err)
	}
}

// Delete wraps the underlying DB's Delete method panicking on error.
func (l Lookup) Delete(key []byte) {
	if err := l.db.Delete(key); err != nil {
		panic(err)
	}
}

// Iterator wraps the underlying DB's Iterator method panicking on error.
func (l Lookup) Iterator(start, end []byte) dbm.Iterator {
	iter, err := l.db.Iterator(start, end)
	if err != nil {
		panic(err)
	}

	return iter
}

// ReverseIterator wraps the underlying DB's ReverseIterator method panicking on error.
func (l Lookup) ReverseIterator(start, end []byte) dbm.Iterator {
	iter, err := l.db.ReverseIterator(start, end)
	if err != nil {
		panic(err)
	}

	return iter
}

var _ KVStore = (*Lookup)(nil)

/***** Mock GoAPI ****/

// UnbondingPeriod is the unbonding time the mock staking module reports, in seconds.
const UnbondingPeriod uint64 = 60 * 60 * 24 * 7

var _ types.GoAPI = MockAPI{}

type MockAPI struct {
	AccountAPI *MockAccountAPI
	StakingAPI *MockStakingAPI
	OracleAPI  *MockOracleAPI
	QueryAPI   *MockQueryAPI
	BlockTime  uint64
}

func NewMockAPI(
	blockTime uint64,
	accountAPI *MockAccountAPI,
	stakingAPI *MockStakingAPI,
	oracleAPI *MockOracleAPI,
	queryAPI *MockQueryAPI,
) *MockAPI {
	return &MockAPI{
		AccountAPI: accountAPI,
		StakingAPI: stakingAPI,
		OracleAPI:  oracleAPI,
		QueryAPI:   queryAPI,
		BlockTime:  blockTime,
	}
}

func NewEmptyMockAPI(blockTime uint64) *MockAPI {
	accountAPI := NewMockAccountAPI()
	stakingAPI := NewMockStakingAPI()
	oracleAPI := NewMockOracleAPI()
	queryAPI := NewMockQueryAPI()
	return NewMockAPI(blockTime, &accountAPI, &stakingAPI, &oracleAPI, &queryAPI)
}

func (m MockAPI) GetAccountInfo(addr types.AccountAddress) (bool, uint64, uint64, uint8) {
	return m.AccountAPI.GetAccountInfo(addr)
}

func (m MockAPI) AmountToShare(validator []byte, metadata types.AccountAddress, amount uint64) (uint64, error) {
	return m.StakingAPI.AmountToShare(validator, metadata, amount)
}

func (m MockAPI) ShareToAmount(validator []byte, metadata types.AccountAddress, share uint64) (uint64, error) {
	return m.StakingAPI.ShareToAmount(validator, metadata, share)
}

// UnbondTimestamp is the block time plus UnbondingPeriod.
func (m MockAPI) UnbondTimestamp() uint64 {
	return m.BlockTime + UnbondingPeriod
}

func (m MockAPI) GetPrice(pairID string) ([]byte, uint64, uint64, error) {
	return m.OracleAPI.GetPrice(pairID)
}

func (m MockAPI) Query(request []byte, gasBalance uint64) ([]byte, uint64, error) {
	return m.QueryAPI.Query(request, gasBalance)
}

type accountInfo struct {
	accountNumber uint64
	sequence      uint64
	accountType   uint8
}

type MockAccountAPI struct {
	accounts map[types.AccountAddress]accountInfo
}

// NewMockAccountAPI return MockAccountAPI instance
func NewMockAccountAPI() MockAccountAPI {
	return MockAccountAPI{
		accounts: make(map[types.AccountAddress]accountInfo),
	}
}

func (m *MockAccountAPI) SetAccountInfo(addr types.AccountAddress, accountNumber, sequence uint64, accountType uint8) {
	m.accounts[addr] = accountInfo{accountNumber, sequence, accountType}
}

func (m MockAccountAPI) GetAccountInfo(addr types.AccountAddress) (bool, uint64, uint64, uint8) {
	info, found := m.accounts[addr]
	if found {
		return found, info.accountNumber, info.sequence, info.accountType
	}

	return false, 0, 0, 0
}

type ShareAmountRatio struct {
	share  uint64
	amount uint64
}

type MockStakingAPI struct {
	validators map[string]map[types.AccountAddress]ShareAmountRatio
}

// NewMockStakingAPI return MockStakingAPI instance
func NewMockStakingAPI() MockStakingAPI {
	return MockStakingAPI{
		validators: make(map[string]map[types.AccountAddress]ShareAmountRatio),
	}
}

func (m *MockStakingAPI) SetShareRatio(validator []byte, metadata types.AccountAddress, share uint64, amount uint64) {
	ratios, ok := m.validators[string(validator)]
	if !ok {
		ratios = make(map[types.AccountAddress]ShareAmountRatio)
		m.validators[string(validator)] = ratios
	}
	ratios[metadata] = ShareAmountRatio{share, amount}
}

func (m MockStakingAPI) ratio(validator []byte, metadata types.AccountAddress) (ShareAmountRatio, error) {
	ratios, ok := m.validators[string(validator)]
	if !ok {
		return ShareAmountRatio{}, errors.New("validator not found")
	}

	ratio, ok := ratios[metadata]
	if !ok {
		return ShareAmountRatio{}, errors.New("metadata not found")
	}
	if ratio.share == 0 || ratio.amount == 0 {
		return ShareAmountRatio{}, errors.New("empty share ratio")
	}
	return ratio, nil
}

func (m MockStakingAPI) AmountToShare(validator []byte, metadata types.AccountAddress, amount uint64) (uint64, error) {
	ratio, err := m.ratio(validator, metadata)
	if err != nil {
		return 0, err
	}

	return amount * ratio.share / ratio.amount, nil
}

func (m MockStakingAPI) ShareToAmount(validator []byte, metadata types.AccountAddress, share uint64) (uint64, error) {
	ratio, err := m.ratio(validator, metadata)
	if err != nil {
		return 0, err
	}

	return share * ratio.amount / ratio.share, nil
}

type priceInfo struct {
	price     uint64
	updatedAt uint64
	decimals  uint64
}

type MockOracleAPI struct {
	prices map[string]priceInfo
}

// NewMockOracleAPI return MockOracleAPI instance
func NewMockOracleAPI() MockOracleAPI {
	return MockOracleAPI{
		prices: make(map[string]priceInfo),
	}
}

func (m *MockOracleAPI) SetPrice(pairID string, price, updatedAt, decimals uint64) {
	m.prices[pairID] = priceInfo{price, updatedAt, decimals}
}

// GetPrice returns the price as a BCS u256.
func (m MockOracleAPI) GetPrice(pairID string) ([]byte, uint64, uint64, error) {
	info, found := m.prices[pairID]
	if !found {
		return nil, 0, 0, errors.New("pair not found")
	}

	return types.SerializeUint64AsUint256(info.price), info.updatedAt, info.decimals, nil
}

type queryResult struct {
	response []byte
	gasUsed  uint64
}

// MockQueryAPI answers queries from a fixed request/response table.
type MockQueryAPI struct {
	results map[string]queryResult
}

// NewMockQueryAPI return MockQueryAPI instance
func NewMockQueryAPI() MockQueryAPI {
	return MockQueryAPI{
		results: make(map[string]queryResult),
	}
}

func (m *MockQueryAPI) SetResponse(request, response []byte, gasUsed uint64) {
	m.results[string(request)] = queryResult{response, gasUsed}
}

func (m MockQueryAPI) Query(request []byte, gasBalance uint64) ([]byte, uint64, error) {
	res, found := m.results[string(request)]
	if !found {
		return nil, 0, errors.New("query not found")
	}
	if res.gasUsed > gasBalance {
		return nil, gasBalance, types.ErrOutOfGas.Wrapf("query wanted %d, had %d", res.gasUsed, gasBalance)
	}
	return res.response, res.gasUsed, nil
}
