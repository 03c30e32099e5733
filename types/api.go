package types

// AccountAPI gives natives read access to the host's account keeper.
type AccountAPI interface {
	// GetAccountInfo returns whether the account exists together with its
	// account number, sequence and account type.
	GetAccountInfo(addr AccountAddress) (found bool, accountNumber uint64, sequence uint64, accountType uint8)
}

// StakingAPI converts between delegation shares and token amounts.
type StakingAPI interface {
	AmountToShare(validator []byte, metadata AccountAddress, amount uint64) (uint64, error)
	ShareToAmount(validator []byte, metadata AccountAddress, share uint64) (uint64, error)
	UnbondTimestamp() uint64
}

// OracleAPI provides currency pair prices. The price is a BCS encoded u256.
type OracleAPI interface {
	GetPrice(pairID string) (price []byte, updatedAt uint64, decimals uint64, err error)
}

// QueryAPI executes read only queries against the host chain. The returned
// gas is charged to the VM on top of the native base cost.
type QueryAPI interface {
	Query(request []byte, gasBalance uint64) (response []byte, gasUsed uint64, err error)
}

// GoAPI bundles every host capability a VM invocation may call back into.
type GoAPI interface {
	AccountAPI
	StakingAPI
	OracleAPI
	QueryAPI
}
