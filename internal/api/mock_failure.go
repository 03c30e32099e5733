package api

import (
	"fmt"

	"github.com/initia-labs/movevm/types"
)

/***** Mock types.GoAPI ****/

// MockFailureAPI fails every callback. Callbacks without an error result panic.
type MockFailureAPI struct{}

var _ types.GoAPI = MockFailureAPI{}

// NewMockFailureAPI creates a new mock API that fails
func NewMockFailureAPI() MockFailureAPI {
	return MockFailureAPI{}
}

func (MockFailureAPI) GetAccountInfo(types.AccountAddress) (bool, uint64, uint64, uint8) {
	panic(fmt.Errorf("mock failure - get_account_info"))
}

func (MockFailureAPI) AmountToShare([]byte, types.AccountAddress, uint64) (uint64, error) {
	return 0, fmt.Errorf("mock failure - amount_to_share")
}

func (MockFailureAPI) ShareToAmount([]byte, types.AccountAddress, uint64) (uint64, error) {
	return 0, fmt.Errorf("mock failure - share_to_amount")
}

func (MockFailureAPI) UnbondTimestamp() uint64 {
	panic("mock failure - unbond_timestamp")
}

func (MockFailureAPI) GetPrice(string) ([]byte, uint64, uint64, error) {
	return nil, 0, 0, fmt.Errorf("mock failure - get_price")
}

func (MockFailureAPI) Query([]byte, uint64) ([]byte, uint64, error) {
	return nil, 0, fmt.Errorf("mock failure - query")
}
