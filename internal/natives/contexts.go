package natives

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/initia-labs/movevm/types"
)

//---------- account ---------

// NewAccount is an account creation requested during the session.
type NewAccount struct {
	Address       types.AccountAddress
	AccountNumber uint64
	AccountType   uint8
}

// AccountContext resolves account existence and records account creations.
type AccountContext struct {
	api         types.AccountAPI
	sessionID   uint64
	newAccounts []NewAccount
}

func NewAccountContext(api types.AccountAPI, sessionID uint64) *AccountContext {
	return &AccountContext{api: api, sessionID: sessionID}
}

// GetAccountInfo checks the accounts created in this session before asking the host.
func (c *AccountContext) GetAccountInfo(addr types.AccountAddress) (found bool, accountNumber, sequence uint64, accountType uint8) {
	for _, acc := range c.newAccounts {
		if acc.Address == addr {
			return true, acc.AccountNumber, 0, acc.AccountType
		}
	}
	return c.api.GetAccountInfo(addr)
}

// RequestCreateAccount records a new account. Account numbers are namespaced
// by the session id in their upper 32 bits.
func (c *AccountContext) RequestCreateAccount(addr types.AccountAddress, accountType uint8) (uint64, error) {
	if found, _, _, _ := c.GetAccountInfo(addr); found {
		return 0, fmt.Errorf("account %s already exists", addr.ShortString())
	}
	num := c.sessionID<<32 | uint64(len(c.newAccounts)+1)
	c.newAccounts = append(c.newAccounts, NewAccount{Address: addr, AccountNumber: num, AccountType: accountType})
	return num, nil
}

// NewAccounts returns the accounts created so far.
func (c *AccountContext) NewAccounts() []NewAccount {
	return append([]NewAccount(nil), c.newAccounts...)
}

func (c *AccountContext) SessionID() uint64 { return c.sessionID }

//---------- block ---------

type BlockContext struct {
	Height    uint64
	Timestamp uint64
}

func NewBlockContext(height, timestamp uint64) *BlockContext {
	return &BlockContext{Height: height, Timestamp: timestamp}
}

//---------- code ---------

// PublishRequest is a module bundle the session asked to publish.
type PublishRequest struct {
	Publisher     types.AccountAddress
	CodeBundle    [][]byte
	UpgradePolicy uint8
}

// CodeContext collects publish requests. At most one request per session.
type CodeContext struct {
	request *PublishRequest
}

func NewCodeContext() *CodeContext {
	return &CodeContext{}
}

func (c *CodeContext) RequestPublish(req PublishRequest) error {
	if c.request != nil {
		return fmt.Errorf("publish already requested by %s", c.request.Publisher.ShortString())
	}
	c.request = &req
	return nil
}

// TakeRequest returns and clears the pending request.
func (c *CodeContext) TakeRequest() *PublishRequest {
	req := c.request
	c.request = nil
	return req
}

//---------- staking ---------

type StakingContext struct {
	api types.StakingAPI
}

func NewStakingContext(api types.StakingAPI) *StakingContext {
	return &StakingContext{api: api}
}

//---------- cosmos ---------

// CosmosMessage is a message dispatched to the host chain after execution.
type CosmosMessage struct {
	Sender       types.AccountAddress
	Data         []byte
	AllowFailure bool
}

type CosmosContext struct {
	messages []CosmosMessage
}

func NewCosmosContext() *CosmosContext {
	return &CosmosContext{}
}

func (c *CosmosContext) Dispatch(msg CosmosMessage) {
	c.messages = append(c.messages, msg)
}

func (c *CosmosContext) Messages() []CosmosMessage {
	return append([]CosmosMessage(nil), c.messages...)
}

//---------- transaction ---------

// TransactionContext exposes the sender and hash of the running transaction
// and derives unique addresses from them.
type TransactionContext struct {
	sender  types.AccountAddress
	txHash  [32]byte
	counter uint64
}

func NewTransactionContext(sender types.AccountAddress, txHash [32]byte) *TransactionContext {
	return &TransactionContext{sender: sender, txHash: txHash}
}

func (c *TransactionContext) Sender() types.AccountAddress { return c.sender }

func (c *TransactionContext) TxHash() [32]byte { return c.txHash }

// uniqueAddressScheme separates generated addresses from other derived ones.
const uniqueAddressScheme = 0xFB

// GenerateUniqueAddress returns sha3-256(tx_hash || counter || scheme) and
// bumps the counter, so repeated calls never collide.
func (c *TransactionContext) GenerateUniqueAddress() types.AccountAddress {
	c.counter++
	h := sha3.New256()
	h.Write(c.txHash[:])
	h.Write(binary.LittleEndian.AppendUint64(nil, c.counter))
	h.Write([]byte{uniqueAddressScheme})
	var addr types.AccountAddress
	copy(addr[:], h.Sum(nil))
	return addr
}

//---------- event ---------

// Event is a module event emitted during execution.
type Event struct {
	TypeTag string
	Data    []byte
}

type EventContext struct {
	events []Event
}

func NewEventContext() *EventContext {
	return &EventContext{}
}

func (c *EventContext) Emit(ev Event) {
	c.events = append(c.events, ev)
}

func (c *EventContext) Events() []Event {
	return append([]Event(nil), c.events...)
}

//---------- oracle ---------

type OracleContext struct {
	api types.OracleAPI
}

func NewOracleContext(api types.OracleAPI) *OracleContext {
	return &OracleContext{api: api}
}

//---------- query ---------

type QueryContext struct {
	api types.QueryAPI
}

func NewQueryContext(api types.QueryAPI) *QueryContext {
	return &QueryContext{api: api}
}
