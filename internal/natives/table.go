package natives

import (
	"bytes"
	"encoding/binary"
	"sort"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/initia-labs/movevm/internal/api"
	"github.com/initia-labs/movevm/types"
)

// TableResolver reads committed table entries. found distinguishes an
// absent entry from one holding an empty value.
type TableResolver interface {
	ResolveTableEntry(handle types.AccountAddress, key []byte) (value []byte, found bool, err error)
}

func tableStoreKey(handle types.AccountAddress, key []byte) []byte {
	out := make([]byte, 0, len(handle)+len(key))
	out = append(out, handle[:]...)
	return append(out, key...)
}

// StoreTableResolver reads table entries from the host's key value store,
// keyed by handle followed by the entry key.
type StoreTableResolver struct {
	store api.KVStore
}

var _ TableResolver = (*StoreTableResolver)(nil)

func NewStoreTableResolver(store api.KVStore) *StoreTableResolver {
	return &StoreTableResolver{store: store}
}

// storePanic converts a panicking store call into an error.
func storePanic(op string, ret *error) {
	if r := recover(); r != nil {
		*ret = types.ErrGoCallback.Wrapf("table store %s: %v", op, r)
	}
}

func (r *StoreTableResolver) ResolveTableEntry(handle types.AccountAddress, key []byte) (value []byte, found bool, err error) {
	defer storePanic("get", &err)
	k := tableStoreKey(handle, key)
	if v := r.store.Get(k); v != nil {
		return v, true, nil
	}
	// some stores hand back nil for an empty value
	if r.store.Has(k) {
		return []byte{}, true, nil
	}
	return nil, false, nil
}

// Write commits an entry. Used to seed state.
func (r *StoreTableResolver) Write(handle types.AccountAddress, key, value []byte) (err error) {
	defer storePanic("set", &err)
	if value == nil {
		value = []byte{}
	}
	r.store.Set(tableStoreKey(handle, key), value)
	return nil
}

// Remove deletes a committed entry.
func (r *StoreTableResolver) Remove(handle types.AccountAddress, key []byte) (err error) {
	defer storePanic("delete", &err)
	r.store.Delete(tableStoreKey(handle, key))
	return nil
}

// Apply commits session changes in order.
func (r *StoreTableResolver) Apply(changes []TableChange) error {
	for _, c := range changes {
		var err error
		if c.Deleted {
			err = r.Remove(c.Handle, c.Key)
		} else {
			err = r.Write(c.Handle, c.Key, c.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// BlankTableResolver is the resolver shared by every unit test of a process.
// It starts empty and is guarded by a single mutex, so test threads may use
// it concurrently.
type BlankTableResolver struct {
	mu      sync.Mutex
	entries map[string][]byte
	lookups uint64
}

var _ TableResolver = (*BlankTableResolver)(nil)

func NewBlankTableResolver() *BlankTableResolver {
	return &BlankTableResolver{entries: make(map[string][]byte)}
}

func (r *BlankTableResolver) ResolveTableEntry(handle types.AccountAddress, key []byte) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	v, ok := r.entries[string(tableStoreKey(handle, key))]
	if !ok {
		return nil, false, nil
	}
	return cloneValue(v), true, nil
}

// Seed stores a committed entry.
func (r *BlankTableResolver) Seed(handle types.AccountAddress, key, value []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[string(tableStoreKey(handle, key))] = cloneValue(value)
}

// Lookups returns how many entries were resolved.
func (r *BlankTableResolver) Lookups() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookups
}

// cloneValue copies v, keeping an empty value non-nil.
func cloneValue(v []byte) []byte {
	return append(make([]byte, 0, len(v)), v...)
}

// TableChange is a pending write.
type TableChange struct {
	Handle  types.AccountAddress
	Key     []byte
	Value   []byte
	Deleted bool
}

type tableWrite struct {
	value   []byte
	deleted bool
}

// TableContext overlays session writes on a resolver and hands out fresh
// table handles derived from the transaction hash.
type TableContext struct {
	txHash      [32]byte
	resolver    TableResolver
	handleCount uint64
	writes      map[types.AccountAddress]map[string]tableWrite
}

// NewTableContext overlays resolver. A nil resolver starts from an empty
// table store.
func NewTableContext(txHash [32]byte, resolver TableResolver) *TableContext {
	if resolver == nil {
		resolver = NewBlankTableResolver()
	}
	return &TableContext{
		txHash:   txHash,
		resolver: resolver,
		writes:   make(map[types.AccountAddress]map[string]tableWrite),
	}
}

// NewTableHandle returns sha3-256(tx_hash || count) for an increasing count.
func (c *TableContext) NewTableHandle() types.AccountAddress {
	c.handleCount++
	h := sha3.New256()
	h.Write(c.txHash[:])
	h.Write(binary.LittleEndian.AppendUint64(nil, c.handleCount))
	var handle types.AccountAddress
	copy(handle[:], h.Sum(nil))
	return handle
}

// Get returns the current value of an entry and whether it exists.
func (c *TableContext) Get(handle types.AccountAddress, key []byte) ([]byte, bool, error) {
	if tbl, ok := c.writes[handle]; ok {
		if w, ok := tbl[string(key)]; ok {
			if w.deleted {
				return nil, false, nil
			}
			return w.value, true, nil
		}
	}
	return c.resolver.ResolveTableEntry(handle, key)
}

func (c *TableContext) set(handle types.AccountAddress, key, value []byte) {
	c.write(handle, key, tableWrite{value: cloneValue(value)})
}

func (c *TableContext) remove(handle types.AccountAddress, key []byte) {
	c.write(handle, key, tableWrite{deleted: true})
}

func (c *TableContext) write(handle types.AccountAddress, key []byte, w tableWrite) {
	tbl, ok := c.writes[handle]
	if !ok {
		tbl = make(map[string]tableWrite)
		c.writes[handle] = tbl
	}
	tbl[string(key)] = w
}

// Changes returns every pending write, ordered by handle and key.
func (c *TableContext) Changes() []TableChange {
	var out []TableChange
	for handle, tbl := range c.writes {
		for k, w := range tbl {
			out = append(out, TableChange{Handle: handle, Key: []byte(k), Value: w.value, Deleted: w.deleted})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if d := bytes.Compare(out[i].Handle[:], out[j].Handle[:]); d != 0 {
			return d < 0
		}
		return bytes.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}
