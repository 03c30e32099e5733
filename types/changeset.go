package types

import (
	"bytes"
	"fmt"

	"github.com/google/btree"
)

// OpKind is the kind of a write recorded in a ChangeSet.
type OpKind uint8

const (
	OpNew OpKind = iota
	OpModify
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpNew:
		return "new"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", uint8(k))
	}
}

// Op is a single write. Blob is nil for deletions.
type Op struct {
	Kind OpKind
	Blob []byte
}

// ChangeSetEntry is one account-scoped write. Name is a module name when
// IsModule is set and a struct tag otherwise.
type ChangeSetEntry struct {
	Address  AccountAddress
	IsModule bool
	Name     string
	Op       Op
}

func lessEntry(a, b ChangeSetEntry) bool {
	if c := bytes.Compare(a.Address[:], b.Address[:]); c != 0 {
		return c < 0
	}
	if a.IsModule != b.IsModule {
		// modules sort before resources of the same account
		return a.IsModule
	}
	return a.Name < b.Name
}

// ChangeSet is an ordered collection of writes, keyed by account, then
// modules before resources, then name. Iteration order is deterministic.
type ChangeSet struct {
	tree *btree.BTreeG[ChangeSetEntry]
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{tree: btree.NewG(8, lessEntry)}
}

// AddModuleOp records a module write. Adding the same module twice is an error.
func (c *ChangeSet) AddModuleOp(addr AccountAddress, name string, op Op) error {
	return c.add(ChangeSetEntry{Address: addr, IsModule: true, Name: name, Op: op})
}

// AddResourceOp records a resource write. Adding the same resource twice is an error.
func (c *ChangeSet) AddResourceOp(addr AccountAddress, structTag string, op Op) error {
	return c.add(ChangeSetEntry{Address: addr, Name: structTag, Op: op})
}

func (c *ChangeSet) add(e ChangeSetEntry) error {
	if _, found := c.tree.Get(e); found {
		kind := "resource"
		if e.IsModule {
			kind = "module"
		}
		return fmt.Errorf("%s %s already exists at %s", kind, e.Name, e.Address.ShortString())
	}
	c.tree.ReplaceOrInsert(e)
	return nil
}

// Len returns the number of writes.
func (c *ChangeSet) Len() int {
	return c.tree.Len()
}

// IsEmpty reports whether the change set holds no writes.
func (c *ChangeSet) IsEmpty() bool {
	return c.tree.Len() == 0
}

// Entries returns every write in iteration order.
func (c *ChangeSet) Entries() []ChangeSetEntry {
	out := make([]ChangeSetEntry, 0, c.tree.Len())
	c.tree.Ascend(func(e ChangeSetEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}
