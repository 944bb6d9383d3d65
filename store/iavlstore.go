package store

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tm-db"

	sdk "github.com/quantidexyz/levr-gov/types"
)

const (
	defaultIAVLCacheSize = 10000
)

// LoadIAVLStore loads the latest committed version of an IAVL-backed
// store from the given database.
func LoadIAVLStore(db dbm.DB) (*IavlStore, error) {
	tree := iavl.NewMutableTree(db, defaultIAVLCacheSize)
	if _, err := tree.Load(); err != nil {
		return nil, err
	}
	return newIAVLStore(tree), nil
}

var _ sdk.KVStore = (*IavlStore)(nil)

// IavlStore implements KVStore on top of an IAVL merkleized tree.
// Writes accumulate in the working version until Commit.
type IavlStore struct {
	tree *iavl.MutableTree
}

// CONTRACT: tree should be fully loaded.
func newIAVLStore(tree *iavl.MutableTree) *IavlStore {
	return &IavlStore{tree: tree}
}

// Commit saves a new version and returns it.
func (st *IavlStore) Commit() (int64, error) {
	_, version, err := st.tree.SaveVersion()
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Rollback discards all uncommitted writes in the working version.
func (st *IavlStore) Rollback() {
	st.tree.Rollback()
}

// Version of the last commit.
func (st *IavlStore) Version() int64 {
	return st.tree.Version()
}

// Implements KVStore.
func (st *IavlStore) Get(key []byte) []byte {
	_, value := st.tree.Get(key)
	return value
}

// Implements KVStore.
func (st *IavlStore) Has(key []byte) bool {
	return st.tree.Has(key)
}

// Implements KVStore.
func (st *IavlStore) Set(key, value []byte) {
	st.tree.Set(key, value)
}

// Implements KVStore.
func (st *IavlStore) Delete(key []byte) {
	st.tree.Remove(key)
}

// Implements KVStore. The iterator snapshots the matching pairs of the
// working version up front; governance ranges are small and bounded.
func (st *IavlStore) Iterator(start, end []byte) sdk.Iterator {
	it := &memIterator{}
	st.tree.IterateRange(start, end, true, func(key, value []byte) bool {
		it.keys = append(it.keys, key)
		it.values = append(it.values, value)
		return false
	})
	return it
}

type memIterator struct {
	keys   [][]byte
	values [][]byte
	cursor int
}

func (it *memIterator) Valid() bool {
	return it.cursor < len(it.keys)
}

func (it *memIterator) Next() {
	if !it.Valid() {
		panic("iterator is invalid")
	}
	it.cursor++
}

func (it *memIterator) Key() []byte {
	if !it.Valid() {
		panic("iterator is invalid")
	}
	return it.keys[it.cursor]
}

func (it *memIterator) Value() []byte {
	if !it.Valid() {
		panic("iterator is invalid")
	}
	return it.values[it.cursor]
}

func (it *memIterator) Close() {
	it.keys = nil
	it.values = nil
}
