package store

import (
	"sort"

	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"

	sdk "github.com/quantidexyz/levr-gov/types"
)

var _ sdk.MultiStore = (*CommitMultiStore)(nil)

// CommitMultiStore mounts one IAVL store per module over a shared
// database, each isolated behind a name prefix. Commit persists every
// mounted store; Rollback discards all pending writes.
type CommitMultiStore struct {
	db     dbm.DB
	keys   []sdk.StoreKey
	stores map[sdk.StoreKey]*IavlStore
}

func NewCommitMultiStore(db dbm.DB) *CommitMultiStore {
	return &CommitMultiStore{
		db:     db,
		stores: make(map[sdk.StoreKey]*IavlStore),
	}
}

// MountStore registers a store key. Must be called before
// LoadLatestVersion.
func (ms *CommitMultiStore) MountStore(key sdk.StoreKey) {
	if _, ok := ms.stores[key]; ok {
		panic("store key already mounted: " + key.Name())
	}
	ms.keys = append(ms.keys, key)
	ms.stores[key] = nil
}

// LoadLatestVersion loads every mounted store at its latest committed
// version.
func (ms *CommitMultiStore) LoadLatestVersion() error {
	sort.Slice(ms.keys, func(i, j int) bool { return ms.keys[i].Name() < ms.keys[j].Name() })
	for _, key := range ms.keys {
		prefix := []byte("s/" + key.Name() + "/")
		st, err := LoadIAVLStore(dbm.NewPrefixDB(ms.db, prefix))
		if err != nil {
			return errors.Wrapf(err, "loading store %q failed", key.Name())
		}
		ms.stores[key] = st
	}
	return nil
}

// Implements MultiStore.
func (ms *CommitMultiStore) GetKVStore(key sdk.StoreKey) sdk.KVStore {
	st, ok := ms.stores[key]
	if !ok || st == nil {
		panic("store not mounted or not loaded: " + key.String())
	}
	return st
}

// Commit saves a new version of every mounted store.
func (ms *CommitMultiStore) Commit() error {
	for _, key := range ms.keys {
		if _, err := ms.stores[key].Commit(); err != nil {
			return errors.Wrapf(err, "committing store %q failed", key.Name())
		}
	}
	return nil
}

// Rollback discards pending writes in every mounted store.
func (ms *CommitMultiStore) Rollback() {
	for _, key := range ms.keys {
		ms.stores[key].Rollback()
	}
}
