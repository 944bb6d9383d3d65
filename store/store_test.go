package store

import (
	"testing"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	sdk "github.com/quantidexyz/levr-gov/types"
)

func TestIavlStoreGetSetDelete(t *testing.T) {
	st, err := LoadIAVLStore(dbm.NewMemDB())
	require.NoError(t, err)

	require.False(t, st.Has([]byte("k1")))
	st.Set([]byte("k1"), []byte("v1"))
	require.True(t, st.Has([]byte("k1")))
	require.Equal(t, []byte("v1"), st.Get([]byte("k1")))

	st.Delete([]byte("k1"))
	require.False(t, st.Has([]byte("k1")))
	require.Nil(t, st.Get([]byte("k1")))
}

func TestIavlStoreIteratorOrder(t *testing.T) {
	st, err := LoadIAVLStore(dbm.NewMemDB())
	require.NoError(t, err)

	st.Set([]byte{0x10, 0x03}, []byte("c"))
	st.Set([]byte{0x10, 0x01}, []byte("a"))
	st.Set([]byte{0x10, 0x02}, []byte("b"))
	st.Set([]byte{0x11, 0x01}, []byte("other prefix"))

	it := st.Iterator([]byte{0x10}, sdk.PrefixEndBytes([]byte{0x10}))
	defer it.Close()

	var values []string
	for ; it.Valid(); it.Next() {
		values = append(values, string(it.Value()))
	}
	require.Equal(t, []string{"a", "b", "c"}, values)
}

func TestCommitMultiStorePersistence(t *testing.T) {
	db := dbm.NewMemDB()
	key := sdk.NewKVStoreKey("gov")

	ms := NewCommitMultiStore(db)
	ms.MountStore(key)
	require.NoError(t, ms.LoadLatestVersion())

	ms.GetKVStore(key).Set([]byte("k"), []byte("v"))
	require.NoError(t, ms.Commit())

	// reload from the same db
	ms2 := NewCommitMultiStore(db)
	ms2.MountStore(key)
	require.NoError(t, ms2.LoadLatestVersion())
	require.Equal(t, []byte("v"), ms2.GetKVStore(key).Get([]byte("k")))
}

func TestCommitMultiStoreRollback(t *testing.T) {
	db := dbm.NewMemDB()
	key := sdk.NewKVStoreKey("gov")

	ms := NewCommitMultiStore(db)
	ms.MountStore(key)
	require.NoError(t, ms.LoadLatestVersion())

	ms.GetKVStore(key).Set([]byte("committed"), []byte("1"))
	require.NoError(t, ms.Commit())

	ms.GetKVStore(key).Set([]byte("pending"), []byte("2"))
	ms.Rollback()

	require.True(t, ms.GetKVStore(key).Has([]byte("committed")))
	require.False(t, ms.GetKVStore(key).Has([]byte("pending")))
}
