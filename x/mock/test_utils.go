package mock

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	"github.com/quantidexyz/levr-gov/store"
	sdk "github.com/quantidexyz/levr-gov/types"
)

// GenesisTime anchors every test clock so window arithmetic is
// reproducible.
var GenesisTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewTestContext mounts the given store keys over a fresh MemDB and
// returns a root context at GenesisTime.
func NewTestContext(t *testing.T, keys ...sdk.StoreKey) (sdk.Context, *store.CommitMultiStore) {
	db := dbm.NewMemDB()
	ms := store.NewCommitMultiStore(db)
	for _, key := range keys {
		ms.MountStore(key)
	}
	require.NoError(t, ms.LoadLatestVersion())
	ctx := sdk.NewContext(ms, GenesisTime, log.NewNopLogger())
	return ctx, ms
}

// TestAddr derives a deterministic, distinct account address from an
// index.
func TestAddr(i int) sdk.AccAddress {
	addr := make([]byte, sdk.AddrLen)
	binary.BigEndian.PutUint64(addr[sdk.AddrLen-8:], uint64(i+1))
	return sdk.AccAddress(addr)
}
