package types

// KVStore is the minimal ordered key-value interface keepers operate on.
type KVStore interface {
	Get(key []byte) []byte
	Has(key []byte) bool
	Set(key, value []byte)
	Delete(key []byte)

	// Iterator over the half-open domain [start, end) in ascending key
	// order. A nil start or end iterates from the first or past the
	// last key respectively.
	Iterator(start, end []byte) Iterator
}

// Iterator walks a KVStore range. Callers must Close it.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// StoreKey names a mounted store inside a MultiStore.
type StoreKey interface {
	Name() string
	String() string
}

// KVStoreKey is used for accessing substores. Only the gov, stake and
// treasury modules hold one each.
type KVStoreKey struct {
	name string
}

func NewKVStoreKey(name string) *KVStoreKey {
	return &KVStoreKey{name: name}
}

func (key *KVStoreKey) Name() string {
	return key.name
}

func (key *KVStoreKey) String() string {
	return "KVStoreKey(" + key.name + ")"
}

// MultiStore resolves store keys to mounted KVStores.
type MultiStore interface {
	GetKVStore(key StoreKey) KVStore
}

// PrefixEndBytes returns the []byte that would end a range query over
// all keys starting with the given prefix.
func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			return end
		}
		end = end[:len(end)-1]
		if len(end) == 0 {
			return nil
		}
	}
}
