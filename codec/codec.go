package codec

import (
	amino "github.com/tendermint/go-amino"
)

// Codec is the amino codec every persisted value goes through.
type Codec = amino.Codec

// New returns an empty codec. Modules register their concrete types on
// it before the first store access.
func New() *Codec {
	return amino.NewCodec()
}

// MarshalJSONIndent serializes a value to pretty JSON for query output.
func MarshalJSONIndent(cdc *Codec, obj interface{}) ([]byte, error) {
	return cdc.MarshalJSONIndent(obj, "", "  ")
}
