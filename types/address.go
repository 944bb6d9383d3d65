package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// AddrLen is the expected length of a raw account address.
const AddrLen = 20

// AccAddress identifies a stakeholder account. Addresses are raw bytes,
// rendered as lower-case hex with an 0x prefix.
type AccAddress []byte

// AccAddressFromHex creates an AccAddress from a hex string, with or
// without the 0x prefix.
func AccAddressFromHex(address string) (AccAddress, error) {
	if len(address) == 0 {
		return nil, errors.New("decoding hex address failed: empty address")
	}
	address = strings.TrimPrefix(strings.ToLower(address), "0x")
	bz, err := hex.DecodeString(address)
	if err != nil {
		return nil, errors.Wrap(err, "decoding hex address failed")
	}
	if len(bz) != AddrLen {
		return nil, errors.Errorf("address length should be %d, got %d", AddrLen, len(bz))
	}
	return AccAddress(bz), nil
}

// Returns boolean for whether two AccAddresses are equal
func (aa AccAddress) Equals(aa2 AccAddress) bool {
	if aa.Empty() && aa2.Empty() {
		return true
	}
	return bytes.Equal(aa.Bytes(), aa2.Bytes())
}

// Returns boolean for whether an AccAddress is empty
func (aa AccAddress) Empty() bool {
	if aa == nil {
		return true
	}
	aa2 := AccAddress{}
	return bytes.Equal(aa.Bytes(), aa2.Bytes())
}

func (aa AccAddress) Bytes() []byte {
	return aa
}

func (aa AccAddress) String() string {
	if aa.Empty() {
		return ""
	}
	return "0x" + hex.EncodeToString(aa)
}

// MarshalJSON marshals to JSON using the hex string form.
func (aa AccAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(aa.String())
}

// UnmarshalJSON unmarshals from JSON assuming the hex string form.
func (aa *AccAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) == 0 {
		*aa = AccAddress{}
		return nil
	}
	aa2, err := AccAddressFromHex(s)
	if err != nil {
		return err
	}
	*aa = aa2
	return nil
}
