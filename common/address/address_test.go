// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package address

import (
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = types.MustHexToAccountID("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")

func TestEncode(t *testing.T) {
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", Encode(alice, GenericPrefix))
	assert.Equal(t, "HNZata7iMYWmk5RvZRTiAsSDhV8366zq2YGb3tLH5Upf74F", Encode(alice, KusamaPrefix))
	assert.Equal(t, "WWcErrHi2JHpPVVWe7uVq2a8Wrn6NMMTz31z9So5GWYhqWVRi", Encode(alice, 268))
	// cached
	assert.Equal(t, "HNZata7iMYWmk5RvZRTiAsSDhV8366zq2YGb3tLH5Upf74F", Encode(alice, KusamaPrefix))
	assert.Panics(t, func() { Encode(alice, MaxPrefix+1) })
}

func TestDecode(t *testing.T) {
	for _, prefix := range []uint16{PolkadotPrefix, KusamaPrefix, GenericPrefix, 268, MaxPrefix} {
		id, got, err := Decode(Encode(alice, prefix))
		require.NoError(t, err)
		assert.Equal(t, alice, id)
		assert.Equal(t, prefix, got)
	}

	_, _, err := Decode("0OIl")
	assert.Equal(t, ErrAddressFormat, err)

	addr := []byte(Encode(alice, GenericPrefix))
	addr[len(addr)-1] = 'Z'
	_, _, err = Decode(string(addr))
	assert.Equal(t, ErrAddressChecksum, err)

	_, err = DecodeWithPrefix(Encode(alice, GenericPrefix), KusamaPrefix)
	assert.Equal(t, ErrAddressPrefix, err)
}

func TestParseAccount(t *testing.T) {
	id, err := ParseAccount("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(t, err)
	assert.Equal(t, alice, id)
	id, err = ParseAccount(alice.Hex())
	require.NoError(t, err)
	assert.Equal(t, alice, id)
}
