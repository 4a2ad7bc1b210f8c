// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	"strings"
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func padHex(prefix string) string {
	return "0x" + prefix + strings.Repeat("0", 64-len(prefix))
}

func TestSovereignAccount(t *testing.T) {
	assert.Equal(t, padHex("506172656e74"), SovereignAccount(types.ParentChain()).Hex())
	assert.Equal(t, padHex("7369626cd0070000"), SovereignAccount(types.SiblingChain(2000)).Hex())
	assert.Equal(t, padHex("70617261d0070000"), SovereignAccount(types.ChildChain(2000)).Hex())
	// 第二次走 cache
	assert.Equal(t, padHex("70617261d0070000"), SovereignAccount(types.ChildChain(2000)).Hex())
	assert.Panics(t, func() { SovereignAccount(types.Chain{Kind: 9}) })
}

func TestSovereignAccountInjective(t *testing.T) {
	seen := make(map[types.AccountID]types.Chain)
	add := func(c types.Chain) {
		id := SovereignAccount(c)
		prev, dup := seen[id]
		require.False(t, dup, "%s collides with %s", c, prev)
		seen[id] = c
	}
	add(types.ParentChain())
	for _, id := range []uint32{0, 1, 1000, 2000, 2001, 65535, 1 << 24, ^uint32(0)} {
		add(types.SiblingChain(id))
		add(types.ChildChain(id))
	}
	for id := uint32(0); id < 3000; id++ {
		if id == 0 || id == 1 || id == 1000 || id == 2000 || id == 2001 {
			continue
		}
		add(types.SiblingChain(id))
		add(types.ChildChain(id))
	}
	assert.Len(t, seen, 1+2*3000+2*3)
}

func TestDerivativeAccount(t *testing.T) {
	para := SovereignAccount(types.ChildChain(2000))
	sub := DerivativeAccount(para, 0)
	assert.Equal(t, "0xd7b8926b326dd349355a9a7cca6606c1e0eb6fd2b506066b518c7155ff0d8297", sub.Hex())
	assert.NotEqual(t, sub, DerivativeAccount(para, 1))
	assert.Equal(t, sub, DerivativeAccount(para, 0))
}

func TestTreasuryAccount(t *testing.T) {
	cfg := types.InitCfgString(types.GetDefaultCfgstring())
	assert.Equal(t, padHex("6d6f646c6269742f74727379"), TreasuryAccount(cfg).Hex())
}

func TestLocationToAccount(t *testing.T) {
	alice := types.AccountFromSeed(1)
	cases := []struct {
		loc  types.Location
		want types.AccountID
	}{
		{types.ParentLocation(), SovereignAccount(types.ParentChain())},
		{types.SiblingLocation(2001), SovereignAccount(types.SiblingChain(2001))},
		{types.ChildLocation(2000), SovereignAccount(types.ChildChain(2000))},
		{types.AccountLocation(alice), alice},
	}
	for _, c := range cases {
		got, err := LocationToAccount(c.loc)
		require.NoError(t, err, c.loc.String())
		assert.Equal(t, c.want, got, c.loc.String())
	}
	for _, loc := range []types.Location{
		types.Here(),
		types.NewLocation(1, types.AccountID32(alice)),
		types.NewLocation(1, types.Parachain(1), types.AccountID32(alice)),
		types.NewLocation(0, types.GeneralIndex(1)),
	} {
		_, err := LocationToAccount(loc)
		assert.True(t, errors.Is(err, types.ErrLocationNotInvertible), loc.String())
	}
}
