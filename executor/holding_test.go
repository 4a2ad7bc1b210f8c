// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/stretchr/testify/assert"
)

func TestHolding(t *testing.T) {
	h := NewHolding()
	assert.True(t, h.IsEmpty())
	h.Subsume(types.NewAsset(ksm, 10))
	h.Subsume(types.NewAsset(neer, 5))
	h.Subsume(types.NewAsset(ksm, 7))
	h.Subsume(types.NewAsset(bnc, 0))
	assert.Equal(t, types.Assets{types.NewAsset(ksm, 17), types.NewAsset(neer, 5)}, h.Assets())
	assert.Equal(t, uint64(17), h.Amount(ksm))
	assert.Equal(t, uint64(0), h.Amount(bnc))

	assert.Equal(t, types.ErrNotHoldingFees, h.TryTake(types.NewAsset(ksm, 18)))
	assert.Equal(t, types.ErrNotHoldingFees, h.TryTake(types.NewAsset(bnc, 1)))
	assert.Equal(t, uint64(17), h.Amount(ksm))
	assert.NoError(t, h.TryTake(types.NewAsset(ksm, 17)))
	assert.Equal(t, types.Assets{types.NewAsset(neer, 5)}, h.Assets())
}

func TestHoldingTake(t *testing.T) {
	h := NewHolding()
	h.SubsumeAll(types.Assets{types.NewAsset(ksm, 10), types.NewAsset(neer, 5), types.NewAsset(bnc, 3)})

	got := h.Take(types.DefiniteAssets(types.NewAsset(neer, 2), types.NewAsset(bnc, 100)), 10)
	assert.Equal(t, types.Assets{types.NewAsset(neer, 2), types.NewAsset(bnc, 3)}, got)
	assert.Equal(t, types.Assets{types.NewAsset(ksm, 10), types.NewAsset(neer, 3)}, h.Assets())

	got = h.Take(types.WildAll(), 1)
	assert.Equal(t, types.Assets{types.NewAsset(ksm, 10)}, got)
	assert.Equal(t, types.Assets{types.NewAsset(neer, 3)}, h.Assets())

	got = h.Take(types.DefiniteAssets(types.NewAsset(neer, 1), types.NewAsset(neer, 1)), 1)
	assert.Equal(t, types.Assets{types.NewAsset(neer, 1)}, got)

	assert.Equal(t, types.Assets{types.NewAsset(neer, 2)}, h.TakeAll())
	assert.True(t, h.IsEmpty())
	assert.Empty(t, h.Take(types.WildAll(), 5))
}
