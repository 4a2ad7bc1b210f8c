// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"math"
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRates() *RateTable {
	return NewRateTable(types.InitCfgString(types.GetDefaultCfgstring()))
}

func TestQuote(t *testing.T) {
	r := newTestRates()
	cases := []struct {
		weight types.Weight
		id     types.Location
		cost   uint64
	}{
		{600_000_000, ksm, 96_000_000},
		{800_000_000, ksm, 128_000_000},
		{800_000_000, bnc, 10_240_000_000},
		{600_000_000, neer, 480_000_000},
		{1, ksm, 1},
		{6_250_001, ksm, 1_000_001},
		{0, ksm, 0},
	}
	for _, c := range cases {
		cost, err := r.Quote(c.weight, c.id)
		require.NoError(t, err)
		assert.Equal(t, c.cost, cost, "%d %s", c.weight, c.id)
	}

	_, err := r.Quote(1, types.NewLocation(1, types.Parachain(3000)))
	assert.Equal(t, types.ErrTooExpensive, errors.Cause(err))
	_, err = r.Quote(math.MaxUint64, bnc)
	assert.Equal(t, types.ErrTooExpensive, errors.Cause(err))
}

func TestTraderBuy(t *testing.T) {
	r := newTestRates()

	tr := r.NewTrader()
	consumed, unspent, err := tr.Buy(600_000_000, types.NewAsset(ksm, 96_000_000))
	require.NoError(t, err)
	assert.Equal(t, types.NewAsset(ksm, 96_000_000), consumed)
	assert.Equal(t, uint64(0), unspent.Amount)

	tr = r.NewTrader()
	offered := types.NewAsset(ksm, 95_999_999)
	_, unspent, err = tr.Buy(600_000_000, offered)
	assert.Equal(t, types.ErrTooExpensive, errors.Cause(err))
	assert.Equal(t, offered, unspent)
	_, ok := tr.Revenue()
	assert.False(t, ok)

	tr = r.NewTrader()
	_, unspent, err = tr.Buy(600_000_000, types.NewAsset(ksm, dollar))
	require.NoError(t, err)
	assert.Equal(t, uint64(dollar-96_000_000), unspent.Amount)
	// 同一条消息只能用一种资产支付
	_, unspent, err = tr.Buy(1, types.NewAsset(neer, dollar))
	assert.Equal(t, types.ErrTooExpensive, errors.Cause(err))
	assert.Equal(t, types.NewAsset(neer, dollar), unspent)

	revenue, ok := tr.Revenue()
	require.True(t, ok)
	assert.Equal(t, types.NewAsset(ksm, 96_000_000), revenue)
	assert.Equal(t, types.Weight(600_000_000), tr.Bought())
}

func TestTraderIdempotentForExactCost(t *testing.T) {
	r := newTestRates()
	for _, w := range []types.Weight{1, 200_000_000, 1_234_567_891, 10_000_000_000} {
		for _, id := range []types.Location{ksm, neer, bnc} {
			cost, err := r.Quote(w, id)
			require.NoError(t, err)
			_, unspent, err := r.NewTrader().Buy(w, types.NewAsset(id, cost))
			require.NoError(t, err)
			assert.Equal(t, uint64(0), unspent.Amount)
		}
	}
}

func TestTraderRefund(t *testing.T) {
	r := newTestRates()
	tr := r.NewTrader()
	_, ok := tr.Refund(100)
	assert.False(t, ok)

	_, _, err := tr.Buy(2_000_000_000, types.NewAsset(ksm, dollar))
	require.NoError(t, err)
	refund, ok := tr.Refund(600_000_000)
	require.True(t, ok)
	assert.Equal(t, types.NewAsset(ksm, 96_000_000), refund)

	// 退款不超过已支付的部分
	refund, ok = tr.Refund(math.MaxUint64)
	require.True(t, ok)
	assert.Equal(t, types.NewAsset(ksm, 224_000_000), refund)
	_, ok = tr.Revenue()
	assert.False(t, ok)
	assert.Equal(t, types.Weight(0), tr.Bought())
}
