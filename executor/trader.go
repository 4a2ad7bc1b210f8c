// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/xsettle/types"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

var weightPerSecond = uint256.NewInt(types.WeightPerSecond)

// RateTable 各资产每秒执行权重的价格
type RateTable struct {
	rates map[string]uint64
}

// NewRateTable 从配置读取价格，unitsPerSecond 为 0 的资产不能支付手续费
func NewRateTable(cfg *types.Config) *RateTable {
	r := &RateTable{rates: make(map[string]uint64)}
	for _, cur := range cfg.Currency {
		if cur.UnitsPerSecond > 0 {
			r.rates[cur.Loc().Key()] = cur.UnitsPerSecond
		}
	}
	return r
}

// UnitsPerSecond 价格
func (r *RateTable) UnitsPerSecond(id types.Location) (uint64, bool) {
	ups, ok := r.rates[id.Key()]
	return ups, ok
}

// Quote cost = ceil(weight * unitsPerSecond / WeightPerSecond)
func (r *RateTable) Quote(weight types.Weight, id types.Location) (uint64, error) {
	ups, ok := r.UnitsPerSecond(id)
	if !ok {
		return 0, errors.Wrapf(types.ErrTooExpensive, "no rate for %s", id)
	}
	num := new(uint256.Int).Mul(uint256.NewInt(weight), uint256.NewInt(ups))
	num.Add(num, new(uint256.Int).SubUint64(weightPerSecond, 1))
	cost := num.Div(num, weightPerSecond)
	if !cost.IsUint64() {
		return 0, errors.Wrap(types.ErrTooExpensive, "cost overflow")
	}
	return cost.Uint64(), nil
}

// refundFor floor(weight * unitsPerSecond / WeightPerSecond)
func (r *RateTable) refundFor(weight types.Weight, ups uint64) uint64 {
	num := new(uint256.Int).Mul(uint256.NewInt(weight), uint256.NewInt(ups))
	num.Div(num, weightPerSecond)
	if !num.IsUint64() {
		return ^uint64(0)
	}
	return num.Uint64()
}

// NewTrader 每条消息一个 trader
func (r *RateTable) NewTrader() *Trader {
	return &Trader{table: r}
}

// Trader 按固定价格出售执行权重，记录本条消息已购买的权重和收入
type Trader struct {
	table  *RateTable
	id     types.Location
	ups    uint64
	weight types.Weight
	amount uint64
	used   bool
}

// Buy 用 offered 购买 weight；失败时 offered 原样作为 unspent 返回
func (t *Trader) Buy(weight types.Weight, offered types.Asset) (consumed, unspent types.Asset, err error) {
	if t.used && !t.id.Equal(offered.ID) {
		return types.Asset{}, offered, errors.Wrapf(types.ErrTooExpensive, "already paid with %s", t.id)
	}
	cost, err := t.table.Quote(weight, offered.ID)
	if err != nil {
		return types.Asset{}, offered, err
	}
	if offered.Amount < cost {
		return types.Asset{}, offered, errors.Wrapf(types.ErrTooExpensive, "need %d offered %d", cost, offered.Amount)
	}
	ups, _ := t.table.UnitsPerSecond(offered.ID)
	t.id, t.ups, t.used = offered.ID, ups, true
	t.weight += weight
	t.amount += cost
	return types.NewAsset(offered.ID, cost), types.NewAsset(offered.ID, offered.Amount-cost), nil
}

// Refund 退回未使用的权重，返回的金额不超过已支付的金额
func (t *Trader) Refund(weight types.Weight) (types.Asset, bool) {
	if !t.used {
		return types.Asset{}, false
	}
	if weight > t.weight {
		weight = t.weight
	}
	amount := t.table.refundFor(weight, t.ups)
	if amount > t.amount {
		amount = t.amount
	}
	t.weight -= weight
	t.amount -= amount
	if amount == 0 {
		return types.Asset{}, false
	}
	return types.NewAsset(t.id, amount), true
}

// Revenue 消息结束时归国库的收入
func (t *Trader) Revenue() (types.Asset, bool) {
	if !t.used || t.amount == 0 {
		return types.Asset{}, false
	}
	return types.NewAsset(t.id, t.amount), true
}

// Bought 已购买的权重
func (t *Trader) Bought() types.Weight {
	return t.weight
}
