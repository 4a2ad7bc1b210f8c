// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/xsettle/types"
)

// Holding 执行过程中的暂存资产，同一资产合并，保留首次加入的顺序
type Holding struct {
	assets types.Assets
}

// NewHolding new
func NewHolding() *Holding {
	return &Holding{}
}

func (h *Holding) index(id types.Location) int {
	for i := range h.assets {
		if h.assets[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}

// Subsume 放入资产
func (h *Holding) Subsume(a types.Asset) {
	if a.Amount == 0 {
		return
	}
	if i := h.index(a.ID); i >= 0 {
		h.assets[i].Amount += a.Amount
		return
	}
	h.assets = append(h.assets, a)
}

// SubsumeAll 放入多个资产
func (h *Holding) SubsumeAll(as types.Assets) {
	for _, a := range as {
		h.Subsume(a)
	}
}

// Amount 某资产的数量
func (h *Holding) Amount(id types.Location) uint64 {
	if i := h.index(id); i >= 0 {
		return h.assets[i].Amount
	}
	return 0
}

// TryTake 取出指定数量，不足时不做任何修改
func (h *Holding) TryTake(a types.Asset) error {
	i := h.index(a.ID)
	if i < 0 || h.assets[i].Amount < a.Amount {
		return types.ErrNotHoldingFees
	}
	h.assets[i].Amount -= a.Amount
	if h.assets[i].Amount == 0 {
		h.remove(i)
	}
	return nil
}

func (h *Holding) remove(i int) {
	h.assets = append(h.assets[:i], h.assets[i+1:]...)
}

// Take 取出过滤器匹配的资产，最多 max 种；Definite 时取持有量与请求量的较小值
func (h *Holding) Take(filter types.AssetFilter, max uint32) types.Assets {
	var out types.Assets
	if filter.Wild {
		n := len(h.assets)
		if uint32(n) > max {
			n = int(max)
		}
		out = h.assets[:n].Clone()
		h.assets = append(types.Assets(nil), h.assets[n:]...)
		return out
	}
	for _, want := range filter.Definite {
		if uint32(len(out)) >= max {
			break
		}
		i := h.index(want.ID)
		if i < 0 || want.Amount == 0 {
			continue
		}
		amount := want.Amount
		if h.assets[i].Amount < amount {
			amount = h.assets[i].Amount
		}
		h.assets[i].Amount -= amount
		if h.assets[i].Amount == 0 {
			h.remove(i)
		}
		out = append(out, types.NewAsset(want.ID, amount))
	}
	return out
}

// TakeAll 清空并返回全部资产
func (h *Holding) TakeAll() types.Assets {
	out := h.assets
	h.assets = nil
	return out
}

// Assets 资产快照
func (h *Holding) Assets() types.Assets {
	return h.assets.Clone()
}

// IsEmpty 是否为空
func (h *Holding) IsEmpty() bool {
	return len(h.assets) == 0
}
