// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/xsettle/account"
	"github.com/33cn/xsettle/types"
)

// Disposition 剩余资产的去向
type Disposition int

// 剩余资产去向
const (
	DropToTreasury Disposition = iota
	DropToBeneficiary
	DropToTrap
)

func (d Disposition) String() string {
	switch d {
	case DropToTreasury:
		return "treasury"
	case DropToBeneficiary:
		return "beneficiary"
	default:
		return "trap"
	}
}

// Decide 单个剩余资产的处理方式：
// 低于存在性押金的归国库；否则有受益人时归受益人，没有时扣留
func Decide(cfg *types.Config, a types.Asset, hasBeneficiary bool) Disposition {
	cur, ok := cfg.CurrencyOf(a.ID)
	if !ok {
		return DropToTrap
	}
	if a.Amount < cur.ExistentialDeposit {
		return DropToTreasury
	}
	if hasBeneficiary {
		return DropToBeneficiary
	}
	return DropToTrap
}

// dropAssets 消息结束时处理 holding 中的剩余资产
func (vm *vm) dropAssets() {
	leftover := vm.holding.TakeAll()
	if len(leftover) == 0 {
		return
	}
	var beneficiary types.AccountID
	hasBeneficiary := false
	if vm.beneficiary != nil {
		who, err := account.LocationToAccount(*vm.beneficiary)
		if err == nil {
			beneficiary, hasBeneficiary = who, true
		}
	}
	var trapped types.Assets
	for _, a := range leftover {
		switch Decide(vm.cfg, a, hasBeneficiary) {
		case DropToTreasury:
			if err := vm.ledger.Deposit(a.ID, vm.treasury, a.Amount); err != nil {
				elog.Error("dropAssets treasury", "asset", a, "err", err)
				trapped = append(trapped, a)
				continue
			}
			vm.emit(Event{Kind: types.EventDustLost, Account: vm.treasury, Assets: types.Assets{a}})
		case DropToBeneficiary:
			if err := vm.ledger.Deposit(a.ID, beneficiary, a.Amount); err != nil {
				elog.Error("dropAssets beneficiary", "asset", a, "err", err)
				trapped = append(trapped, a)
				continue
			}
			vm.emit(Event{Kind: types.EventDeposited, Account: beneficiary, Assets: types.Assets{a}})
		default:
			trapped = append(trapped, a)
		}
	}
	if len(trapped) == 0 {
		return
	}
	// 事件中的 hash 即 ClaimAsset 使用的 ticket
	if _, err := vm.traps.Trap(vm.original, trapped, vm.hash); err != nil {
		// 资产无法记录，只能丢弃
		elog.Crit("dropAssets trap", "origin", vm.original, "assets", trapped, "err", err)
		return
	}
	vm.emit(Event{Kind: types.EventAssetsTrapped, Origin: vm.original, Assets: trapped, Hash: vm.hash})
}
