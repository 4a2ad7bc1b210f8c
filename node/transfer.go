// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package node

import (
	"github.com/33cn/xsettle/account"
	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
)

// 跨链转账的两种方式：
// 1. 资产储备在本链：把资产转到目标链的主权账户锁定，目标链铸造衍生资产 (ReserveAssetDeposited)
// 2. 资产储备在目标链：销毁本链的衍生资产，目标链从本链的主权账户取出 (WithdrawAsset)

// ReserveTransferAssets 本链储备的资产转到 dest 链上的 beneficiary。
// dest 为本链视角的目标链，beneficiary 为目标链视角的位置
func (n *Node) ReserveTransferAssets(from types.AccountID, dest, beneficiary types.Location, asset types.Asset) error {
	if asset.ID.Parents != 0 {
		return errors.Wrapf(types.ErrUntrustedReserveLocation, "%s is not reserved here", asset.ID)
	}
	return n.transfer(from, asset, dest, beneficiary, types.Unlimited())
}

// TransferMultiAsset 按资产的储备位置选择转账方式。
// dest 为本链视角的完整目标，最后一个节点是收款账户，例如 ../Parachain(2001)/AccountId32(..)
func (n *Node) TransferMultiAsset(from types.AccountID, asset types.Asset, dest types.Location, destWeight types.Weight) error {
	chain, beneficiary, err := splitDest(dest)
	if err != nil {
		return err
	}
	return n.transfer(from, asset, chain, beneficiary, types.Limited(destWeight))
}

// splitDest 拆分出目标链和目标链视角的收款位置
func splitDest(dest types.Location) (types.Location, types.Location, error) {
	last, ok := dest.Last()
	if !ok || last.Kind != types.JunctionAccountID32 {
		return dest, dest, errors.Wrapf(types.ErrInvalidLocation, "dest %s has no account", dest)
	}
	chain := types.NewLocation(dest.Parents, dest.Interior[:len(dest.Interior)-1]...)
	return chain, types.NewLocation(0, last), nil
}

func (n *Node) transfer(from types.AccountID, asset types.Asset, dest, beneficiary types.Location, limit types.WeightLimit) error {
	if asset.Amount == 0 {
		return types.ErrInvalidAmount
	}
	if _, ok := n.cfg.CurrencyOf(asset.ID); !ok {
		return errors.Wrap(types.ErrAssetNotFound, asset.ID.String())
	}
	destChain, ok := types.ChainOf(dest)
	if !ok {
		return errors.Wrapf(types.ErrUnroutable, "dest %s", dest)
	}
	self := n.cfg.SelfLocation()
	fees, err := asset.ID.Reanchor(self, dest)
	if err != nil {
		return err
	}
	reanchored := types.Assets{types.NewAsset(fees, asset.Amount)}
	tail := types.Xcm{
		types.ClearOrigin{},
		types.BuyExecution{Fees: reanchored[0], WeightLimit: limit},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: beneficiary},
	}

	var (
		xcm    types.Xcm
		revert func()
	)
	reserve := executor.ReserveOf(asset.ID)
	switch {
	case reserve.IsHere():
		sovereign := account.SovereignAccount(destChain)
		if err := n.lockedTransfer(asset.ID, from, sovereign, asset.Amount); err != nil {
			return err
		}
		revert = func() { _ = n.lockedTransfer(asset.ID, sovereign, from, asset.Amount) }
		xcm = append(types.Xcm{types.ReserveAssetDeposited{Assets: reanchored}}, tail...)
	case reserve.Equal(dest):
		if err := n.lockedBurn(asset.ID, from, asset.Amount); err != nil {
			return err
		}
		revert = func() { _ = n.Endow(asset.ID, from, asset.Amount) }
		xcm = append(types.Xcm{types.WithdrawAsset{Assets: reanchored}}, tail...)
	default:
		return errors.Wrapf(types.ErrUnroutable, "%s reserved at %s, dest %s", asset.ID, reserve, dest)
	}

	nlog.Debug("transfer", "chain", n.cfg.Title, "from", from, "asset", asset, "dest", dest, "beneficiary", beneficiary, "reserve", reserve)
	if err := n.send(dest, xcm); err != nil {
		nlog.Error("transfer send", "chain", n.cfg.Title, "dest", dest, "err", err)
		revert()
		return err
	}
	return nil
}

func (n *Node) lockedTransfer(asset types.Location, from, to types.AccountID, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Transfer(asset, from, to, amount)
}

func (n *Node) lockedBurn(asset types.Location, from types.AccountID, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Withdraw(asset, from, amount)
}
