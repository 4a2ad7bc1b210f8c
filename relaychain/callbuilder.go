// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package relaychain 构造和执行中继链上的调用：余额转账、派生子账户调用、批量调用，
// 以及把调用封装成发往中继链的跨链消息
package relaychain

import (
	"bytes"
	"encoding/binary"

	"github.com/33cn/xsettle/types"
	"github.com/centrifuge/go-substrate-rpc-client/v3/scale"
	"github.com/pkg/errors"
)

// multiAddressID MultiAddress::Id 的编码下标
const multiAddressID = 0

// CallBuilder 纯函数式地构造中继链调用，不做任何 IO
type CallBuilder struct {
	cfg *types.Config
}

// NewCallBuilder new
func NewCallBuilder(cfg *types.Config) *CallBuilder {
	return &CallBuilder{cfg: cfg}
}

func (b *CallBuilder) relay() *types.RelayConfig {
	return b.cfg.Relay
}

// BuildTransfer Balances.transfer_keep_alive(dest, amount)
func (b *CallBuilder) BuildTransfer(dest types.AccountID, amount uint64) ([]byte, error) {
	if amount == 0 {
		return nil, errors.Wrap(types.ErrInvalidAmount, "zero amount")
	}
	if amount < b.relay().ExistentialDeposit {
		return nil, errors.Wrapf(types.ErrInvalidAmount, "%d below existential deposit %d", amount, b.relay().ExistentialDeposit)
	}
	var buf bytes.Buffer
	e := scale.NewEncoder(&buf)
	buf.WriteByte(b.relay().BalancesPallet)
	buf.WriteByte(b.relay().TransferKeepAliveCall)
	buf.WriteByte(multiAddressID)
	buf.Write(dest[:])
	if err := types.EncodeCompact(*e, amount); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WrapAsDerivative Utility.as_derivative(index, call)，调用方的第 index 个派生子账户执行 call
func (b *CallBuilder) WrapAsDerivative(call []byte, index uint16) []byte {
	out := make([]byte, 4, 4+len(call))
	out[0] = b.relay().UtilityPallet
	out[1] = b.relay().AsDerivativeCall
	binary.LittleEndian.PutUint16(out[2:], index)
	return append(out, call...)
}

// Batch Utility.batch(calls)
func (b *CallBuilder) Batch(calls ...[]byte) []byte {
	var buf bytes.Buffer
	e := scale.NewEncoder(&buf)
	buf.WriteByte(b.relay().UtilityPallet)
	buf.WriteByte(b.relay().BatchCall)
	if err := types.EncodeCompact(*e, uint64(len(calls))); err != nil {
		panic(err)
	}
	for _, call := range calls {
		buf.Write(call)
	}
	return buf.Bytes()
}

// FinalizeIntoMessage [WithdrawAsset, BuyExecution, Transact]，手续费使用中继链原生资产
func (b *CallBuilder) FinalizeIntoMessage(call []byte, fee uint64, requiredWeight types.Weight) types.Xcm {
	asset := types.NewAsset(types.Here(), fee)
	return types.Xcm{
		types.WithdrawAsset{Assets: types.Assets{asset}},
		types.BuyExecution{Fees: asset, WeightLimit: types.Unlimited()},
		types.Transact{
			OriginType:          types.OriginSovereignAccount,
			RequireWeightAtMost: requiredWeight,
			Call:                call,
		},
	}
}

// FinalizeWithRefund 在 FinalizeIntoMessage 之后退回未用完的手续费到本链的主权账户
func (b *CallBuilder) FinalizeWithRefund(call []byte, fee uint64, requiredWeight types.Weight) types.Xcm {
	return append(b.FinalizeIntoMessage(call, fee, requiredWeight),
		types.RefundSurplus{},
		types.DepositAsset{
			Assets:      types.WildAll(),
			MaxAssets:   1,
			Beneficiary: types.ChildLocation(b.cfg.ParaID),
		},
	)
}
