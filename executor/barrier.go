// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/xsettle/types"
)

// Barrier 决定一条消息是否允许执行。
// ShouldExecute 可以改写 msg 中的 BuyExecution 权重上限；credit 为本地预付的权重
type Barrier interface {
	ShouldExecute(origin types.Location, msg types.Xcm, maxWeight types.Weight, credit *types.Weight) error
}

// AllowTopLevelPaidExecution 只接受先收到资产再购买执行权重的消息：
// WithdrawAsset/ReserveAssetDeposited/ClaimAsset，可选的 ClearOrigin，然后是 BuyExecution
type AllowTopLevelPaidExecution struct {
	// Origins 为空时接受所有来源
	Origins func(origin types.Location) bool
}

// ShouldExecute 检查并把 BuyExecution 的上限改写为整条消息的权重
func (b AllowTopLevelPaidExecution) ShouldExecute(origin types.Location, msg types.Xcm, maxWeight types.Weight, credit *types.Weight) error {
	if b.Origins != nil && !b.Origins(origin) {
		return types.ErrBarrierDenied
	}
	i := 0
	if i >= len(msg) {
		return types.ErrBarrierDenied
	}
	switch msg[i].(type) {
	case types.WithdrawAsset, types.ReserveAssetDeposited, types.ClaimAsset:
	default:
		return types.ErrBarrierDenied
	}
	i++
	if i < len(msg) {
		if _, ok := msg[i].(types.ClearOrigin); ok {
			i++
		}
	}
	if i >= len(msg) {
		return types.ErrBarrierDenied
	}
	buy, ok := msg[i].(types.BuyExecution)
	if !ok {
		return types.ErrBarrierDenied
	}
	if buy.WeightLimit.Limited && buy.WeightLimit.Weight < maxWeight {
		return types.ErrWeightLimitTooLow
	}
	buy.WeightLimit = types.Limited(maxWeight)
	msg[i] = buy
	return nil
}

// TakeWeightCredit 本地执行时用预付的权重抵扣
type TakeWeightCredit struct{}

// ShouldExecute 预付权重足够时扣减并放行
func (TakeWeightCredit) ShouldExecute(origin types.Location, msg types.Xcm, maxWeight types.Weight, credit *types.Weight) error {
	if credit == nil || *credit < maxWeight {
		return types.ErrBarrierDenied
	}
	*credit -= maxWeight
	return nil
}

// AllowUnpaidExecution 特权来源免费执行
type AllowUnpaidExecution struct {
	Origins []types.Location
}

// ShouldExecute 来源在名单内时放行
func (b AllowUnpaidExecution) ShouldExecute(origin types.Location, msg types.Xcm, maxWeight types.Weight, credit *types.Weight) error {
	for _, o := range b.Origins {
		if o.Equal(origin) {
			return nil
		}
	}
	return types.ErrBarrierDenied
}

// Barriers 依次尝试，任一放行即可；全部拒绝时返回最具体的原因
type Barriers []Barrier

// ShouldExecute 组合检查
func (bs Barriers) ShouldExecute(origin types.Location, msg types.Xcm, maxWeight types.Weight, credit *types.Weight) error {
	reason := types.ErrBarrierDenied
	for _, b := range bs {
		err := b.ShouldExecute(origin, msg, maxWeight, credit)
		if err == nil {
			return nil
		}
		if err == types.ErrWeightLimitTooLow {
			reason = err
		}
	}
	return reason
}
