// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
)

// Weigher 计算消息权重
type Weigher interface {
	Weight(x types.Xcm) (types.Weight, error)
	InstrWeight(inst types.Instruction) (types.Weight, error)
}

// FixedWeightBounds 每条指令固定权重，Transact 额外加上声明的调用权重
type FixedWeightBounds struct {
	UnitWeight      types.Weight
	MaxInstructions int
}

// Weight 消息总权重
func (w FixedWeightBounds) Weight(x types.Xcm) (types.Weight, error) {
	if len(x) > w.MaxInstructions {
		return 0, errors.Wrapf(types.ErrWeightNotComputable, "%d instructions", len(x))
	}
	var total types.Weight
	for _, inst := range x {
		iw, err := w.InstrWeight(inst)
		if err != nil {
			return 0, err
		}
		if total+iw < total {
			return 0, errors.Wrap(types.ErrWeightNotComputable, "overflow")
		}
		total += iw
	}
	return total, nil
}

// InstrWeight 单条指令权重
func (w FixedWeightBounds) InstrWeight(inst types.Instruction) (types.Weight, error) {
	switch v := inst.(type) {
	case types.Transact:
		if w.UnitWeight+v.RequireWeightAtMost < w.UnitWeight {
			return 0, errors.Wrap(types.ErrWeightNotComputable, "overflow")
		}
		return w.UnitWeight + v.RequireWeightAtMost, nil
	default:
		return w.UnitWeight, nil
	}
}
