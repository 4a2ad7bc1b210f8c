// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relaychain

import (
	"bytes"
	"encoding/binary"

	"github.com/33cn/xsettle/account"
	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/types"
	"github.com/centrifuge/go-substrate-rpc-client/v3/scale"
	"github.com/pkg/errors"
)

var rlog = log.New("module", "relaychain")

// ErrBatchInterrupted batch 中某个调用失败，之前的调用不回滚
var ErrBatchInterrupted = errors.New("ErrBatchInterrupted")

// 批量调用的最大嵌套与数量
const (
	maxCallDepth = 4
	maxBatchSize = 64
)

// Balances 中继链原生资产账本
type Balances interface {
	FreeBalance(asset types.Location, who types.AccountID) (uint64, error)
	Transfer(asset types.Location, from, to types.AccountID, amount uint64) error
}

// Call 已解码的中继链调用
type Call interface {
	Name() string
	call()
}

// TransferKeepAlive Balances.transfer_keep_alive
type TransferKeepAlive struct {
	Dest   types.AccountID
	Amount uint64
}

// AsDerivative Utility.as_derivative
type AsDerivative struct {
	Index uint16
	Call  Call
}

// BatchAll Utility.batch
type BatchAll struct {
	Calls []Call
}

func (TransferKeepAlive) call() {}
func (AsDerivative) call()      {}
func (BatchAll) call()          {}

// Name call name
func (TransferKeepAlive) Name() string { return "Balances.transfer_keep_alive" }

// Name call name
func (AsDerivative) Name() string { return "Utility.as_derivative" }

// Name call name
func (BatchAll) Name() string { return "Utility.batch" }

// Dispatcher 在中继链上执行 Transact 携带的调用
type Dispatcher struct {
	cfg      *types.Config
	balances Balances
	native   types.Location
}

// NewDispatcher new
func NewDispatcher(cfg *types.Config, balances Balances) *Dispatcher {
	return &Dispatcher{cfg: cfg, balances: balances, native: types.Here()}
}

// Decode 解码完整的调用，不允许多余字节
func (d *Dispatcher) Decode(data []byte) (Call, error) {
	r := bytes.NewReader(data)
	c, err := d.decodeCall(*scale.NewDecoder(r), 0)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, errors.Wrapf(types.ErrCallDecode, "%d trailing bytes", r.Len())
	}
	return c, nil
}

func (d *Dispatcher) decodeCall(dec scale.Decoder, depth int) (Call, error) {
	if depth > maxCallDepth {
		return nil, errors.Wrap(types.ErrCallDecode, "nested too deep")
	}
	var idx [2]byte
	if err := dec.Read(idx[:]); err != nil {
		return nil, errors.Wrap(types.ErrCallDecode, err.Error())
	}
	relay := d.cfg.Relay
	switch {
	case idx[0] == relay.BalancesPallet && idx[1] == relay.TransferKeepAliveCall:
		kind, err := dec.ReadOneByte()
		if err != nil {
			return nil, errors.Wrap(types.ErrCallDecode, err.Error())
		}
		if kind != multiAddressID {
			return nil, errors.Wrapf(types.ErrCallDecode, "unsupported address kind %d", kind)
		}
		var c TransferKeepAlive
		if err := dec.Read(c.Dest[:]); err != nil {
			return nil, errors.Wrap(types.ErrCallDecode, err.Error())
		}
		amount, err := types.DecodeCompact(dec)
		if err != nil {
			return nil, errors.Wrap(types.ErrCallDecode, err.Error())
		}
		c.Amount = amount
		return c, nil
	case idx[0] == relay.UtilityPallet && idx[1] == relay.AsDerivativeCall:
		var index [2]byte
		if err := dec.Read(index[:]); err != nil {
			return nil, errors.Wrap(types.ErrCallDecode, err.Error())
		}
		inner, err := d.decodeCall(dec, depth+1)
		if err != nil {
			return nil, err
		}
		return AsDerivative{Index: binary.LittleEndian.Uint16(index[:]), Call: inner}, nil
	case idx[0] == relay.UtilityPallet && idx[1] == relay.BatchCall:
		n, err := types.DecodeCompact(dec)
		if err != nil {
			return nil, errors.Wrap(types.ErrCallDecode, err.Error())
		}
		if n > maxBatchSize {
			return nil, errors.Wrapf(types.ErrCallDecode, "batch of %d calls", n)
		}
		c := BatchAll{Calls: make([]Call, 0, n)}
		for i := uint64(0); i < n; i++ {
			inner, err := d.decodeCall(dec, depth+1)
			if err != nil {
				return nil, err
			}
			c.Calls = append(c.Calls, inner)
		}
		return c, nil
	}
	return nil, errors.Wrapf(types.ErrCallDecode, "unknown call %d.%d", idx[0], idx[1])
}

// Weight 调用的预估权重：转账为配置值，每层 utility 包装加一个指令单位
func (d *Dispatcher) Weight(c Call) types.Weight {
	switch v := c.(type) {
	case TransferKeepAlive:
		return d.cfg.Relay.TransferWeight
	case AsDerivative:
		return d.cfg.Xcm.UnitWeight + d.Weight(v.Call)
	case BatchAll:
		w := d.cfg.Xcm.UnitWeight
		for _, inner := range v.Calls {
			w += d.Weight(inner)
		}
		return w
	}
	return 0
}

// Dispatch 解码并执行调用。没有执行后的权重修正，按 maxWeight 全额计费
func (d *Dispatcher) Dispatch(origin types.AccountID, data []byte, maxWeight types.Weight) (types.Weight, error) {
	c, err := d.Decode(data)
	if err != nil {
		return 0, err
	}
	if w := d.Weight(c); w > maxWeight {
		return 0, errors.Wrapf(types.ErrWeightLimitReached, "%s needs %d, limit %d", c.Name(), w, maxWeight)
	}
	if err := d.apply(origin, c); err != nil {
		rlog.Info("Dispatch failed", "origin", origin, "call", c.Name(), "err", err)
		return maxWeight, err
	}
	rlog.Debug("Dispatch", "origin", origin, "call", c.Name())
	return maxWeight, nil
}

func (d *Dispatcher) apply(origin types.AccountID, c Call) error {
	switch v := c.(type) {
	case TransferKeepAlive:
		return d.transferKeepAlive(origin, v)
	case AsDerivative:
		return d.apply(account.DerivativeAccount(origin, v.Index), v.Call)
	case BatchAll:
		for i, inner := range v.Calls {
			if err := d.apply(origin, inner); err != nil {
				return errors.Wrapf(ErrBatchInterrupted, "call %d: %v", i, err)
			}
		}
		return nil
	}
	return errors.Wrapf(types.ErrCallDecode, "unsupported call %s", c.Name())
}

// transferKeepAlive 转出后发送方余额不能低于存在性押金，接收方余额也必须达到存在性押金
func (d *Dispatcher) transferKeepAlive(from types.AccountID, c TransferKeepAlive) error {
	ed := d.cfg.Relay.ExistentialDeposit
	balance, err := d.balances.FreeBalance(d.native, from)
	if err != nil {
		return err
	}
	if balance < c.Amount {
		return errors.Wrapf(types.ErrInsufficientBalance, "%s has %d", from, balance)
	}
	if balance-c.Amount < ed && from != c.Dest {
		return errors.Wrapf(types.ErrExistentialDeposit, "%s would fall below %d", from, ed)
	}
	dest, err := d.balances.FreeBalance(d.native, c.Dest)
	if err != nil {
		return err
	}
	if dest+c.Amount < ed {
		return errors.Wrapf(types.ErrExistentialDeposit, "%s would hold %d", c.Dest, dest+c.Amount)
	}
	return d.balances.Transfer(d.native, from, c.Dest, c.Amount)
}
