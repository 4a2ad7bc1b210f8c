// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	"github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/types"
	"github.com/centrifuge/go-substrate-rpc-client/v3/scale"
)

// receipt log 类型
const (
	TyLogDeposit  int32 = 1
	TyLogWithdraw int32 = 2
	TyLogTransfer int32 = 3
)

// Account 账户余额
type Account struct {
	Addr    types.AccountID
	Balance uint64
}

// Encode scale
func (a Account) Encode(e scale.Encoder) error {
	if err := e.Write(a.Addr[:]); err != nil {
		return err
	}
	return e.Encode(a.Balance)
}

// Decode scale
func (a *Account) Decode(d scale.Decoder) error {
	if err := d.Read(a.Addr[:]); err != nil {
		return err
	}
	return d.Decode(&a.Balance)
}

// ReceiptAccountTransfer 余额变更前后快照
type ReceiptAccountTransfer struct {
	Symbol  string
	Prev    Account
	Current Account
}

// Encode scale
func (r ReceiptAccountTransfer) Encode(e scale.Encoder) error {
	if err := types.EncodeBytes(e, []byte(r.Symbol)); err != nil {
		return err
	}
	if err := r.Prev.Encode(e); err != nil {
		return err
	}
	return r.Current.Encode(e)
}

// Decode scale
func (r *ReceiptAccountTransfer) Decode(d scale.Decoder) error {
	symbol, err := types.DecodeBytes(d)
	if err != nil {
		return err
	}
	r.Symbol = string(symbol)
	if err := r.Prev.Decode(d); err != nil {
		return err
	}
	return r.Current.Decode(d)
}

// ReceiptLog 一条日志
type ReceiptLog struct {
	Ty  int32
	Log []byte
}

// Receipt 一次账本操作的结果
type Receipt struct {
	KV   []db.KV
	Logs []*ReceiptLog
}

// DecodeTransfer 解析日志中的余额快照
func (l *ReceiptLog) DecodeTransfer() (*ReceiptAccountTransfer, error) {
	var r ReceiptAccountTransfer
	if err := types.DecodeFromBytes(l.Log, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MergeReceipt 合并两个 receipt
func MergeReceipt(receipt, receipt2 *Receipt) *Receipt {
	if receipt == nil {
		return receipt2
	}
	if receipt2 == nil {
		return receipt
	}
	receipt.KV = append(receipt.KV, receipt2.KV...)
	receipt.Logs = append(receipt.Logs, receipt2.Logs...)
	return receipt
}
