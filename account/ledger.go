// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	dbm "github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
)

// Ledger 按资产位置路由到各币种账户数据库，记录本次执行产生的 receipt
type Ledger struct {
	cfg      *types.Config
	accounts map[string]*DB
	receipt  *Receipt
}

// NewLedger 为配置中的每个币种创建账户数据库
func NewLedger(cfg *types.Config, db dbm.DB) (*Ledger, error) {
	l := &Ledger{cfg: cfg, accounts: make(map[string]*DB, len(cfg.Currency))}
	for _, cur := range cfg.Currency {
		acc, err := NewAccountDB(cur.Symbol, db)
		if err != nil {
			return nil, errors.Wrapf(err, "currency %s", cur.Symbol)
		}
		l.accounts[cur.Loc().Key()] = acc
	}
	return l, nil
}

// AccountDB 资产对应的账户数据库
func (l *Ledger) AccountDB(asset types.Location) (*DB, error) {
	acc, ok := l.accounts[asset.Key()]
	if !ok {
		return nil, errors.Wrap(types.ErrUnknownCurrency, asset.String())
	}
	return acc, nil
}

// FreeBalance 余额
func (l *Ledger) FreeBalance(asset types.Location, who types.AccountID) (uint64, error) {
	acc, err := l.AccountDB(asset)
	if err != nil {
		return 0, err
	}
	return acc.FreeBalance(who), nil
}

// Deposit 增发
func (l *Ledger) Deposit(asset types.Location, who types.AccountID, amount uint64) error {
	acc, err := l.AccountDB(asset)
	if err != nil {
		return err
	}
	receipt, err := acc.Deposit(who, amount)
	if err != nil {
		return err
	}
	l.record(receipt)
	return nil
}

// Withdraw 销毁
func (l *Ledger) Withdraw(asset types.Location, who types.AccountID, amount uint64) error {
	acc, err := l.AccountDB(asset)
	if err != nil {
		return err
	}
	receipt, err := acc.Withdraw(who, amount)
	if err != nil {
		return err
	}
	l.record(receipt)
	return nil
}

// Transfer 转账
func (l *Ledger) Transfer(asset types.Location, from, to types.AccountID, amount uint64) error {
	acc, err := l.AccountDB(asset)
	if err != nil {
		return err
	}
	receipt, err := acc.Transfer(from, to, amount)
	if err != nil {
		return err
	}
	l.record(receipt)
	return nil
}

func (l *Ledger) record(receipt *Receipt) {
	l.receipt = MergeReceipt(l.receipt, receipt)
}

// TakeReceipt 取出并清空已记录的 receipt
func (l *Ledger) TakeReceipt() *Receipt {
	r := l.receipt
	l.receipt = nil
	if r == nil {
		return &Receipt{}
	}
	return r
}

// Balances 账户在所有币种上的余额
func (l *Ledger) Balances(who types.AccountID) map[string]uint64 {
	out := make(map[string]uint64, len(l.accounts))
	for _, acc := range l.accounts {
		out[acc.Symbol()] = acc.FreeBalance(who)
	}
	return out
}
