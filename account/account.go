// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package account 实现跨链资产的账本操作
*/
package account

//package for account manger
//1. load from db
//2. save to db
//3. KVSet
//4. Transfer
//5. Deposit
//6. Withdraw
//7. Account balance query

import (
	"strings"

	dbm "github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
)

var alog = log.New("module", "account")

// ErrSymbolNameNotAllow symbol 不能包含 "-"
var ErrSymbolNameNotAllow = errors.New("ErrSymbolNameNotAllow")

// DB 单一币种的账户数据库
type DB struct {
	db               dbm.DB
	accountKeyPerfix []byte
	symbol           string
}

// NewAccountDB 创建币种账户数据库
func NewAccountDB(symbol string, db dbm.DB) (*DB, error) {
	if symbol == "" || strings.ContainsRune(symbol, '-') {
		return nil, ErrSymbolNameNotAllow
	}
	return &DB{
		db:               db,
		accountKeyPerfix: []byte(SymbolPrefix(symbol)),
		symbol:           symbol,
	}, nil
}

// SymbolPrefix 账户 key 前缀
func SymbolPrefix(symbol string) string {
	return types.AccountKeyPrefix + symbol + "-"
}

// Symbol 币种
func (acc *DB) Symbol() string {
	return acc.symbol
}

// AccountKey 账户 key
func (acc *DB) AccountKey(addr types.AccountID) []byte {
	key := make([]byte, 0, len(acc.accountKeyPerfix)+len(addr.Hex()))
	key = append(key, acc.accountKeyPerfix...)
	return append(key, addr.Hex()...)
}

// LoadAccount 不存在时返回零余额账户
func (acc *DB) LoadAccount(addr types.AccountID) *Account {
	value, err := acc.db.Get(acc.AccountKey(addr))
	if err != nil {
		return &Account{Addr: addr}
	}
	var acc1 Account
	err = types.DecodeFromBytes(value, &acc1)
	if err != nil {
		panic(err) //数据库已经损坏
	}
	return &acc1
}

// FreeBalance 余额
func (acc *DB) FreeBalance(addr types.AccountID) uint64 {
	return acc.LoadAccount(addr).Balance
}

// CheckTransfer 检查余额是否足够
func (acc *DB) CheckTransfer(from, to types.AccountID, amount uint64) error {
	if amount == 0 {
		return types.ErrInvalidAmount
	}
	if acc.LoadAccount(from).Balance < amount {
		return types.ErrInsufficientBalance
	}
	return nil
}

// Transfer 转账，同一账户转账不改变余额
func (acc *DB) Transfer(from, to types.AccountID, amount uint64) (*Receipt, error) {
	if err := acc.CheckTransfer(from, to, amount); err != nil {
		return nil, err
	}
	if from == to {
		return &Receipt{}, nil
	}
	accFrom := acc.LoadAccount(from)
	accTo := acc.LoadAccount(to)
	if accTo.Balance+amount < accTo.Balance {
		return nil, types.ErrOverflow
	}
	copyfrom := *accFrom
	copyto := *accTo
	accFrom.Balance -= amount
	accTo.Balance += amount

	receiptBalanceFrom := &ReceiptAccountTransfer{Symbol: acc.symbol, Prev: copyfrom, Current: *accFrom}
	receiptBalanceTo := &ReceiptAccountTransfer{Symbol: acc.symbol, Prev: copyto, Current: *accTo}
	if err := acc.SaveAccounts(accFrom, accTo); err != nil {
		return nil, err
	}
	return acc.transferReceipt(accFrom, accTo, receiptBalanceFrom, receiptBalanceTo), nil
}

// Deposit 增发到账户
func (acc *DB) Deposit(addr types.AccountID, amount uint64) (*Receipt, error) {
	return acc.depositBalance(addr, amount)
}

// Withdraw 从账户销毁
func (acc *DB) Withdraw(addr types.AccountID, amount uint64) (*Receipt, error) {
	if amount == 0 {
		return nil, types.ErrInvalidAmount
	}
	acc1 := acc.LoadAccount(addr)
	if acc1.Balance < amount {
		return nil, types.ErrInsufficientBalance
	}
	copyacc := *acc1
	acc1.Balance -= amount
	return acc.balanceReceipt(TyLogWithdraw, &copyacc, acc1)
}

func (acc *DB) depositBalance(addr types.AccountID, amount uint64) (*Receipt, error) {
	if amount == 0 {
		return nil, types.ErrInvalidAmount
	}
	acc1 := acc.LoadAccount(addr)
	if acc1.Balance+amount < acc1.Balance {
		return nil, types.ErrOverflow
	}
	copyacc := *acc1
	acc1.Balance += amount
	return acc.balanceReceipt(TyLogDeposit, &copyacc, acc1)
}

func (acc *DB) balanceReceipt(ty int32, prev, current *Account) (*Receipt, error) {
	if err := acc.SaveAccounts(current); err != nil {
		return nil, err
	}
	receiptBalance := &ReceiptAccountTransfer{Symbol: acc.symbol, Prev: *prev, Current: *current}
	return &Receipt{
		KV:   acc.GetKVSet(current),
		Logs: []*ReceiptLog{{Ty: ty, Log: types.MustEncode(receiptBalance)}},
	}, nil
}

func (acc *DB) transferReceipt(accFrom, accTo *Account, receiptFrom, receiptTo *ReceiptAccountTransfer) *Receipt {
	log1 := &ReceiptLog{Ty: TyLogTransfer, Log: types.MustEncode(receiptFrom)}
	log2 := &ReceiptLog{Ty: TyLogTransfer, Log: types.MustEncode(receiptTo)}
	kv := acc.GetKVSet(accFrom)
	kv = append(kv, acc.GetKVSet(accTo)...)
	return &Receipt{
		KV:   kv,
		Logs: []*ReceiptLog{log1, log2},
	}
}

// SaveAccounts 在一个批次中写入
func (acc *DB) SaveAccounts(accs ...*Account) error {
	batch := acc.db.NewBatch(false)
	for _, acc1 := range accs {
		for _, kv := range acc.GetKVSet(acc1) {
			batch.Set(kv.Key, kv.Value)
		}
	}
	if err := batch.Write(); err != nil {
		alog.Error("SaveAccounts", "symbol", acc.symbol, "err", err)
		return err
	}
	return nil
}

// GetKVSet 账户的存储键值
func (acc *DB) GetKVSet(acc1 *Account) (kvset []dbm.KV) {
	kvset = append(kvset, dbm.KV{
		Key:   acc.AccountKey(acc1.Addr),
		Value: types.MustEncode(acc1),
	})
	return kvset
}

// ListAccounts 列出所有有记录的账户
func (acc *DB) ListAccounts() ([]*Account, error) {
	kvs, err := acc.db.PrefixScan(acc.accountKeyPerfix)
	if err != nil {
		return nil, err
	}
	accs := make([]*Account, 0, len(kvs))
	for _, kv := range kvs {
		var acc1 Account
		if err := types.DecodeFromBytes(kv.Value, &acc1); err != nil {
			return nil, err
		}
		accs = append(accs, &acc1)
	}
	return accs, nil
}

// TotalIssuance 所有账户余额之和
func (acc *DB) TotalIssuance() (uint64, error) {
	accs, err := acc.ListAccounts()
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, a := range accs {
		total += a.Balance
	}
	return total, nil
}
