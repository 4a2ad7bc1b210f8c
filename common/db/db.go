// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db 账本使用的 KV 存储，支持 memdb/leveldb/gobadgerdb
package db

import (
	"errors"
	"sort"

	"github.com/33cn/xsettle/common/log"
)

var dlog = log.New("module", "db")

// ErrNotFoundInDb key 不存在
var ErrNotFoundInDb = errors.New("ErrNotFoundInDb")

// ErrUnknownBackend 未注册的数据库类型
var ErrUnknownBackend = errors.New("ErrUnknownBackend")

// KV 键值对
type KV struct {
	Key   []byte
	Value []byte
}

// KVDB 最小读写接口
type KVDB interface {
	Get(key []byte) ([]byte, error)
	Set(key []byte, value []byte) error
}

// DB 数据库接口
type DB interface {
	KVDB
	SetSync([]byte, []byte) error
	Delete([]byte) error
	DeleteSync([]byte) error
	Close()
	NewBatch(sync bool) Batch
	// PrefixScan 按 key 升序返回前缀下的所有键值
	PrefixScan(prefix []byte) ([]KV, error)
	Stats() map[string]string
}

// Batch 批量写，Write 之前对读不可见
type Batch interface {
	Set(key, value []byte)
	Delete(key []byte)
	Write() error
	ValueSize() int
	Reset()
}

const (
	// LevelDBBackendStr legacy, defaults to goleveldb.
	LevelDBBackendStr    = "leveldb"
	GoLevelDBBackendStr  = "goleveldb"
	MemDBBackendStr      = "memdb"
	GoBadgerDBBackendStr = "gobadgerdb"
)

type dbCreator func(name string, dir string, cache int) (DB, error)

var backends = map[string]dbCreator{}

func registerDBCreator(backend string, creator dbCreator, force bool) {
	_, ok := backends[backend]
	if !force && ok {
		return
	}
	backends[backend] = creator
}

// Backends 已注册的数据库类型
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewDB 创建数据库
func NewDB(name string, backend string, dir string, cache int) (DB, error) {
	creator, ok := backends[backend]
	if !ok {
		dlog.Error("NewDB", "backend", backend, "err", ErrUnknownBackend)
		return nil, ErrUnknownBackend
	}
	db, err := creator(name, dir, cache)
	if err != nil {
		dlog.Error("NewDB", "backend", backend, "dir", dir, "err", err)
		return nil, err
	}
	return db, nil
}

// CopyBytes copy bytes
func CopyBytes(b []byte) (copiedBytes []byte) {
	if b == nil {
		return nil
	}
	copiedBytes = make([]byte, len(b))
	copy(copiedBytes, b)
	return copiedBytes
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// opBatch 记录操作，Write 时统一提交
type opBatch struct {
	ops   []batchOp
	size  int
	apply func(ops []batchOp) error
}

func (b *opBatch) Set(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: CopyBytes(key), value: CopyBytes(value)})
	b.size += len(value)
}

func (b *opBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: CopyBytes(key), delete: true})
	b.size++
}

func (b *opBatch) Write() error {
	return b.apply(b.ops)
}

func (b *opBatch) ValueSize() int {
	return b.size
}

func (b *opBatch) Reset() {
	b.ops = b.ops[:0]
	b.size = 0
}
