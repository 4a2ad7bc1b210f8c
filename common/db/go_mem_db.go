// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb/comparer"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/memdb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoMemDB(name, dir, cache)
	}
	registerDBCreator(MemDBBackendStr, dbCreator, false)
}

// GoMemDB 内存数据库，测试和单次执行使用
type GoMemDB struct {
	// memdb 自身线程安全，mu 保证批量写的原子性
	mu sync.RWMutex
	db *memdb.DB
}

// NewGoMemDB new
func NewGoMemDB(name string, dir string, cache int) (*GoMemDB, error) {
	if cache <= 0 {
		cache = 1
	}
	return &GoMemDB{db: memdb.New(comparer.DefaultComparer, cache*1024*1024)}, nil
}

// Get get
func (db *GoMemDB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, err := db.db.Get(key)
	if err == errors.ErrNotFound {
		return nil, ErrNotFoundInDb
	}
	if err != nil {
		return nil, err
	}
	return CopyBytes(v), nil
}

// Set set
func (db *GoMemDB) Set(key []byte, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.db.Put(key, value)
}

// SetSync 与 Set 相同
func (db *GoMemDB) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

// Delete delete
func (db *GoMemDB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	err := db.db.Delete(key)
	if err == errors.ErrNotFound {
		return nil
	}
	return err
}

// DeleteSync 与 Delete 相同
func (db *GoMemDB) DeleteSync(key []byte) error {
	return db.Delete(key)
}

// Close 释放内存
func (db *GoMemDB) Close() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.db.Reset()
}

// Stats 统计
func (db *GoMemDB) Stats() map[string]string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]string{
		"database.type": "memdb",
		"keys":          itoa(db.db.Len()),
		"size":          itoa(db.db.Size()),
	}
}

// PrefixScan 前缀扫描
func (db *GoMemDB) PrefixScan(prefix []byte) ([]KV, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	it := db.db.NewIterator(util.BytesPrefix(prefix))
	defer it.Release()
	var kvs []KV
	for it.Next() {
		kvs = append(kvs, KV{Key: CopyBytes(it.Key()), Value: CopyBytes(it.Value())})
	}
	return kvs, it.Error()
}

// NewBatch new batch
func (db *GoMemDB) NewBatch(sync bool) Batch {
	return &opBatch{apply: db.apply}
}

func (db *GoMemDB) apply(ops []batchOp) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, op := range ops {
		if op.delete {
			if err := db.db.Delete(op.key); err != nil && err != errors.ErrNotFound {
				return err
			}
			continue
		}
		if err := db.db.Put(op.key, op.value); err != nil {
			return err
		}
	}
	return nil
}
