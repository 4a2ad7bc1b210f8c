// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"fmt"
	"path"

	"github.com/dgraph-io/badger"
)

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoBadgerDB(name, dir, cache)
	}
	registerDBCreator(GoBadgerDBBackendStr, dbCreator, false)
}

// GoBadgerDB db
type GoBadgerDB struct {
	db *badger.DB
}

// badger 日志转到 log15
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, v ...interface{}) {
	dlog.Error(fmt.Sprintf(format, v...))
}

func (badgerLogger) Warningf(format string, v ...interface{}) {
	dlog.Warn(fmt.Sprintf(format, v...))
}

func (badgerLogger) Infof(format string, v ...interface{}) {
	dlog.Debug(fmt.Sprintf(format, v...))
}

func (badgerLogger) Debugf(format string, v ...interface{}) {
	dlog.Debug(fmt.Sprintf(format, v...))
}

// NewGoBadgerDB new
func NewGoBadgerDB(name string, dir string, cache int) (*GoBadgerDB, error) {
	dbPath := path.Join(dir, name+".badger")
	opts := badger.DefaultOptions(dbPath).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &GoBadgerDB{db: db}, nil
}

// Get get
func (db *GoBadgerDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFoundInDb
	}
	if err != nil {
		dlog.Error("Get", "error", err)
		return nil, err
	}
	return val, nil
}

// Set set
func (db *GoBadgerDB) Set(key []byte, value []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// SetSync badger 事务提交即落盘
func (db *GoBadgerDB) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

// Delete delete
func (db *GoBadgerDB) Delete(key []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// DeleteSync delete
func (db *GoBadgerDB) DeleteSync(key []byte) error {
	return db.Delete(key)
}

// DB 底层数据库
func (db *GoBadgerDB) DB() *badger.DB {
	return db.db
}

// Close close
func (db *GoBadgerDB) Close() {
	if err := db.db.Close(); err != nil {
		dlog.Error("Close", "error", err)
	}
}

// Stats 统计
func (db *GoBadgerDB) Stats() map[string]string {
	lsm, vlog := db.db.Size()
	return map[string]string{
		"database.type": "gobadgerdb",
		"lsm":           fmt.Sprint(lsm),
		"vlog":          fmt.Sprint(vlog),
	}
}

// PrefixScan 前缀扫描
func (db *GoBadgerDB) PrefixScan(prefix []byte) ([]KV, error) {
	var kvs []KV
	err := db.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			kvs = append(kvs, KV{Key: item.KeyCopy(nil), Value: value})
		}
		return nil
	})
	return kvs, err
}

// NewBatch 所有操作在一个事务中提交
func (db *GoBadgerDB) NewBatch(sync bool) Batch {
	return &opBatch{apply: db.apply}
}

func (db *GoBadgerDB) apply(ops []batchOp) error {
	return db.db.Update(func(txn *badger.Txn) error {
		for _, op := range ops {
			var err error
			if op.delete {
				err = txn.Delete(op.key)
			} else {
				err = txn.Set(op.key, op.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}
