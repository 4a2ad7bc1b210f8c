// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package db

import (
	"path"
	"strconv"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

func init() {
	dbCreator := func(name string, dir string, cache int) (DB, error) {
		return NewGoLevelDB(name, dir, cache)
	}
	registerDBCreator(LevelDBBackendStr, dbCreator, false)
	registerDBCreator(GoLevelDBBackendStr, dbCreator, false)
}

// GoLevelDB db
type GoLevelDB struct {
	db *leveldb.DB
}

// NewGoLevelDB new
func NewGoLevelDB(name string, dir string, cache int) (*GoLevelDB, error) {
	dbPath := path.Join(dir, name+".db")
	if cache < 16 {
		cache = 16
	}
	handles := cache
	// Open the db and recover any potential corruptions
	db, err := leveldb.OpenFile(dbPath, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dbPath, nil)
	}
	if err != nil {
		return nil, err
	}
	return &GoLevelDB{db: db}, nil
}

// Get get
func (db *GoLevelDB) Get(key []byte) ([]byte, error) {
	res, err := db.db.Get(key, nil)
	if err == errors.ErrNotFound {
		return nil, ErrNotFoundInDb
	}
	if err != nil {
		dlog.Error("Get", "error", err)
		return nil, err
	}
	return res, nil
}

// Set set
func (db *GoLevelDB) Set(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

// SetSync 同步写
func (db *GoLevelDB) SetSync(key []byte, value []byte) error {
	return db.db.Put(key, value, &opt.WriteOptions{Sync: true})
}

// Delete delete
func (db *GoLevelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

// DeleteSync 同步删除
func (db *GoLevelDB) DeleteSync(key []byte) error {
	return db.db.Delete(key, &opt.WriteOptions{Sync: true})
}

// DB 底层数据库
func (db *GoLevelDB) DB() *leveldb.DB {
	return db.db
}

// Close close
func (db *GoLevelDB) Close() {
	if err := db.db.Close(); err != nil {
		dlog.Error("Close", "error", err)
	}
}

// Stats 统计
func (db *GoLevelDB) Stats() map[string]string {
	keys := []string{"leveldb.stats", "leveldb.iostats", "leveldb.writedelay"}
	stats := make(map[string]string)
	stats["database.type"] = "goleveldb"
	for _, key := range keys {
		str, err := db.db.GetProperty(key)
		if err == nil {
			stats[key] = str
		}
	}
	return stats
}

// PrefixScan 前缀扫描
func (db *GoLevelDB) PrefixScan(prefix []byte) ([]KV, error) {
	it := db.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()
	var kvs []KV
	for it.Next() {
		kvs = append(kvs, KV{Key: CopyBytes(it.Key()), Value: CopyBytes(it.Value())})
	}
	return kvs, it.Error()
}

// NewBatch new batch
func (db *GoLevelDB) NewBatch(sync bool) Batch {
	return &goLevelDBBatch{db: db, batch: new(leveldb.Batch), wop: &opt.WriteOptions{Sync: sync}}
}

type goLevelDBBatch struct {
	db    *GoLevelDB
	batch *leveldb.Batch
	wop   *opt.WriteOptions
	size  int
}

func (mBatch *goLevelDBBatch) Set(key, value []byte) {
	mBatch.batch.Put(key, value)
	mBatch.size += len(value)
}

func (mBatch *goLevelDBBatch) Delete(key []byte) {
	mBatch.batch.Delete(key)
	mBatch.size++
}

func (mBatch *goLevelDBBatch) Write() error {
	return mBatch.db.db.Write(mBatch.batch, mBatch.wop)
}

func (mBatch *goLevelDBBatch) ValueSize() int {
	return mBatch.size
}

func (mBatch *goLevelDBBatch) Reset() {
	mBatch.batch.Reset()
	mBatch.size = 0
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
