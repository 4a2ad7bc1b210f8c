// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"bytes"

	dbm "github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/types"
	"github.com/centrifuge/go-substrate-rpc-client/v3/scale"
	"github.com/pkg/errors"
)

// TrapRecord 被扣留的资产，同一 key 可以被扣留多次
type TrapRecord struct {
	Key         types.Hash
	Count       uint32
	Origin      types.Location
	Assets      types.Assets
	MessageHash types.Hash
}

// Encode scale
func (r TrapRecord) Encode(e scale.Encoder) error {
	if err := r.Key.Encode(e); err != nil {
		return err
	}
	if err := e.Encode(r.Count); err != nil {
		return err
	}
	if err := r.Origin.Encode(e); err != nil {
		return err
	}
	if err := r.Assets.Encode(e); err != nil {
		return err
	}
	return r.MessageHash.Encode(e)
}

// Decode scale
func (r *TrapRecord) Decode(d scale.Decoder) error {
	if err := r.Key.Decode(d); err != nil {
		return err
	}
	if err := d.Decode(&r.Count); err != nil {
		return err
	}
	if err := r.Origin.Decode(d); err != nil {
		return err
	}
	if err := r.Assets.Decode(d); err != nil {
		return err
	}
	return r.MessageHash.Decode(d)
}

// TrapKey blake2b-256(SCALE(origin, assets, messageHash))
func TrapKey(origin types.Location, assets types.Assets, messageHash types.Hash) types.Hash {
	var buf bytes.Buffer
	e := scale.NewEncoder(&buf)
	if err := origin.Encode(*e); err != nil {
		panic(err)
	}
	if err := assets.Encode(*e); err != nil {
		panic(err)
	}
	if err := messageHash.Encode(*e); err != nil {
		panic(err)
	}
	return types.HashOf(buf.Bytes())
}

// TrapStore 扣留资产计数，持久化在 KV 中
type TrapStore struct {
	db dbm.DB
}

// NewTrapStore new
func NewTrapStore(db dbm.DB) *TrapStore {
	return &TrapStore{db: db}
}

func trapDBKey(key types.Hash) []byte {
	return append([]byte(types.TrapKeyPrefix), key.Hex()...)
}

// Get 查询记录
func (s *TrapStore) Get(key types.Hash) (*TrapRecord, error) {
	value, err := s.db.Get(trapDBKey(key))
	if err == dbm.ErrNotFoundInDb {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var r TrapRecord
	if err := types.DecodeFromBytes(value, &r); err != nil {
		panic(err) //数据库已经损坏
	}
	return &r, nil
}

// Count 扣留次数
func (s *TrapStore) Count(key types.Hash) uint32 {
	r, err := s.Get(key)
	if err != nil {
		return 0
	}
	return r.Count
}

// Trap 扣留资产，返回 key
func (s *TrapStore) Trap(origin types.Location, assets types.Assets, messageHash types.Hash) (types.Hash, error) {
	key := TrapKey(origin, assets, messageHash)
	r, err := s.Get(key)
	if err == types.ErrNotFound {
		r = &TrapRecord{Key: key, Origin: origin, Assets: assets.Clone(), MessageHash: messageHash}
	} else if err != nil {
		return key, err
	}
	r.Count++
	return key, s.db.Set(trapDBKey(key), types.MustEncode(r))
}

// Claim 消耗一次扣留
func (s *TrapStore) Claim(origin types.Location, assets types.Assets, ticket types.Hash) error {
	key := TrapKey(origin, assets, ticket)
	r, err := s.Get(key)
	if err == types.ErrNotFound {
		return errors.Wrap(types.ErrUnknownClaim, key.Hex())
	}
	if err != nil {
		return err
	}
	r.Count--
	if r.Count == 0 {
		return s.db.Delete(trapDBKey(key))
	}
	return s.db.Set(trapDBKey(key), types.MustEncode(r))
}

// List 所有记录
func (s *TrapStore) List() ([]*TrapRecord, error) {
	kvs, err := s.db.PrefixScan([]byte(types.TrapKeyPrefix))
	if err != nil {
		return nil, err
	}
	out := make([]*TrapRecord, 0, len(kvs))
	for _, kv := range kvs {
		var r TrapRecord
		if err := types.DecodeFromBytes(kv.Value, &r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, nil
}
