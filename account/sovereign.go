// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	"encoding/binary"

	"github.com/33cn/xsettle/types"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// 主权账户标签
var (
	parentTag  = []byte("Parent")
	siblingTag = []byte("sibl")
	childTag   = []byte("para")
	palletTag  = []byte("modl")
	// 派生子账户的 blake2 输入前缀
	derivativeTag = []byte("modlpy/utilisuba")
)

var sovereignCache *lru.Cache

func init() {
	sovereignCache, _ = lru.New(10240)
}

// SovereignAccount 远端链在本链持有抵押资产的账户，计算结果做一次cache
func SovereignAccount(chain types.Chain) types.AccountID {
	if value, ok := sovereignCache.Get(chain); ok {
		return value.(types.AccountID)
	}
	var id types.AccountID
	switch chain.Kind {
	case types.ChainParent:
		copy(id[:], parentTag)
	case types.ChainSibling:
		copy(id[:], siblingTag)
		binary.LittleEndian.PutUint32(id[len(siblingTag):], chain.ID)
	case types.ChainChild:
		copy(id[:], childTag)
		binary.LittleEndian.PutUint32(id[len(childTag):], chain.ID)
	default:
		panic(errors.Errorf("unknown chain kind %d", chain.Kind))
	}
	sovereignCache.Add(chain, id)
	return id
}

// DerivativeAccount utility.as_derivative 使用的子账户
func DerivativeAccount(who types.AccountID, index uint16) types.AccountID {
	buf := make([]byte, 0, len(derivativeTag)+types.AccountIDLen+2)
	buf = append(buf, derivativeTag...)
	buf = append(buf, who[:]...)
	buf = append(buf, byte(index), byte(index>>8))
	return types.AccountID(blake2b.Sum256(buf))
}

// PalletAccount pallet 账户，如国库
func PalletAccount(id [types.PalletIDLen]byte) types.AccountID {
	var acc types.AccountID
	copy(acc[:], palletTag)
	copy(acc[len(palletTag):], id[:])
	return acc
}

// TreasuryAccount 配置中的国库账户
func TreasuryAccount(cfg *types.Config) types.AccountID {
	return PalletAccount(cfg.TreasuryPalletIDBytes())
}

// LocationToAccount 把来源位置转换为本链账户
func LocationToAccount(loc types.Location) (types.AccountID, error) {
	if chain, ok := types.ChainOf(loc); ok {
		return SovereignAccount(chain), nil
	}
	if loc.Parents == 0 && len(loc.Interior) == 1 && loc.Interior[0].Kind == types.JunctionAccountID32 {
		return loc.Interior[0].Account, nil
	}
	return types.AccountID{}, errors.Wrap(types.ErrLocationNotInvertible, loc.String())
}
