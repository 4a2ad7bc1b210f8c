// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package address SS58 账户地址编码
package address

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/33cn/xsettle/types"
	"github.com/decred/base58"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/crypto/blake2b"
)

// 常用网络前缀
const (
	PolkadotPrefix uint16 = 0
	KusamaPrefix   uint16 = 2
	GenericPrefix  uint16 = 42
	// MaxPrefix 两字节格式的上限
	MaxPrefix uint16 = 16383
)

var ss58Pre = []byte("SS58PRE")

var (
	// ErrAddressFormat 地址无法解码
	ErrAddressFormat = errors.New("ErrAddressFormat")
	// ErrAddressChecksum 校验和错误
	ErrAddressChecksum = errors.New("ErrAddressChecksum")
	// ErrAddressPrefix 网络前缀不匹配
	ErrAddressPrefix = errors.New("ErrAddressPrefix")
)

var addressCache *lru.Cache

func init() {
	addressCache, _ = lru.New(10240)
}

type cacheKey struct {
	prefix uint16
	id     types.AccountID
}

func prefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	first := byte((prefix&0xfc)>>2) | 0x40
	second := byte(prefix>>8) | byte((prefix&0x03)<<6)
	return []byte{first, second}
}

func checksum(data []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Pre)
	h.Write(data)
	return h.Sum(nil)[:2]
}

// Encode 账户转为 SS58 地址，计算量有点大，做一次cache
func Encode(id types.AccountID, prefix uint16) string {
	if prefix > MaxPrefix {
		panic(fmt.Sprintf("ss58 prefix %d out of range", prefix))
	}
	key := cacheKey{prefix: prefix, id: id}
	if value, ok := addressCache.Get(key); ok {
		return value.(string)
	}
	data := append(prefixBytes(prefix), id[:]...)
	addr := base58.Encode(append(data, checksum(data)...))
	addressCache.Add(key, addr)
	return addr
}

// Decode SS58 地址解析为账户和网络前缀
func Decode(addr string) (types.AccountID, uint16, error) {
	var id types.AccountID
	dec := base58.Decode(addr)
	if len(dec) == 0 {
		return id, 0, ErrAddressFormat
	}
	var prefix uint16
	var prefixLen int
	switch {
	case dec[0] < 64:
		prefix, prefixLen = uint16(dec[0]), 1
	case dec[0] < 128 && len(dec) > 1:
		lower := uint16(dec[0]&0x3f)<<2 | uint16(dec[1]>>6)
		upper := uint16(dec[1] & 0x3f)
		prefix, prefixLen = lower|upper<<8, 2
	default:
		return id, 0, ErrAddressFormat
	}
	if len(dec) != prefixLen+types.AccountIDLen+2 {
		return id, 0, ErrAddressFormat
	}
	body := dec[:prefixLen+types.AccountIDLen]
	if !bytes.Equal(checksum(body), dec[len(body):]) {
		return id, 0, ErrAddressChecksum
	}
	copy(id[:], body[prefixLen:])
	return id, prefix, nil
}

// DecodeWithPrefix 解析并检查网络前缀
func DecodeWithPrefix(addr string, prefix uint16) (types.AccountID, error) {
	id, got, err := Decode(addr)
	if err != nil {
		return id, err
	}
	if got != prefix {
		return id, ErrAddressPrefix
	}
	return id, nil
}

// ParseAccount 支持 0x 十六进制或任意前缀的 SS58 地址
func ParseAccount(s string) (types.AccountID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return types.HexToAccountID(s)
	}
	id, _, err := Decode(s)
	return id, err
}
