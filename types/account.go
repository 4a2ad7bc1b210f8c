// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// AccountIDLen 账户长度
const AccountIDLen = 32

// AccountID 32 字节账户
type AccountID [AccountIDLen]byte

// ZeroAccount 全零账户
var ZeroAccount AccountID

// Hex 0x 前缀的十六进制
func (a AccountID) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) String() string {
	return a.Hex()
}

// Bytes copy of the raw id
func (a AccountID) Bytes() []byte {
	b := make([]byte, AccountIDLen)
	copy(b, a[:])
	return b
}

// IsZero reports whether every byte is zero.
func (a AccountID) IsZero() bool {
	return a == ZeroAccount
}

// BytesToAccountID 长度必须为 32
func BytesToAccountID(b []byte) (AccountID, error) {
	var id AccountID
	if len(b) != AccountIDLen {
		return id, errors.Wrapf(ErrInvalidAccount, "length %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// HexToAccountID parses a hex account with or without 0x prefix.
func HexToAccountID(s string) (AccountID, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
	if err != nil {
		return AccountID{}, errors.Wrap(ErrInvalidAccount, err.Error())
	}
	return BytesToAccountID(b)
}

// MustHexToAccountID panics on malformed input, for constants and tests.
func MustHexToAccountID(s string) AccountID {
	id, err := HexToAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// AccountFromSeed 测试账户：seed 左对齐、零填充
func AccountFromSeed(seed byte) AccountID {
	var id AccountID
	for i := range id {
		id[i] = seed
	}
	return id
}
