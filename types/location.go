// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// JunctionKind 路径节点类型
type JunctionKind uint8

// 与 v1 Junction 编码下标保持一致
const (
	JunctionParachain    JunctionKind = 0
	JunctionAccountID32  JunctionKind = 1
	JunctionGeneralIndex JunctionKind = 5
	JunctionGeneralKey   JunctionKind = 6
)

// Junction is one step of an interior location path.
type Junction struct {
	Kind    JunctionKind
	ParaID  uint32
	Account AccountID
	Index   uint64
	Key     []byte
}

// Parachain junction
func Parachain(id uint32) Junction {
	return Junction{Kind: JunctionParachain, ParaID: id}
}

// AccountID32 junction
func AccountID32(id AccountID) Junction {
	return Junction{Kind: JunctionAccountID32, Account: id}
}

// GeneralKey junction
func GeneralKey(key []byte) Junction {
	k := make([]byte, len(key))
	copy(k, key)
	return Junction{Kind: JunctionGeneralKey, Key: k}
}

// GeneralIndex junction
func GeneralIndex(index uint64) Junction {
	return Junction{Kind: JunctionGeneralIndex, Index: index}
}

// Equal compares two junctions
func (j Junction) Equal(o Junction) bool {
	if j.Kind != o.Kind {
		return false
	}
	switch j.Kind {
	case JunctionParachain:
		return j.ParaID == o.ParaID
	case JunctionAccountID32:
		return j.Account == o.Account
	case JunctionGeneralIndex:
		return j.Index == o.Index
	case JunctionGeneralKey:
		return bytes.Equal(j.Key, o.Key)
	}
	return false
}

func (j Junction) String() string {
	switch j.Kind {
	case JunctionParachain:
		return fmt.Sprintf("Parachain(%d)", j.ParaID)
	case JunctionAccountID32:
		return fmt.Sprintf("AccountId32(%s)", j.Account.Hex())
	case JunctionGeneralIndex:
		return fmt.Sprintf("GeneralIndex(%d)", j.Index)
	case JunctionGeneralKey:
		return fmt.Sprintf("GeneralKey(0x%s)", hex.EncodeToString(j.Key))
	}
	return fmt.Sprintf("Junction(%d)", j.Kind)
}

// MaxJunctions 路径最多 8 个节点
const MaxJunctions = 8

// Location is a relative path from the local consensus system to another one.
type Location struct {
	Parents  uint8
	Interior []Junction
}

// Here 本链
func Here() Location {
	return Location{}
}

// ParentLocation 上一层（中继链）
func ParentLocation() Location {
	return Location{Parents: 1}
}

// SiblingLocation 兄弟平行链
func SiblingLocation(id uint32) Location {
	return Location{Parents: 1, Interior: []Junction{Parachain(id)}}
}

// ChildLocation 子平行链（从中继链看）
func ChildLocation(id uint32) Location {
	return Location{Interior: []Junction{Parachain(id)}}
}

// AccountLocation 本链账户
func AccountLocation(id AccountID) Location {
	return Location{Interior: []Junction{AccountID32(id)}}
}

// NewLocation builds a location from parents and junctions.
func NewLocation(parents uint8, junctions ...Junction) Location {
	l := Location{Parents: parents}
	if len(junctions) > 0 {
		l.Interior = append([]Junction(nil), junctions...)
	}
	return l
}

// IsHere reports whether l points at the local system.
func (l Location) IsHere() bool {
	return l.Parents == 0 && len(l.Interior) == 0
}

// Equal compares two locations
func (l Location) Equal(o Location) bool {
	if l.Parents != o.Parents || len(l.Interior) != len(o.Interior) {
		return false
	}
	for i := range l.Interior {
		if !l.Interior[i].Equal(o.Interior[i]) {
			return false
		}
	}
	return true
}

// First returns the first interior junction.
func (l Location) First() (Junction, bool) {
	if len(l.Interior) == 0 {
		return Junction{}, false
	}
	return l.Interior[0], true
}

// Last returns the last interior junction.
func (l Location) Last() (Junction, bool) {
	if len(l.Interior) == 0 {
		return Junction{}, false
	}
	return l.Interior[len(l.Interior)-1], true
}

// PushInterior appends a junction, returning a new location.
func (l Location) PushInterior(j Junction) (Location, error) {
	if len(l.Interior) >= MaxJunctions {
		return l, ErrLocationFull
	}
	n := Location{Parents: l.Parents, Interior: make([]Junction, 0, len(l.Interior)+1)}
	n.Interior = append(n.Interior, l.Interior...)
	n.Interior = append(n.Interior, j)
	return n, nil
}

// SplitFirst drops the first interior junction.
func (l Location) SplitFirst() (Location, Junction, bool) {
	if len(l.Interior) == 0 {
		return l, Junction{}, false
	}
	rest := Location{Parents: l.Parents}
	if len(l.Interior) > 1 {
		rest.Interior = append([]Junction(nil), l.Interior[1:]...)
	}
	return rest, l.Interior[0], true
}

// Key is a stable map key for the location.
func (l Location) Key() string {
	return l.String()
}

// String renders "../Parachain(2001)/GeneralKey(0x01)"; the local system is "Here".
func (l Location) String() string {
	parts := make([]string, 0, int(l.Parents)+len(l.Interior))
	for i := uint8(0); i < l.Parents; i++ {
		parts = append(parts, "..")
	}
	for _, j := range l.Interior {
		parts = append(parts, j.String())
	}
	if len(parts) == 0 {
		return "Here"
	}
	return strings.Join(parts, "/")
}

// ParseLocation is the inverse of Location.String.
func ParseLocation(s string) (Location, error) {
	var l Location
	s = strings.TrimSpace(s)
	if s == "" || s == "Here" {
		return l, nil
	}
	for _, part := range strings.Split(s, "/") {
		if part == ".." {
			if len(l.Interior) > 0 {
				return l, errors.Wrapf(ErrInvalidLocation, "parent after interior in %q", s)
			}
			l.Parents++
			continue
		}
		j, err := parseJunction(part)
		if err != nil {
			return l, err
		}
		if len(l.Interior) >= MaxJunctions {
			return l, ErrLocationFull
		}
		l.Interior = append(l.Interior, j)
	}
	return l, nil
}

func parseJunction(s string) (Junction, error) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return Junction{}, errors.Wrapf(ErrInvalidLocation, "bad junction %q", s)
	}
	name, arg := s[:open], s[open+1:len(s)-1]
	switch name {
	case "Parachain":
		id, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return Junction{}, errors.Wrap(ErrInvalidLocation, err.Error())
		}
		return Parachain(uint32(id)), nil
	case "AccountId32":
		id, err := HexToAccountID(arg)
		if err != nil {
			return Junction{}, err
		}
		return AccountID32(id), nil
	case "GeneralIndex":
		idx, err := strconv.ParseUint(arg, 10, 64)
		if err != nil {
			return Junction{}, errors.Wrap(ErrInvalidLocation, err.Error())
		}
		return GeneralIndex(idx), nil
	case "GeneralKey":
		key, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return Junction{}, errors.Wrap(ErrInvalidLocation, err.Error())
		}
		return GeneralKey(key), nil
	}
	return Junction{}, errors.Wrapf(ErrInvalidLocation, "unknown junction %q", name)
}

// ChainKind 远端链类型
type ChainKind uint8

const (
	// ChainParent 中继链（从平行链看）
	ChainParent ChainKind = iota
	// ChainSibling 同一中继链下的兄弟平行链
	ChainSibling
	// ChainChild 中继链下的子平行链
	ChainChild
)

// Chain identifies a remote consensus system whose collateral is held locally.
type Chain struct {
	Kind ChainKind
	ID   uint32
}

// ParentChain 中继链
func ParentChain() Chain { return Chain{Kind: ChainParent} }

// SiblingChain 兄弟平行链
func SiblingChain(id uint32) Chain { return Chain{Kind: ChainSibling, ID: id} }

// ChildChain 子平行链
func ChildChain(id uint32) Chain { return Chain{Kind: ChainChild, ID: id} }

// Location of the chain relative to the local system.
func (c Chain) Location() Location {
	switch c.Kind {
	case ChainParent:
		return ParentLocation()
	case ChainSibling:
		return SiblingLocation(c.ID)
	case ChainChild:
		return ChildLocation(c.ID)
	}
	panic(fmt.Sprintf("unknown chain kind %d", c.Kind))
}

func (c Chain) String() string {
	switch c.Kind {
	case ChainParent:
		return "Parent"
	case ChainSibling:
		return fmt.Sprintf("Sibling(%d)", c.ID)
	case ChainChild:
		return fmt.Sprintf("Child(%d)", c.ID)
	}
	return fmt.Sprintf("Chain(%d,%d)", c.Kind, c.ID)
}

// ChainOf maps a bare chain location back to a Chain.
func ChainOf(l Location) (Chain, bool) {
	switch {
	case l.Parents == 1 && len(l.Interior) == 0:
		return ParentChain(), true
	case l.Parents == 1 && len(l.Interior) == 1 && l.Interior[0].Kind == JunctionParachain:
		return SiblingChain(l.Interior[0].ParaID), true
	case l.Parents == 0 && len(l.Interior) == 1 && l.Interior[0].Kind == JunctionParachain:
		return ChildChain(l.Interior[0].ParaID), true
	}
	return Chain{}, false
}

// Absolute 以中继链为根的绝对路径，self 为本链在中继链下的位置
func (l Location) Absolute(self Location) (Location, error) {
	if self.Parents != 0 {
		return l, errors.Wrapf(ErrInvalidLocation, "self %s", self)
	}
	if int(l.Parents) > len(self.Interior) {
		return l, errors.Wrapf(ErrLocationNotInvertible, "%s from %s", l, self)
	}
	base := self.Interior[:len(self.Interior)-int(l.Parents)]
	if len(base)+len(l.Interior) > MaxJunctions {
		return l, ErrLocationFull
	}
	abs := Location{}
	abs.Interior = append(abs.Interior, base...)
	abs.Interior = append(abs.Interior, l.Interior...)
	return abs, nil
}

// RelativeTo 把绝对路径 l 转成 viewer（同为绝对路径）看到的相对位置
func (l Location) RelativeTo(viewer Location) Location {
	k := 0
	for k < len(l.Interior) && k < len(viewer.Interior) && l.Interior[k].Equal(viewer.Interior[k]) {
		k++
	}
	return NewLocation(uint8(len(viewer.Interior)-k), l.Interior[k:]...)
}

// Reanchor 把本链视角的 l 换成 dest 视角
func (l Location) Reanchor(self, dest Location) (Location, error) {
	abs, err := l.Absolute(self)
	if err != nil {
		return l, err
	}
	target, err := dest.Absolute(self)
	if err != nil {
		return l, err
	}
	return abs.RelativeTo(target), nil
}
