// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"fmt"
	"strings"
)

// Asset is a fungible amount of the currency identified by its location.
type Asset struct {
	ID     Location
	Amount uint64
}

// NewAsset asset helper
func NewAsset(id Location, amount uint64) Asset {
	return Asset{ID: id, Amount: amount}
}

// IsZero amount 为零
func (a Asset) IsZero() bool {
	return a.Amount == 0
}

func (a Asset) String() string {
	return fmt.Sprintf("%d@%s", a.Amount, a.ID)
}

// Assets 有序资产列表
type Assets []Asset

// Total amount for the given asset id.
func (as Assets) Total(id Location) uint64 {
	var total uint64
	for _, a := range as {
		if a.ID.Equal(id) {
			total += a.Amount
		}
	}
	return total
}

// Clone deep copy
func (as Assets) Clone() Assets {
	if as == nil {
		return nil
	}
	out := make(Assets, len(as))
	copy(out, as)
	return out
}

func (as Assets) String() string {
	parts := make([]string, len(as))
	for i, a := range as {
		parts[i] = a.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// AssetFilter selects assets out of the holding register.
type AssetFilter struct {
	// Wild 为 true 表示全部资产
	Wild     bool
	Definite Assets
}

// WildAll matches everything.
func WildAll() AssetFilter {
	return AssetFilter{Wild: true}
}

// DefiniteAssets matches at most the listed amounts.
func DefiniteAssets(as ...Asset) AssetFilter {
	return AssetFilter{Definite: Assets(as).Clone()}
}

func (f AssetFilter) String() string {
	if f.Wild {
		return "All"
	}
	return f.Definite.String()
}
