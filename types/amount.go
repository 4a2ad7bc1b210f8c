// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseAmount converts a human readable amount ("1.25") into base units.
func ParseAmount(s string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrap(ErrInvalidAmount, err.Error())
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(ErrInvalidAmount, "negative amount %s", s)
	}
	units := d.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Wrapf(ErrInvalidAmount, "%s has more than %d decimals", s, decimals)
	}
	v := units.BigInt()
	if !v.IsUint64() {
		return 0, errors.Wrap(ErrOverflow, s)
	}
	return v.Uint64(), nil
}

// FormatAmount renders base units with the currency decimals.
func FormatAmount(amount uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -decimals).String()
}
