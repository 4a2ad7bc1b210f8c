// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package account

import (
	"testing"

	"github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	cfg := types.InitCfgString(types.GetDefaultCfgstring())
	store, err := db.NewGoMemDB("ledger", "", 1)
	require.NoError(t, err)
	l, err := NewLedger(cfg, store)
	require.NoError(t, err)
	return l
}

func TestLedger(t *testing.T) {
	l := newTestLedger(t)
	ksm := types.ParentLocation()

	require.NoError(t, l.Deposit(ksm, addr1, 100))
	require.NoError(t, l.Transfer(ksm, addr1, addr2, 40))
	require.NoError(t, l.Withdraw(ksm, addr2, 10))

	b, err := l.FreeBalance(ksm, addr1)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), b)
	b, err = l.FreeBalance(ksm, addr2)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), b)

	receipt := l.TakeReceipt()
	assert.Len(t, receipt.Logs, 4)
	assert.Empty(t, l.TakeReceipt().Logs)

	assert.Equal(t, map[string]uint64{"KSM": 60, "NEER": 0, "BNC": 0}, l.Balances(addr1))

	unknown := types.NewLocation(1, types.Parachain(3000))
	_, err = l.FreeBalance(unknown, addr1)
	assert.True(t, errors.Is(err, types.ErrUnknownCurrency))
	assert.True(t, errors.Is(l.Deposit(unknown, addr1, 1), types.ErrUnknownCurrency))
	assert.Equal(t, types.ErrInsufficientBalance, l.Withdraw(ksm, addr2, 31))
}
