// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package relaychain

import (
	"encoding/hex"
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dollar = 1_000_000_000_000

var (
	alice = types.AccountFromSeed(1)
	bob   = types.AccountFromSeed(2)
)

func newTestBuilder() *CallBuilder {
	return NewCallBuilder(types.InitCfgString(types.GetDefaultCfgstring()))
}

func TestBuildTransfer(t *testing.T) {
	b := newTestBuilder()
	call, err := b.BuildTransfer(bob, dollar)
	require.NoError(t, err)
	// 04 03 | 00 + 32 字节账户 | compact(1e12)
	expect := "0403" + "00" + hex.EncodeToString(bob[:]) + "070010a5d4e8"
	assert.Equal(t, expect, hex.EncodeToString(call))

	_, err = b.BuildTransfer(bob, 0)
	assert.Equal(t, types.ErrInvalidAmount, errors.Cause(err))
	_, err = b.BuildTransfer(bob, 33_333_332)
	assert.Equal(t, types.ErrInvalidAmount, errors.Cause(err))
	_, err = b.BuildTransfer(bob, 33_333_333)
	assert.NoError(t, err)
}

func TestWrapAsDerivative(t *testing.T) {
	b := newTestBuilder()
	call, err := b.BuildTransfer(bob, dollar)
	require.NoError(t, err)
	wrapped := b.WrapAsDerivative(call, 0x0102)
	assert.Equal(t, []byte{24, 1, 0x02, 0x01}, wrapped[:4])
	assert.Equal(t, call, wrapped[4:])

	batch := b.Batch(call, wrapped)
	assert.Equal(t, []byte{24, 0, 8}, batch[:3])
	assert.Len(t, batch, 3+len(call)+len(wrapped))
}

func TestFinalizeIntoMessage(t *testing.T) {
	b := newTestBuilder()
	call := b.WrapAsDerivative([]byte{4, 3}, 0)
	fee := types.NewAsset(types.Here(), dollar)

	msg := b.FinalizeIntoMessage(call, dollar, 10_000_000_000)
	assert.Equal(t, []string{"WithdrawAsset", "BuyExecution", "Transact"}, msg.Names())
	assert.Equal(t, types.WithdrawAsset{Assets: types.Assets{fee}}, msg[0])
	assert.Equal(t, types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()}, msg[1])
	assert.Equal(t, types.Transact{OriginType: types.OriginSovereignAccount, RequireWeightAtMost: 10_000_000_000, Call: call}, msg[2])

	msg = b.FinalizeWithRefund(call, dollar, 10_000_000_000)
	assert.Equal(t, []string{"WithdrawAsset", "BuyExecution", "Transact", "RefundSurplus", "DepositAsset"}, msg.Names())
	deposit := msg[4].(types.DepositAsset)
	assert.True(t, deposit.Beneficiary.Equal(types.ChildLocation(2000)))
	assert.True(t, deposit.Assets.Wild)

	// 编码后可以还原
	payload, err := types.EncodeXcm(msg)
	require.NoError(t, err)
	decoded, err := types.DecodeXcm(payload)
	require.NoError(t, err)
	assert.Equal(t, msg.Names(), decoded.Names())
}
