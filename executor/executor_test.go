// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"math"
	"strings"
	"testing"

	"github.com/33cn/xsettle/account"
	dbm "github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	DisableLog()
}

const dollar = 1_000_000_000_000

var (
	alice = types.AccountFromSeed(1)
	bob   = types.AccountFromSeed(2)

	ksm  = types.ParentLocation()
	neer = types.NewLocation(0, types.GeneralKey([]byte{0, 0}))
	bnc  = types.NewLocation(1, types.Parachain(2001), types.GeneralKey([]byte{0, 1}))
	// 从中继链视角看本链的 NEER
	neerFromRelay = types.NewLocation(1, types.Parachain(2000), types.GeneralKey([]byte{0, 0}))
)

type testEnv struct {
	cfg    *types.Config
	ledger *account.Ledger
	traps  *TrapStore
	sink   *MemorySink
	exec   *Executor
}

func newTestEnv(t *testing.T, cfgstring string, opts ...Option) *testEnv {
	cfg := types.InitCfgString(cfgstring)
	store, err := dbm.NewGoMemDB("executor", "", 1)
	require.NoError(t, err)
	ledger, err := account.NewLedger(cfg, store)
	require.NoError(t, err)
	env := &testEnv{cfg: cfg, ledger: ledger, traps: NewTrapStore(store), sink: NewMemorySink()}
	env.exec = New(cfg, ledger, env.traps, env.sink, opts...)
	return env
}

func (env *testEnv) balance(t *testing.T, asset types.Location, who types.AccountID) uint64 {
	b, err := env.ledger.FreeBalance(asset, who)
	require.NoError(t, err)
	return b
}

func (env *testEnv) execute(origin types.Location, limit types.WeightLimit, insts ...types.Instruction) types.Outcome {
	return env.exec.Execute(&types.Message{Origin: origin, Instructions: insts, WeightLimit: limit})
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(origin types.AccountID, call []byte, maxWeight types.Weight) (types.Weight, error) {
	args := m.Called(origin, call, maxWeight)
	return args.Get(0).(types.Weight), args.Error(1)
}

func reserveTransfer(amount uint64, to types.AccountID) types.Xcm {
	asset := types.NewAsset(ksm, amount)
	return types.Xcm{
		types.ReserveAssetDeposited{Assets: types.Assets{asset}},
		types.ClearOrigin{},
		types.BuyExecution{Fees: asset, WeightLimit: types.Unlimited()},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(to)},
	}
}

func TestReserveTransferFromRelay(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	out := env.execute(ksm, types.Unlimited(), reserveTransfer(dollar, bob)...)
	assert.Equal(t, types.Complete(800_000_000), out)
	assert.Equal(t, uint64(999_872_000_000), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(128_000_000), env.balance(t, ksm, env.exec.Treasury()))
	assert.Empty(t, env.sink.Find(types.EventAssetsTrapped))
}

func TestDepositBelowExistentialDeposit(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	out := env.execute(ksm, types.Unlimited(), reserveTransfer(128_000_111, bob)...)
	assert.True(t, out.IsComplete())
	assert.Equal(t, uint64(0), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(128_000_111), env.balance(t, ksm, env.exec.Treasury()))
	assert.Empty(t, env.sink.Find(types.EventAssetsTrapped))
	assert.Len(t, env.sink.Find(types.EventDustLost), 1)
}

func TestDepositExactness(t *testing.T) {
	env := newTestEnv(t, strings.Replace(types.GetDefaultCfgstring(), "unpaidOrigins=[]", `unpaidOrigins=[".."]`, 1))
	require.NoError(t, env.ledger.Deposit(ksm, bob, 5*dollar))
	for _, amount := range []uint64{100_000_000, dollar, 7*dollar + 3} {
		before := env.balance(t, ksm, bob)
		out := env.execute(ksm, types.Unlimited(),
			types.ReserveAssetDeposited{Assets: types.Assets{types.NewAsset(ksm, amount)}},
			types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
		)
		require.True(t, out.IsComplete(), out.String())
		assert.Equal(t, before+amount, env.balance(t, ksm, bob))
	}
	assert.Equal(t, uint64(0), env.balance(t, ksm, env.exec.Treasury()))
}

func paidMessage(fee uint64, limit types.WeightLimit) types.Xcm {
	asset := types.NewAsset(ksm, fee)
	return types.Xcm{
		types.ReserveAssetDeposited{Assets: types.Assets{asset}},
		types.BuyExecution{Fees: asset, WeightLimit: limit},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.Here()},
	}
}

func TestBarrierAndTrader(t *testing.T) {
	const expectWeightLimit = 600_000_000
	const unitWeight = 200_000_000

	cases := []struct {
		name     string
		xcm      types.Xcm
		outcome  types.Outcome
		treasury uint64
	}{
		{
			name:    "weight limit too low",
			xcm:     paidMessage(100, types.Limited(500_000_000)),
			outcome: types.ErrorOutcome(types.ErrWeightLimitTooLow),
		},
		{
			name:     "too expensive",
			xcm:      paidMessage(95_999_999, types.Limited(expectWeightLimit)),
			outcome:  types.Incomplete(expectWeightLimit-unitWeight, types.ErrTooExpensive),
			treasury: 95_999_999,
		},
		{
			name:     "exact fee",
			xcm:      paidMessage(96_000_000, types.Limited(expectWeightLimit)),
			outcome:  types.Complete(expectWeightLimit),
			treasury: 96_000_000,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			env := newTestEnv(t, types.GetDefaultCfgstring())
			out := env.execute(ksm, types.Limited(expectWeightLimit), c.xcm...)
			assert.Equal(t, c.outcome, out)
			assert.Equal(t, c.treasury, env.balance(t, ksm, env.exec.Treasury()))
			assert.Empty(t, env.sink.Find(types.EventAssetsTrapped))
		})
	}
}

func TestBarrierDeniedLeavesStateUntouched(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(&mockDispatcher{}))
	asset := types.NewAsset(ksm, dollar)
	messages := []types.Xcm{
		{
			types.ReserveAssetDeposited{Assets: types.Assets{asset}},
			types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
		},
		{
			types.WithdrawAsset{Assets: types.Assets{asset}},
			types.Transact{OriginType: types.OriginSovereignAccount, RequireWeightAtMost: 1000, Call: []byte{1}},
			types.BuyExecution{Fees: asset, WeightLimit: types.Unlimited()},
		},
		{
			types.DescendOrigin{Interior: types.AccountID32(alice)},
			types.WithdrawAsset{Assets: types.Assets{asset}},
			types.BuyExecution{Fees: asset, WeightLimit: types.Unlimited()},
		},
		{},
	}
	for _, xcm := range messages {
		out := env.execute(ksm, types.Unlimited(), xcm...)
		assert.Equal(t, types.ErrorOutcome(types.ErrBarrierDenied), out)
	}
	assert.Equal(t, uint64(0), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(0), env.balance(t, ksm, env.exec.Treasury()))
	// 只有 MessageHandled 事件
	assert.Len(t, env.sink.Events(), len(messages))
	assert.Len(t, env.sink.Find(types.EventMessageHandled), len(messages))
	records, err := env.traps.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMonotonicity(t *testing.T) {
	limits := []types.WeightLimit{
		types.Limited(600_000_000),
		types.Limited(700_000_000),
		types.Limited(dollar),
		types.Unlimited(),
	}
	for _, limit := range limits {
		env := newTestEnv(t, types.GetDefaultCfgstring())
		out := env.execute(ksm, limit, paidMessage(96_000_000, types.Unlimited())...)
		assert.Equal(t, types.Complete(600_000_000), out, limit.String())
	}
	env := newTestEnv(t, types.GetDefaultCfgstring())
	out := env.execute(ksm, types.Limited(599_999_999), paidMessage(96_000_000, types.Unlimited())...)
	assert.Equal(t, types.ErrorOutcome(types.ErrWeightLimitReached), out)
}

func TestTooManyInstructions(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	xcm := make(types.Xcm, 101)
	for i := range xcm {
		xcm[i] = types.ClearOrigin{}
	}
	out := env.execute(ksm, types.Unlimited(), xcm...)
	assert.Equal(t, types.ErrorOutcome(types.ErrWeightNotComputable), out)
}

func TestTrapAssetsAboveExistentialDeposit(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	fee := types.NewAsset(ksm, dollar)
	out := env.execute(ksm, types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.BuyExecution{Fees: fee, WeightLimit: types.Limited(dollar)},
		types.WithdrawAsset{Assets: types.Assets{types.NewAsset(neerFromRelay, dollar)}},
	)
	assert.Equal(t, types.Complete(600_000_000), out)
	assert.Equal(t, uint64(96_000_000), env.balance(t, ksm, env.exec.Treasury()))
	assert.Equal(t, uint64(0), env.balance(t, neer, env.exec.Treasury()))

	trapped := env.sink.Find(types.EventAssetsTrapped)
	require.Len(t, trapped, 1)
	expect := types.Assets{types.NewAsset(ksm, dollar-96_000_000), types.NewAsset(neer, dollar)}
	assert.Equal(t, expect, trapped[0].Assets)
	assert.True(t, trapped[0].Origin.Equal(ksm))
	ticket := trapped[0].Hash
	assert.Equal(t, uint32(1), env.traps.Count(TrapKey(ksm, expect, ticket)))

	// 同一来源取回
	claimFee := types.NewAsset(ksm, dollar-96_000_000)
	claim := types.Xcm{
		types.ClaimAsset{Assets: expect, Ticket: ticket},
		types.BuyExecution{Fees: claimFee, WeightLimit: types.Unlimited()},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 2, Beneficiary: types.AccountLocation(bob)},
	}
	out = env.execute(ksm, types.Unlimited(), claim...)
	assert.Equal(t, types.Complete(600_000_000), out)
	assert.Equal(t, uint64(dollar-2*96_000_000), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(dollar), env.balance(t, neer, bob))
	assert.Equal(t, uint32(0), env.traps.Count(TrapKey(ksm, expect, ticket)))
	assert.Len(t, env.sink.Find(types.EventAssetsClaimed), 1)

	// 不能重复取回
	out = env.execute(ksm, types.Unlimited(), claim...)
	assert.Equal(t, types.Incomplete(200_000_000, types.ErrUnknownClaim), out)

	// 其他来源不能取回
	env2 := newTestEnv(t, types.GetDefaultCfgstring())
	_, err := env2.traps.Trap(ksm, expect, ticket)
	require.NoError(t, err)
	out = env2.execute(types.SiblingLocation(2001), types.Unlimited(), claim...)
	assert.Equal(t, types.Incomplete(200_000_000, types.ErrUnknownClaim), out)
}

func TestTrapAssetsBelowExistentialDeposit(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	fee := types.NewAsset(ksm, 99_000_000)
	out := env.execute(ksm, types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()},
		types.WithdrawAsset{Assets: types.Assets{types.NewAsset(neerFromRelay, 10_000_000_000)}},
	)
	assert.Equal(t, types.Complete(600_000_000), out)
	assert.Empty(t, env.sink.Find(types.EventAssetsTrapped))
	// 手续费和剩余部分全部归国库
	assert.Equal(t, uint64(99_000_000), env.balance(t, ksm, env.exec.Treasury()))
	assert.Equal(t, uint64(10_000_000_000), env.balance(t, neer, env.exec.Treasury()))
}

func TestUnknownAssetIsTrapped(t *testing.T) {
	env := newTestEnv(t, strings.Replace(types.GetDefaultCfgstring(), "unpaidOrigins=[]", `unpaidOrigins=[".."]`, 1))
	unknown := types.NewAsset(types.NewLocation(1, types.Parachain(3000)), 5)
	out := env.execute(ksm, types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{unknown}},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
	)
	assert.Equal(t, types.Incomplete(400_000_000, types.ErrAssetNotFound), out)
	trapped := env.sink.Find(types.EventAssetsTrapped)
	require.Len(t, trapped, 1)
	assert.Equal(t, types.Assets{unknown}, trapped[0].Assets)
}

func TestUntrustedReserve(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	out := env.execute(types.SiblingLocation(2001), types.Unlimited(), reserveTransfer(dollar, bob)...)
	assert.Equal(t, types.Incomplete(200_000_000, types.ErrUntrustedReserveLocation), out)
	assert.Equal(t, uint64(0), env.balance(t, ksm, bob))

	asset := types.NewAsset(bnc, 5*dollar)
	out = env.execute(types.SiblingLocation(2001), types.Unlimited(),
		types.ReserveAssetDeposited{Assets: types.Assets{asset}},
		types.ClearOrigin{},
		types.BuyExecution{Fees: asset, WeightLimit: types.Unlimited()},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(alice)},
	)
	assert.Equal(t, types.Complete(800_000_000), out)
	assert.Equal(t, uint64(4_989_760_000_000), env.balance(t, bnc, alice))
}

func transactMessage(call []byte, required types.Weight) types.Xcm {
	fee := types.NewAsset(ksm, dollar)
	return types.Xcm{
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()},
		types.Transact{OriginType: types.OriginSovereignAccount, RequireWeightAtMost: required, Call: call},
		types.RefundSurplus{},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
	}
}

func TestTransactRefundSurplus(t *testing.T) {
	d := &mockDispatcher{}
	call := []byte{4, 3, 0}
	parent := account.SovereignAccount(types.ParentChain())
	d.On("Dispatch", parent, call, types.Weight(1_000_000_000)).Return(types.Weight(400_000_000), nil).Once()

	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d))
	out := env.execute(ksm, types.Unlimited(), transactMessage(call, 1_000_000_000)...)
	d.AssertExpectations(t)

	// 2e9 权重收费 320_000_000，退回 600_000_000 权重对应的 96_000_000
	assert.Equal(t, types.Complete(1_400_000_000), out)
	assert.Equal(t, uint64(dollar-320_000_000+96_000_000), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(224_000_000), env.balance(t, ksm, env.exec.Treasury()))

	dispatched := env.sink.Find(types.EventDispatched)
	require.Len(t, dispatched, 1)
	assert.NoError(t, dispatched[0].Err)
	assert.Equal(t, types.Weight(400_000_000), dispatched[0].Weight)
}

func TestTransactDispatchFailedContinues(t *testing.T) {
	d := &mockDispatcher{}
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(types.Weight(1_000_000_000), errors.New("boom"))

	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d))
	out := env.execute(ksm, types.Unlimited(), transactMessage([]byte{1}, 1_000_000_000)...)
	assert.Equal(t, types.Complete(2_000_000_000), out)
	assert.Equal(t, uint64(dollar-320_000_000), env.balance(t, ksm, bob))

	dispatched := env.sink.Find(types.EventDispatched)
	require.Len(t, dispatched, 1)
	assert.Equal(t, types.ErrDispatchFailed, errors.Cause(dispatched[0].Err))
}

func TestTransactOverweightHalts(t *testing.T) {
	d := &mockDispatcher{}
	d.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(types.Weight(1_000_000_001), nil)

	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d))
	out := env.execute(ksm, types.Unlimited(), transactMessage([]byte{1}, 1_000_000_000)...)
	assert.Equal(t, types.Incomplete(1_600_000_000, types.ErrWeightLimitReached), out)
	assert.Equal(t, uint64(0), env.balance(t, ksm, bob))
	assert.Len(t, env.sink.Find(types.EventAssetsTrapped), 1)

	d2 := &mockDispatcher{}
	d2.On("Dispatch", mock.Anything, mock.Anything, mock.Anything).Return(types.Weight(0), errors.Wrap(types.ErrCallDecode, "bad call"))
	env = newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d2))
	out = env.execute(ksm, types.Unlimited(), transactMessage([]byte{1}, 1_000_000_000)...)
	assert.Equal(t, types.Incomplete(1_600_000_000, types.ErrCallDecode), out)
}

func TestTransactBadOrigin(t *testing.T) {
	d := &mockDispatcher{}
	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d))
	fee := types.NewAsset(ksm, dollar)
	out := env.execute(ksm, types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.ClearOrigin{},
		types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()},
		types.Transact{OriginType: types.OriginSovereignAccount, RequireWeightAtMost: 1, Call: []byte{1}},
	)
	assert.Equal(t, types.Incomplete(800_000_001, types.ErrBadOrigin), out)

	out = env.execute(ksm, types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()},
		types.Transact{OriginType: types.OriginSuperuser, RequireWeightAtMost: 1, Call: []byte{1}},
	)
	assert.Equal(t, types.Incomplete(600_000_001, types.ErrBadOrigin), out)
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestWithdrawFromOrigin(t *testing.T) {
	env := newTestEnv(t, types.GetRelayCfgstring())
	here := types.Here()
	para := account.SovereignAccount(types.ChildChain(2000))
	require.NoError(t, env.ledger.Deposit(here, para, 2*dollar))

	fee := types.NewAsset(here, dollar)
	xcm := types.Xcm{
		types.WithdrawAsset{Assets: types.Assets{fee}},
		types.ClearOrigin{},
		types.BuyExecution{Fees: fee, WeightLimit: types.Unlimited()},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
	}
	out := env.execute(types.ChildLocation(2000), types.Unlimited(), xcm...)
	assert.Equal(t, types.Complete(4_000_000_000), out)
	assert.Equal(t, uint64(999_893_333_340), env.balance(t, here, bob))
	assert.Equal(t, uint64(dollar), env.balance(t, here, para))
	assert.Equal(t, uint64(106_666_660), env.balance(t, here, env.exec.Treasury()))

	big := types.NewAsset(here, 3*dollar)
	out = env.execute(types.ChildLocation(2000), types.Unlimited(),
		types.WithdrawAsset{Assets: types.Assets{big}},
		types.ClearOrigin{},
		types.BuyExecution{Fees: big, WeightLimit: types.Unlimited()},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
	)
	assert.Equal(t, types.Incomplete(1_000_000_000, types.ErrInsufficientBalance), out)
	assert.Equal(t, uint64(dollar), env.balance(t, here, para))
}

func TestExecuteWithCredit(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	xcm := types.Xcm{
		types.WithdrawAsset{Assets: types.Assets{types.NewAsset(ksm, dollar)}},
		types.DepositAsset{Assets: types.WildAll(), MaxAssets: 1, Beneficiary: types.AccountLocation(bob)},
	}
	require.NoError(t, env.ledger.Deposit(ksm, alice, 2*dollar))
	credit := types.Weight(500_000_000)
	out := env.exec.ExecuteWithCredit(&types.Message{Origin: types.AccountLocation(alice), Instructions: xcm, WeightLimit: types.Unlimited()}, &credit)
	assert.Equal(t, types.Complete(400_000_000), out)
	assert.Equal(t, types.Weight(100_000_000), credit)
	assert.Equal(t, uint64(dollar), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(dollar), env.balance(t, ksm, alice))

	out = env.exec.ExecuteWithCredit(&types.Message{Origin: types.AccountLocation(alice), Instructions: xcm, WeightLimit: types.Unlimited()}, &credit)
	assert.Equal(t, types.ErrorOutcome(types.ErrBarrierDenied), out)
}

func TestDescendOrigin(t *testing.T) {
	d := &mockDispatcher{}
	env := newTestEnv(t, types.GetDefaultCfgstring(), WithDispatcher(d),
		WithBarrier(AllowUnpaidExecution{Origins: []types.Location{types.ParentLocation()}}))
	d.On("Dispatch", alice, []byte{9}, types.Weight(10)).Return(types.Weight(10), nil).Once()

	// Parent/AccountId32 不能转换为本地账户
	out := env.execute(ksm, types.Unlimited(),
		types.DescendOrigin{Interior: types.AccountID32(alice)},
		types.Transact{OriginType: types.OriginNative, RequireWeightAtMost: 10, Call: []byte{9}},
	)
	assert.Equal(t, types.Incomplete(400_000_010, types.ErrBadOrigin), out)

	env.exec.barrier = AllowUnpaidExecution{Origins: []types.Location{types.Here()}}
	out = env.execute(types.Here(), types.Unlimited(),
		types.DescendOrigin{Interior: types.AccountID32(alice)},
		types.Transact{OriginType: types.OriginNative, RequireWeightAtMost: 10, Call: []byte{9}},
	)
	assert.Equal(t, types.Complete(400_000_010), out)
	d.AssertExpectations(t)
}

func TestNormalizeLocation(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	assert.True(t, env.exec.normalizeLocation(neerFromRelay).Equal(neer))
	assert.True(t, env.exec.normalizeLocation(bnc).Equal(bnc))
	assert.True(t, env.exec.normalizeLocation(ksm).Equal(ksm))

	relay := newTestEnv(t, types.GetRelayCfgstring())
	assert.True(t, relay.exec.normalizeLocation(neerFromRelay).Equal(neerFromRelay))
}

func TestDepositOverflowTrapsAssets(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	require.NoError(t, env.ledger.Deposit(ksm, bob, math.MaxUint64-10))

	msg := reserveTransfer(dollar, bob)
	out := env.execute(ksm, types.Unlimited(), msg...)
	assert.Equal(t, types.Incomplete(800_000_000, types.ErrOverflow), out)
	assert.Equal(t, uint64(math.MaxUint64-10), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(128_000_000), env.balance(t, ksm, env.exec.Treasury()))

	// 入账失败的资产不会丢失
	trapped := env.sink.Find(types.EventAssetsTrapped)
	require.Len(t, trapped, 1)
	assert.Equal(t, uint64(999_872_000_000), trapped[0].Assets.Total(ksm))
	records, err := env.traps.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint64(999_872_000_000), records[0].Assets.Total(ksm))
	assert.Equal(t, types.MessageHash(msg), records[0].MessageHash)
}

func TestTransactWithoutDispatcher(t *testing.T) {
	env := newTestEnv(t, types.GetDefaultCfgstring())
	out := env.execute(ksm, types.Unlimited(), transactMessage([]byte{1}, 1_000_000_000)...)
	// 调用未执行，1e9 权重全部退回 160_000_000
	assert.Equal(t, types.Complete(1_000_000_000), out)
	assert.Equal(t, uint64(dollar-160_000_000), env.balance(t, ksm, bob))
	assert.Equal(t, uint64(160_000_000), env.balance(t, ksm, env.exec.Treasury()))

	dispatched := env.sink.Find(types.EventDispatched)
	require.Len(t, dispatched, 1)
	assert.Equal(t, types.ErrDispatchFailed, errors.Cause(dispatched[0].Err))
	assert.Equal(t, types.Weight(0), dispatched[0].Weight)
}
