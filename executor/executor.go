// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package executor 跨链消息执行器：准入检查、手续费购买、逐条执行指令以及剩余资产处理
package executor

import (
	"github.com/33cn/xsettle/account"
	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/types"
	log15 "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

var elog = log.New("module", "execs")

// DisableLog disable log output. it is called by test
func DisableLog() {
	elog.SetHandler(log15.DiscardHandler())
}

// Ledger 余额账本
type Ledger interface {
	FreeBalance(asset types.Location, who types.AccountID) (uint64, error)
	Deposit(asset types.Location, who types.AccountID, amount uint64) error
	Withdraw(asset types.Location, who types.AccountID, amount uint64) error
}

// CallDispatcher 执行 Transact 携带的调用，返回实际消耗的权重。
// 调用无法解码时返回 ErrCallDecode，超出 maxWeight 时返回 ErrWeightLimitReached 且不执行
type CallDispatcher interface {
	Dispatch(origin types.AccountID, call []byte, maxWeight types.Weight) (types.Weight, error)
}

// Option 执行器选项
type Option func(*Executor)

// WithBarrier 替换默认的准入检查
func WithBarrier(b Barrier) Option {
	return func(e *Executor) { e.barrier = b }
}

// WithDispatcher 设置 Transact 的调用执行者
func WithDispatcher(d CallDispatcher) Option {
	return func(e *Executor) { e.dispatcher = d }
}

// WithWeigher 替换默认的权重计算
func WithWeigher(w Weigher) Option {
	return func(e *Executor) { e.weigher = w }
}

// Executor 消息执行器，本身不加锁，由调用者串行化
type Executor struct {
	cfg        *types.Config
	ledger     Ledger
	traps      *TrapStore
	events     EventSink
	barrier    Barrier
	weigher    Weigher
	dispatcher CallDispatcher
	rates      *RateTable
	treasury   types.AccountID
}

// New 创建执行器
func New(cfg *types.Config, ledger Ledger, traps *TrapStore, events EventSink, opts ...Option) *Executor {
	e := &Executor{
		cfg:      cfg,
		ledger:   ledger,
		traps:    traps,
		events:   events,
		weigher:  FixedWeightBounds{UnitWeight: cfg.Xcm.UnitWeight, MaxInstructions: cfg.Xcm.MaxInstructions},
		rates:    NewRateTable(cfg),
		treasury: account.TreasuryAccount(cfg),
	}
	var unpaid []types.Location
	for _, s := range cfg.Xcm.UnpaidOrigins {
		loc, err := types.ParseLocation(s)
		if err != nil {
			panic(err)
		}
		unpaid = append(unpaid, loc)
	}
	e.barrier = Barriers{TakeWeightCredit{}, AllowTopLevelPaidExecution{}, AllowUnpaidExecution{Origins: unpaid}}
	for _, opt := range opts {
		opt(e)
	}
	if e.events == nil {
		e.events = LogSink{Log: elog}
	}
	return e
}

// Config 配置
func (e *Executor) Config() *types.Config {
	return e.cfg
}

// Rates 手续费价格表
func (e *Executor) Rates() *RateTable {
	return e.rates
}

// Traps 扣留资产
func (e *Executor) Traps() *TrapStore {
	return e.traps
}

// Treasury 国库账户
func (e *Executor) Treasury() types.AccountID {
	return e.treasury
}

// Weigh 消息权重
func (e *Executor) Weigh(x types.Xcm) (types.Weight, error) {
	return e.weigher.Weight(x)
}

// Execute 执行一条外部消息
func (e *Executor) Execute(msg *types.Message) types.Outcome {
	return e.ExecuteWithCredit(msg, nil)
}

// ExecuteWithCredit 执行消息，credit 为本地预付的权重
func (e *Executor) ExecuteWithCredit(msg *types.Message, credit *types.Weight) types.Outcome {
	hash := types.MessageHash(msg.Instructions)
	xcm := e.normalize(msg.Instructions)
	outcome := e.execute(msg.Origin, xcm, msg.WeightLimit, credit, hash)
	if outcome.Err != nil {
		elog.Info("Execute", "origin", msg.Origin, "hash", hash, "outcome", outcome)
	} else {
		elog.Debug("Execute", "origin", msg.Origin, "hash", hash, "outcome", outcome)
	}
	e.events.Emit(Event{Kind: types.EventMessageHandled, Origin: msg.Origin, Hash: hash, Weight: outcome.Used, Err: outcome.Err})
	return outcome
}

func (e *Executor) execute(origin types.Location, xcm types.Xcm, limit types.WeightLimit, credit *types.Weight, hash types.Hash) types.Outcome {
	weight, err := e.weigher.Weight(xcm)
	if err != nil {
		return types.ErrorOutcome(errors.Cause(err))
	}
	if !limit.Allows(weight) {
		return types.ErrorOutcome(types.ErrWeightLimitReached)
	}
	if e.cfg.Xcm.MaxWeight > 0 && weight > e.cfg.Xcm.MaxWeight {
		return types.ErrorOutcome(types.ErrWeightLimitReached)
	}
	if err := e.barrier.ShouldExecute(origin, xcm, weight, credit); err != nil {
		elog.Debug("barrier", "origin", origin, "instructions", xcm.Names(), "err", err)
		return types.ErrorOutcome(errors.Cause(err))
	}

	vm := e.newVM(origin, hash)
	failed, err := vm.run(xcm)
	vm.finish()
	if err != nil {
		rest, _ := e.weigher.Weight(xcm[failed+1:])
		elog.Warn("execute halted", "origin", origin, "index", failed, "instruction", xcm[failed].Name(), "err", err)
		return types.Incomplete(saturatingSub(weight, rest, vm.surplus), errors.Cause(err))
	}
	return types.Complete(saturatingSub(weight, vm.surplus))
}

func saturatingSub(w types.Weight, subs ...types.Weight) types.Weight {
	for _, s := range subs {
		if s >= w {
			return 0
		}
		w -= s
	}
	return w
}

// normalize 把指向本链的资产位置改写为本地位置 (1, Parachain(self), ...) => (0, ...)
func (e *Executor) normalize(x types.Xcm) types.Xcm {
	out := make(types.Xcm, len(x))
	for i, inst := range x {
		switch v := inst.(type) {
		case types.WithdrawAsset:
			v.Assets = e.normalizeAssets(v.Assets)
			inst = v
		case types.ReserveAssetDeposited:
			v.Assets = e.normalizeAssets(v.Assets)
			inst = v
		case types.ClaimAsset:
			v.Assets = e.normalizeAssets(v.Assets)
			inst = v
		case types.BuyExecution:
			v.Fees.ID = e.normalizeLocation(v.Fees.ID)
			inst = v
		case types.DepositAsset:
			if !v.Assets.Wild {
				v.Assets.Definite = e.normalizeAssets(v.Assets.Definite)
			}
			inst = v
		}
		out[i] = inst
	}
	return out
}

func (e *Executor) normalizeAssets(as types.Assets) types.Assets {
	out := make(types.Assets, len(as))
	for i, a := range as {
		out[i] = types.NewAsset(e.normalizeLocation(a.ID), a.Amount)
	}
	return out
}

func (e *Executor) normalizeLocation(l types.Location) types.Location {
	if e.cfg.IsRelay() || l.Parents != 1 || len(l.Interior) == 0 {
		return l
	}
	first := l.Interior[0]
	if first.Kind != types.JunctionParachain || first.ParaID != e.cfg.ParaID {
		return l
	}
	return types.NewLocation(0, l.Interior[1:]...)
}

// vm 单条消息的执行状态
type vm struct {
	*Executor
	origin      *types.Location
	original    types.Location
	holding     *Holding
	trader      *Trader
	surplus     types.Weight
	refunded    types.Weight
	beneficiary *types.Location
	hash        types.Hash
}

func (e *Executor) newVM(origin types.Location, hash types.Hash) *vm {
	o := origin
	return &vm{
		Executor: e,
		origin:   &o,
		original: origin,
		holding:  NewHolding(),
		trader:   e.rates.NewTrader(),
		hash:     hash,
	}
}

func (vm *vm) emit(ev Event) {
	vm.events.Emit(ev)
}

func (vm *vm) run(xcm types.Xcm) (int, error) {
	for i, inst := range xcm {
		if err := vm.process(inst); err != nil {
			return i, err
		}
	}
	return 0, nil
}

// finish 手续费收入归国库，剩余资产交给处理策略
func (vm *vm) finish() {
	if revenue, ok := vm.trader.Revenue(); ok {
		if err := vm.ledger.Deposit(revenue.ID, vm.treasury, revenue.Amount); err != nil {
			elog.Error("finish revenue", "asset", revenue, "err", err)
		} else {
			vm.emit(Event{Kind: types.EventFeePaid, Origin: vm.original, Account: vm.treasury,
				Assets: types.Assets{revenue}, Weight: vm.trader.Bought()})
		}
	}
	vm.dropAssets()
}

func (vm *vm) originAccount() (types.AccountID, error) {
	if vm.origin == nil {
		return types.AccountID{}, errors.Wrap(types.ErrBadOrigin, "origin cleared")
	}
	who, err := account.LocationToAccount(*vm.origin)
	if err != nil {
		return types.AccountID{}, errors.Wrap(types.ErrBadOrigin, err.Error())
	}
	return who, nil
}

func (vm *vm) process(inst types.Instruction) error {
	switch v := inst.(type) {
	case types.WithdrawAsset:
		return vm.withdrawAsset(v.Assets)
	case types.ReserveAssetDeposited:
		return vm.reserveAssetDeposited(v.Assets)
	case types.ClaimAsset:
		return vm.claimAsset(v.Assets, v.Ticket)
	case types.ClearOrigin:
		vm.origin = nil
		return nil
	case types.DescendOrigin:
		if vm.origin == nil {
			return errors.Wrap(types.ErrBadOrigin, "origin cleared")
		}
		o, err := vm.origin.PushInterior(v.Interior)
		if err != nil {
			return err
		}
		vm.origin = &o
		return nil
	case types.BuyExecution:
		return vm.buyExecution(v)
	case types.Transact:
		return vm.transact(v)
	case types.RefundSurplus:
		vm.refundSurplus()
		return nil
	case types.DepositAsset:
		return vm.depositAsset(v)
	default:
		return errors.Errorf("unsupported instruction %s", inst.Name())
	}
}

func (vm *vm) withdrawAsset(assets types.Assets) error {
	// 本链账户总是从自己的余额扣款，远端来源由配置决定
	if !vm.cfg.Xcm.WithdrawFromOrigin && (vm.origin == nil || vm.origin.Parents > 0) {
		vm.holding.SubsumeAll(assets)
		return nil
	}
	who, err := vm.originAccount()
	if err != nil {
		return err
	}
	for _, a := range assets {
		if a.Amount == 0 {
			continue
		}
		if err := vm.ledger.Withdraw(a.ID, who, a.Amount); err != nil {
			return errors.Wrapf(err, "withdraw %s from %s", a, who)
		}
		vm.emit(Event{Kind: types.EventWithdrawn, Origin: *vm.origin, Account: who, Assets: types.Assets{a}})
		vm.holding.Subsume(a)
	}
	return nil
}

// ReserveOf 资产的储备链位置
func ReserveOf(id types.Location) types.Location {
	if id.Parents == 0 {
		return types.Here()
	}
	if first, ok := id.First(); ok && id.Parents == 1 && first.Kind == types.JunctionParachain {
		return types.SiblingLocation(first.ParaID)
	}
	return types.NewLocation(id.Parents)
}

func (vm *vm) reserveAssetDeposited(assets types.Assets) error {
	if vm.origin == nil {
		return errors.Wrap(types.ErrBadOrigin, "origin cleared")
	}
	for _, a := range assets {
		if !ReserveOf(a.ID).Equal(*vm.origin) {
			return errors.Wrapf(types.ErrUntrustedReserveLocation, "%s from %s", a.ID, vm.origin)
		}
	}
	vm.holding.SubsumeAll(assets)
	return nil
}

func (vm *vm) claimAsset(assets types.Assets, ticket types.Hash) error {
	if vm.origin == nil {
		return errors.Wrap(types.ErrBadOrigin, "origin cleared")
	}
	if err := vm.traps.Claim(*vm.origin, assets, ticket); err != nil {
		return err
	}
	vm.holding.SubsumeAll(assets)
	vm.emit(Event{Kind: types.EventAssetsClaimed, Origin: *vm.origin, Assets: assets, Hash: ticket})
	return nil
}

func (vm *vm) buyExecution(v types.BuyExecution) error {
	if !v.WeightLimit.Limited {
		// 只有免费或预付的消息会走到这里
		return nil
	}
	if err := vm.holding.TryTake(v.Fees); err != nil {
		return errors.Wrapf(err, "fees %s", v.Fees)
	}
	_, unspent, err := vm.trader.Buy(v.WeightLimit.Weight, v.Fees)
	vm.holding.Subsume(unspent)
	return err
}

func (vm *vm) transact(v types.Transact) error {
	var who types.AccountID
	var err error
	switch v.OriginType {
	case types.OriginNative, types.OriginSovereignAccount:
		who, err = vm.originAccount()
		if err != nil {
			return err
		}
	default:
		return errors.Wrapf(types.ErrBadOrigin, "origin kind %s", v.OriginType)
	}
	if vm.dispatcher == nil {
		// 没有运行时调用的链上 Transact 不执行，权重全部计入 surplus
		vm.emit(Event{Kind: types.EventDispatched, Origin: *vm.origin, Account: who,
			Err: errors.Wrap(types.ErrDispatchFailed, "no dispatcher")})
		vm.surplus += v.RequireWeightAtMost
		return nil
	}
	actual, err := vm.dispatcher.Dispatch(who, v.Call, v.RequireWeightAtMost)
	switch errors.Cause(err) {
	case types.ErrCallDecode, types.ErrWeightLimitReached:
		return err
	}
	if actual > v.RequireWeightAtMost {
		return errors.Wrapf(types.ErrWeightLimitReached, "used %d required %d", actual, v.RequireWeightAtMost)
	}
	ev := Event{Kind: types.EventDispatched, Origin: *vm.origin, Account: who, Weight: actual}
	if err != nil {
		ev.Err = errors.Wrap(types.ErrDispatchFailed, err.Error())
		elog.Info("transact dispatch failed", "origin", who, "err", err)
	}
	vm.emit(ev)
	vm.surplus += v.RequireWeightAtMost - actual
	return nil
}

func (vm *vm) refundSurplus() {
	pending := vm.surplus - vm.refunded
	vm.refunded = vm.surplus
	if pending == 0 {
		return
	}
	if a, ok := vm.trader.Refund(pending); ok {
		vm.holding.Subsume(a)
	}
}

func (vm *vm) depositAsset(v types.DepositAsset) error {
	assets := vm.holding.Take(v.Assets, v.MaxAssets)
	if len(assets) == 0 {
		return nil
	}
	who, err := account.LocationToAccount(v.Beneficiary)
	if err == nil {
		for _, a := range assets {
			if _, ok := vm.cfg.CurrencyOf(a.ID); !ok {
				err = errors.Wrap(types.ErrAssetNotFound, a.ID.String())
				break
			}
		}
	}
	if err != nil {
		vm.holding.SubsumeAll(assets)
		return err
	}
	beneficiary := v.Beneficiary
	vm.beneficiary = &beneficiary
	for i, a := range assets {
		cur, _ := vm.cfg.CurrencyOf(a.ID)
		before, err := vm.ledger.FreeBalance(a.ID, who)
		if err != nil {
			vm.holding.SubsumeAll(assets[i:])
			return err
		}
		to, kind := who, types.EventDeposited
		if before < cur.ExistentialDeposit && a.Amount < cur.ExistentialDeposit-before {
			to, kind = vm.treasury, types.EventDustLost
		}
		// 未入账的资产放回 holding，由 dropAssets 处理
		if err := vm.ledger.Deposit(a.ID, to, a.Amount); err != nil {
			vm.holding.SubsumeAll(assets[i:])
			return err
		}
		vm.emit(Event{Kind: kind, Origin: vm.original, Account: to, Assets: types.Assets{a}})
	}
	return nil
}
