// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node 一条链的运行实例：
// 账本、执行器、入站队列和出站路由组合在一起，所有状态修改在同一把锁下串行执行
package node

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/33cn/xsettle/account"
	dbm "github.com/33cn/xsettle/common/db"
	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/metrics"
	"github.com/33cn/xsettle/queue"
	"github.com/33cn/xsettle/relaychain"
	"github.com/33cn/xsettle/types"
	"github.com/pkg/errors"
)

var nlog = log.New("module", "node")

// Router 出站消息路由，dest 为本链视角的目标链位置
type Router interface {
	SendXcm(dest types.Location, xcm types.Xcm) error
}

// Handled 一条已经执行的入站消息
type Handled struct {
	ID      int64
	Origin  types.Location
	Hash    types.Hash
	Outcome types.Outcome
}

// Option 节点选项
type Option func(*Node)

// WithRouter 设置出站路由
func WithRouter(r Router) Option {
	return func(n *Node) { n.router = r }
}

// WithStore 使用外部数据库，不再按配置创建
func WithStore(db dbm.DB) Option {
	return func(n *Node) { n.store = db }
}

// WithWorkers 入站队列同时处理的来源数
func WithWorkers(workers int) Option {
	return func(n *Node) { n.workers = workers }
}

// Node 链实例
type Node struct {
	mu      sync.Mutex
	cfg     *types.Config
	store   dbm.DB
	ledger  *account.Ledger
	exec    *executor.Executor
	events  *executor.MemorySink
	sink    executor.EventSink
	metrics *metrics.XcmMetrics
	inbox   *queue.Queue
	router  Router
	builder *relaychain.CallBuilder
	workers int
	handled []Handled
	server  *http.Server
}

// New 按配置创建节点，中继链会挂上 runtime 调用的派发器
func New(cfg *types.Config, opts ...Option) (*Node, error) {
	n := &Node{cfg: cfg}
	for _, opt := range opts {
		opt(n)
	}
	if n.store == nil {
		db, err := dbm.NewDB(cfg.Title, cfg.Store.Driver, cfg.Store.DbPath, int(cfg.Store.DbCache))
		if err != nil {
			return nil, errors.Wrapf(err, "open store %s", cfg.Store.Driver)
		}
		n.store = db
	}
	ledger, err := account.NewLedger(cfg, n.store)
	if err != nil {
		return nil, err
	}
	n.ledger = ledger
	n.events = executor.NewMemorySink()
	n.metrics = metrics.NewXcmMetrics(cfg.Title)
	n.sink = executor.MultiSink{n.events, executor.LogSink{Log: nlog.New("chain", cfg.Title)}, n.metrics}

	var execOpts []executor.Option
	if cfg.IsRelay() {
		execOpts = append(execOpts, executor.WithDispatcher(relaychain.NewDispatcher(cfg, ledger)))
	}
	n.exec = executor.New(cfg, ledger, executor.NewTrapStore(n.store), n.sink, execOpts...)
	n.builder = relaychain.NewCallBuilder(cfg)
	n.inbox = queue.New(cfg.Title, n.workers, n.handle)
	n.server = metrics.StartMetrics(cfg, n.metrics)
	return n, nil
}

// Close 关闭监控服务、队列和数据库
func (n *Node) Close() {
	if n.server != nil {
		n.server.Close()
	}
	n.inbox.Close()
	n.store.Close()
}

// SetRouter 组网时设置路由，开始收发消息之后不能再修改
func (n *Node) SetRouter(r Router) {
	n.router = r
}

// Config 配置
func (n *Node) Config() *types.Config {
	return n.cfg
}

// Title 链名
func (n *Node) Title() string {
	return n.cfg.Title
}

// Executor 执行器
func (n *Node) Executor() *executor.Executor {
	return n.exec
}

// Events 本链的事件记录
func (n *Node) Events() *executor.MemorySink {
	return n.events
}

// Metrics 执行指标
func (n *Node) Metrics() *metrics.XcmMetrics {
	return n.metrics
}

// CallBuilder 中继链调用编码
func (n *Node) CallBuilder() *relaychain.CallBuilder {
	return n.builder
}

// Handled 已处理的入站消息，按处理顺序
func (n *Node) Handled() []Handled {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Handled(nil), n.handled...)
}

// FreeBalance 查询余额
func (n *Node) FreeBalance(asset types.Location, who types.AccountID) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, err := n.ledger.FreeBalance(asset, who)
	if err != nil {
		nlog.Error("FreeBalance", "chain", n.cfg.Title, "asset", asset, "err", err)
		return 0
	}
	return b
}

// Balances 一个账户在本链所有资产上的余额
func (n *Node) Balances(who types.AccountID) map[string]uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Balances(who)
}

// Endow 创世分配
func (n *Node) Endow(asset types.Location, who types.AccountID, amount uint64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ledger.Deposit(asset, who, amount)
}

// Receive 收到其他链发来的消息，payload 为带版本号的编码，处理前先入队
func (n *Node) Receive(origin types.Location, payload []byte) error {
	_, err := n.inbox.Send(origin, payload)
	if err != nil {
		return err
	}
	n.metrics.SetPending(n.inbox.Pending())
	return nil
}

// Pending 入站队列中未处理的消息数
func (n *Node) Pending() int {
	return n.inbox.Pending()
}

// Process 处理入站队列中的全部消息
func (n *Node) Process(ctx context.Context) (int, error) {
	count, err := n.inbox.Drain(ctx)
	n.metrics.SetPending(n.inbox.Pending())
	return count, err
}

func (n *Node) limit() types.WeightLimit {
	if n.cfg.Xcm.MaxWeight > 0 {
		return types.Limited(n.cfg.Xcm.MaxWeight)
	}
	return types.Unlimited()
}

func (n *Node) handle(msg *queue.Message) error {
	xcm, err := types.DecodeXcm(msg.Payload)
	if err != nil {
		nlog.Error("handle decode", "chain", n.cfg.Title, "id", msg.ID, "origin", msg.Origin, "err", err)
		n.mu.Lock()
		n.handled = append(n.handled, Handled{ID: msg.ID, Origin: msg.Origin, Outcome: types.ErrorOutcome(types.ErrDecode)})
		n.mu.Unlock()
		return err
	}
	outcome := n.execute(msg.Origin, xcm, n.limit(), nil)
	n.mu.Lock()
	n.handled = append(n.handled, Handled{ID: msg.ID, Origin: msg.Origin, Hash: types.MessageHash(xcm), Outcome: outcome})
	n.mu.Unlock()
	return outcome.EnsureComplete()
}

func (n *Node) execute(origin types.Location, xcm types.Xcm, limit types.WeightLimit, credit *types.Weight) types.Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	begin := time.Now()
	outcome := n.exec.ExecuteWithCredit(&types.Message{Origin: origin, Instructions: xcm, WeightLimit: limit}, credit)
	n.metrics.ObserveOutcome(outcome, time.Since(begin))
	return outcome
}

// ExecuteLocal 本地账户直接执行消息，预付 maxWeight 的权重
func (n *Node) ExecuteLocal(who types.AccountID, xcm types.Xcm, maxWeight types.Weight) types.Outcome {
	credit := maxWeight
	return n.execute(types.AccountLocation(who), xcm, types.Limited(maxWeight), &credit)
}

// SendXcm 发送消息。sender 为空时以本链身份发送，否则先 DescendOrigin 到该账户
func (n *Node) SendXcm(sender *types.AccountID, dest types.Location, xcm types.Xcm) error {
	if sender != nil {
		xcm = append(types.Xcm{types.DescendOrigin{Interior: types.AccountID32(*sender)}}, xcm...)
	}
	return n.send(dest, xcm)
}

func (n *Node) send(dest types.Location, xcm types.Xcm) error {
	if n.router == nil {
		return errors.Wrapf(types.ErrUnroutable, "%s has no router", n.cfg.Title)
	}
	if err := n.router.SendXcm(dest, xcm); err != nil {
		return err
	}
	n.sink.Emit(executor.Event{Kind: types.EventMessageSent, Origin: dest, Hash: types.MessageHash(xcm)})
	nlog.Debug("SendXcm", "chain", n.cfg.Title, "dest", dest, "instructions", xcm.Names())
	return nil
}
