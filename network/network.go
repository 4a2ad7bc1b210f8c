// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package network 进程内的中继链和平行链网络：
// 消息按目标位置投递到对应节点的入站队列，Settle 处理到没有待处理的消息为止
package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/node"
	"github.com/33cn/xsettle/types"
	pkgerr "github.com/pkg/errors"
)

var netlog = log.New("module", "network")

// MaxRounds 一次 Settle 最多处理的轮数，防止消息在链之间无限往返
const MaxRounds = 64

// ErrNotSettled 超过 MaxRounds 仍有待处理的消息
var ErrNotSettled = errors.New("ErrNotSettled")

// ErrDuplicateChain 同一位置注册了两条链
var ErrDuplicateChain = errors.New("ErrDuplicateChain")

// Network 链的集合，以中继链为根的绝对位置作为索引
type Network struct {
	mu    sync.RWMutex
	nodes map[string]*node.Node
	order []*node.Node
}

// New 空网络
func New() *Network {
	return &Network{nodes: make(map[string]*node.Node)}
}

// Add 加入一条链并设置它的出站路由
func (nw *Network) Add(n *node.Node) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	key := n.Config().SelfLocation().Key()
	if _, ok := nw.nodes[key]; ok {
		return pkgerr.Wrap(ErrDuplicateChain, key)
	}
	nw.nodes[key] = n
	nw.order = append(nw.order, n)
	n.SetRouter(&router{net: nw, from: n})
	netlog.Info("Add", "chain", n.Title(), "location", key)
	return nil
}

// Node 按绝对位置查找链
func (nw *Network) Node(abs types.Location) (*node.Node, bool) {
	nw.mu.RLock()
	defer nw.mu.RUnlock()
	n, ok := nw.nodes[abs.Key()]
	return n, ok
}

// Relay 中继链
func (nw *Network) Relay() *node.Node {
	n, _ := nw.Node(types.Here())
	return n
}

// Para 平行链
func (nw *Network) Para(id uint32) *node.Node {
	n, _ := nw.Node(types.ChildLocation(id))
	return n
}

// Nodes 按加入顺序
func (nw *Network) Nodes() []*node.Node {
	nw.mu.RLock()
	defer nw.mu.RUnlock()
	return append([]*node.Node(nil), nw.order...)
}

// Pending 所有链上待处理的消息数
func (nw *Network) Pending() int {
	total := 0
	for _, n := range nw.Nodes() {
		total += n.Pending()
	}
	return total
}

// Settle 依次处理每条链的入站队列，直到整个网络没有待处理的消息，返回处理的消息数
func (nw *Network) Settle(ctx context.Context) (int, error) {
	total := 0
	for round := 0; round < MaxRounds; round++ {
		if nw.Pending() == 0 {
			return total, nil
		}
		for _, n := range nw.Nodes() {
			count, err := n.Process(ctx)
			total += count
			if err != nil {
				return total, err
			}
		}
	}
	if nw.Pending() == 0 {
		return total, nil
	}
	return total, pkgerr.Wrapf(ErrNotSettled, "%d pending after %d rounds", nw.Pending(), MaxRounds)
}

// Close 关闭所有链
func (nw *Network) Close() {
	for _, n := range nw.Nodes() {
		n.Close()
	}
}

func (nw *Network) String() string {
	return fmt.Sprintf("Network(%d chains)", len(nw.Nodes()))
}

// router 一条链的出站路由：把目标位置换成绝对位置找到目标链，
// 来源换成目标链视角的本链位置
type router struct {
	net  *Network
	from *node.Node
}

func (r *router) SendXcm(dest types.Location, xcm types.Xcm) error {
	self := r.from.Config().SelfLocation()
	abs, err := dest.Absolute(self)
	if err != nil {
		return pkgerr.Wrap(types.ErrUnroutable, err.Error())
	}
	target, ok := r.net.Node(abs)
	if !ok || target == r.from {
		return pkgerr.Wrapf(types.ErrUnroutable, "%s -> %s", r.from.Title(), dest)
	}
	origin, err := types.Here().Reanchor(self, dest)
	if err != nil {
		return err
	}
	payload, err := types.EncodeXcm(xcm)
	if err != nil {
		return err
	}
	netlog.Debug("SendXcm", "from", r.from.Title(), "to", target.Title(), "origin", origin, "size", len(payload))
	return target.Receive(origin, payload)
}
