// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	"sync"

	"github.com/33cn/xsettle/types"
	log "github.com/inconshreveable/log15"
)

// Event 执行过程中产生的事件
type Event struct {
	Kind    string
	Origin  types.Location
	Account types.AccountID
	Assets  types.Assets
	Hash    types.Hash
	Weight  types.Weight
	Err     error
}

// EventSink 事件接收者
type EventSink interface {
	Emit(ev Event)
}

// MemorySink 内存中保存事件
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink new
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Emit 记录
func (s *MemorySink) Emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events 快照
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Find 指定类型的事件
func (s *MemorySink) Find(kind string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Reset 清空
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// LogSink 事件写入日志
type LogSink struct {
	Log log.Logger
}

// Emit 写日志
func (s LogSink) Emit(ev Event) {
	ctx := []interface{}{"origin", ev.Origin, "account", ev.Account}
	if len(ev.Assets) > 0 {
		ctx = append(ctx, "assets", ev.Assets)
	}
	if ev.Hash != (types.Hash{}) {
		ctx = append(ctx, "hash", ev.Hash)
	}
	if ev.Weight > 0 {
		ctx = append(ctx, "weight", ev.Weight)
	}
	if ev.Err != nil {
		ctx = append(ctx, "err", ev.Err)
		s.Log.Warn(ev.Kind, ctx...)
		return
	}
	s.Log.Debug(ev.Kind, ctx...)
}

// MultiSink 分发到多个接收者
type MultiSink []EventSink

// Emit 分发
func (ms MultiSink) Emit(ev Event) {
	for _, s := range ms {
		s.Emit(ev)
	}
}
