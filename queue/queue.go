// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queue 入站消息队列：
// 每个来源一条先进先出的队列，不同来源可以并行处理
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/types"
	"github.com/sourcegraph/conc/pool"
)

var qlog = log.New("module", "queue")

// DefaultChanBuffer 每个来源最多缓存的消息数
const DefaultChanBuffer = 1024

// 队列错误
var (
	ErrIsClosed  = errors.New("ErrIsClosed")
	ErrQueueFull = errors.New("ErrQueueFull")
)

var gid int64

// Message 入站消息，Payload 为带版本号的 SCALE 编码
type Message struct {
	ID      int64
	Origin  types.Location
	Payload []byte
}

// Handler 处理一条消息，返回的错误只记录日志
type Handler func(msg *Message) error

type source struct {
	origin types.Location
	msgs   []*Message
}

// Queue 按来源分组的消息队列
type Queue struct {
	name    string
	handler Handler
	workers int

	mu      sync.Mutex
	sources map[string]*source
	// 来源首次出现的顺序，Drain 时按这个顺序提交
	order  []string
	closed bool
}

// New 创建队列，workers 为同时处理的来源数，<= 0 时不限
func New(name string, workers int, handler Handler) *Queue {
	return &Queue{
		name:    name,
		handler: handler,
		workers: workers,
		sources: make(map[string]*source),
	}
}

// Name 队列名
func (q *Queue) Name() string {
	return q.name
}

// Send 放入一条消息
func (q *Queue) Send(origin types.Location, payload []byte) (*Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrIsClosed
	}
	key := origin.Key()
	src, ok := q.sources[key]
	if !ok {
		src = &source{origin: origin}
		q.sources[key] = src
		q.order = append(q.order, key)
	}
	if len(src.msgs) >= DefaultChanBuffer {
		qlog.Error("Send", "queue", q.name, "origin", origin, "err", ErrQueueFull)
		return nil, ErrQueueFull
	}
	msg := &Message{ID: atomic.AddInt64(&gid, 1), Origin: origin, Payload: payload}
	src.msgs = append(src.msgs, msg)
	return msg, nil
}

// Pending 所有来源待处理的消息数
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, src := range q.sources {
		n += len(src.msgs)
	}
	return n
}

// PendingFrom 某个来源待处理的消息数
func (q *Queue) PendingFrom(origin types.Location) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if src, ok := q.sources[origin.Key()]; ok {
		return len(src.msgs)
	}
	return 0
}

// takeAll 取出所有待处理消息，每个来源一批
func (q *Queue) takeAll() [][]*Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	var batches [][]*Message
	for _, key := range q.order {
		src := q.sources[key]
		if len(src.msgs) == 0 {
			continue
		}
		batches = append(batches, src.msgs)
		src.msgs = nil
	}
	return batches
}

// requeue 未处理的消息放回队首，保持先进先出
func (q *Queue) requeue(msgs []*Message) {
	if len(msgs) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	src := q.sources[msgs[0].Origin.Key()]
	src.msgs = append(append([]*Message(nil), msgs...), src.msgs...)
}

// Drain 处理直到队列为空。同一来源的消息按顺序处理，不同来源并行；
// ctx 取消后在消息之间停止，剩余消息保留在队列中
func (q *Queue) Drain(ctx context.Context) (int, error) {
	var processed int64
	for {
		batches := q.takeAll()
		if len(batches) == 0 {
			return int(processed), nil
		}
		p := pool.New().WithContext(ctx)
		if q.workers > 0 {
			p = p.WithMaxGoroutines(q.workers)
		}
		for _, batch := range batches {
			batch := batch
			p.Go(func(ctx context.Context) error {
				for i, msg := range batch {
					if err := ctx.Err(); err != nil {
						q.requeue(batch[i:])
						return err
					}
					if err := q.handler(msg); err != nil {
						qlog.Error("Drain", "queue", q.name, "id", msg.ID, "origin", msg.Origin, "err", err)
					}
					atomic.AddInt64(&processed, 1)
				}
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return int(processed), err
		}
	}
}

// Close 关闭后不再接收消息
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
