// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/33cn/xsettle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFOPerSource(t *testing.T) {
	var mu sync.Mutex
	got := make(map[string][]byte)
	q := New("test", 0, func(msg *Message) error {
		mu.Lock()
		defer mu.Unlock()
		key := msg.Origin.String()
		got[key] = append(got[key], msg.Payload[0])
		if msg.Payload[0] == 3 {
			return errors.New("handler error")
		}
		return nil
	})

	parent := types.ParentLocation()
	sibling := types.SiblingLocation(2001)
	for i := byte(0); i < 5; i++ {
		_, err := q.Send(parent, []byte{i})
		require.NoError(t, err)
		_, err = q.Send(sibling, []byte{10 + i})
		require.NoError(t, err)
	}
	assert.Equal(t, 10, q.Pending())
	assert.Equal(t, 5, q.PendingFrom(parent))
	assert.Equal(t, 0, q.PendingFrom(types.Here()))

	n, err := q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 0, q.Pending())
	assert.Equal(t, []byte{0, 1, 2, 3, 4}, got[parent.String()])
	assert.Equal(t, []byte{10, 11, 12, 13, 14}, got[sibling.String()])
}

func TestQueueDrainFollowsNewMessages(t *testing.T) {
	var q *Queue
	count := 0
	q = New("chain", 1, func(msg *Message) error {
		count++
		if msg.Payload[0] > 0 {
			_, err := q.Send(msg.Origin, []byte{msg.Payload[0] - 1})
			return err
		}
		return nil
	})
	_, err := q.Send(types.Here(), []byte{3})
	require.NoError(t, err)
	n, err := q.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, count)
}

func TestQueueCancelled(t *testing.T) {
	q := New("cancel", 0, func(msg *Message) error { return nil })
	for i := 0; i < 3; i++ {
		_, err := q.Send(types.ParentLocation(), []byte{byte(i)})
		require.NoError(t, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := q.Drain(ctx)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 3, q.PendingFrom(types.ParentLocation()))
}

func TestQueueLimits(t *testing.T) {
	q := New("limits", 0, func(msg *Message) error { return nil })
	for i := 0; i < DefaultChanBuffer; i++ {
		_, err := q.Send(types.ParentLocation(), nil)
		require.NoError(t, err)
	}
	_, err := q.Send(types.ParentLocation(), nil)
	assert.Equal(t, ErrQueueFull, err)
	_, err = q.Send(types.SiblingLocation(1), nil)
	assert.NoError(t, err)

	q.Close()
	_, err = q.Send(types.SiblingLocation(1), nil)
	assert.Equal(t, ErrIsClosed, err)
}
