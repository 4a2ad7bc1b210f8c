// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"
	"time"

	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestXcmMetrics(t *testing.T) {
	m := NewXcmMetrics("metrics-test")
	assert.Len(t, m.Metrics(), 4)

	m.ObserveOutcome(types.Complete(600), time.Millisecond)
	m.ObserveOutcome(types.Incomplete(400, types.ErrTooExpensive), time.Millisecond)
	m.ObserveOutcome(types.ErrorOutcome(types.ErrBarrierDenied), time.Millisecond)
	m.Emit(executor.Event{Kind: types.EventAssetsTrapped})
	m.SetPending(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.Messages.WithLabelValues("complete")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Messages.WithLabelValues("incomplete")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Messages.WithLabelValues("error")))
	assert.Equal(t, float64(1000), testutil.ToFloat64(m.WeightUsed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Events.WithLabelValues(types.EventAssetsTrapped)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.Pending))
	assert.Equal(t, int64(3), m.ExecuteCount())
}

func TestStartMetricsDisabled(t *testing.T) {
	cfg := types.InitCfgString(types.GetDefaultCfgstring())
	assert.Nil(t, StartMetrics(cfg, NewXcmMetrics("disabled")))
}
