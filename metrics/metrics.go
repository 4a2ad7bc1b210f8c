// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics 消息执行的监控指标
package metrics

import (
	"net/http"
	"reflect"
	"time"

	"github.com/33cn/xsettle/common/log"
	"github.com/33cn/xsettle/executor"
	"github.com/33cn/xsettle/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	go_metrics "github.com/rcrowley/go-metrics"
)

var mlog = log.New("module", "xsettle metrics")

// Namespace prometheus namespace
var Namespace = "xsettle"

// Collector 提供一组 prometheus 指标
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields 收集结构体中所有 prometheus.Collector 字段
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(prometheus.Collector); ok {
			cs = append(cs, u)
		}
	}
	return cs
}

// XcmMetrics 一条链的消息执行指标，同时作为事件接收者统计事件
type XcmMetrics struct {
	Messages   *prometheus.CounterVec
	WeightUsed prometheus.Counter
	Events     *prometheus.CounterVec
	Pending    prometheus.Gauge

	executeTimer go_metrics.Timer
	failedMeter  go_metrics.Meter
}

// NewXcmMetrics chain 作为常量标签区分不同的链
func NewXcmMetrics(chain string) *XcmMetrics {
	labels := prometheus.Labels{"chain": chain}
	return &XcmMetrics{
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "xcm",
			Name:        "messages_total",
			Help:        "executed messages by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		WeightUsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "xcm",
			Name:        "weight_used_total",
			Help:        "weight consumed by executed messages",
			ConstLabels: labels,
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "xcm",
			Name:        "events_total",
			Help:        "emitted executor events by kind",
			ConstLabels: labels,
		}, []string{"kind"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   Namespace,
			Subsystem:   "queue",
			Name:        "pending",
			Help:        "inbound messages waiting for execution",
			ConstLabels: labels,
		}),
		executeTimer: go_metrics.GetOrRegisterTimer(chain+".xcm.execute", go_metrics.DefaultRegistry),
		failedMeter:  go_metrics.GetOrRegisterMeter(chain+".xcm.failed", go_metrics.DefaultRegistry),
	}
}

// Metrics prometheus collectors
func (m *XcmMetrics) Metrics() []prometheus.Collector {
	return PrometheusCollectorsFromFields(m)
}

// ObserveOutcome 记录一次执行结果
func (m *XcmMetrics) ObserveOutcome(o types.Outcome, elapsed time.Duration) {
	m.executeTimer.Update(elapsed)
	switch o.Kind {
	case types.OutcomeComplete:
		m.Messages.WithLabelValues("complete").Inc()
	case types.OutcomeIncomplete:
		m.Messages.WithLabelValues("incomplete").Inc()
		m.failedMeter.Mark(1)
	default:
		m.Messages.WithLabelValues("error").Inc()
		m.failedMeter.Mark(1)
	}
	m.WeightUsed.Add(float64(o.Used))
}

// Emit executor.EventSink
func (m *XcmMetrics) Emit(ev executor.Event) {
	m.Events.WithLabelValues(ev.Kind).Inc()
}

// SetPending 队列长度
func (m *XcmMetrics) SetPending(n int) {
	m.Pending.Set(float64(n))
}

// ExecuteCount go-metrics 中记录的执行次数
func (m *XcmMetrics) ExecuteCount() int64 {
	return m.executeTimer.Count()
}

// StartMetrics 根据配置启动 prometheus http 服务，未开启时返回 nil
func StartMetrics(cfg *types.Config, cs ...Collector) *http.Server {
	if cfg.Metrics == nil || !cfg.Metrics.Enable {
		mlog.Info("Metrics data is not enabled to emit")
		return nil
	}
	reg := prometheus.NewRegistry()
	for _, c := range cs {
		reg.MustRegister(c.Metrics()...)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.ListenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			mlog.Error("StartMetrics", "addr", cfg.Metrics.ListenAddr, "err", err)
		}
	}()
	mlog.Info("StartMetrics", "addr", cfg.Metrics.ListenAddr)
	return srv
}
