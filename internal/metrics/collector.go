package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// =============================================================================
// 📊 等待指标收集器
// =============================================================================

// Collector 等待指标收集器，实现 wait.Observer
type Collector struct {
	pollsTotal   *prometheus.CounterVec
	pollDuration prometheus.Histogram
	waitsTotal   *prometheus.CounterVec
	waitDuration *prometheus.HistogramVec
	waitAttempts prometheus.Histogram
	findErrors   *prometheus.CounterVec

	logger *zap.Logger
}

var _ wait.Observer = (*Collector)(nil)

// NewCollector 创建指标收集器并注册到 reg；reg 为 nil 时使用默认注册表
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	// 轮询指标
	c.pollsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of condition evaluations",
		},
		[]string{"result"},
	)

	c.pollDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Condition evaluation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	// 等待指标
	c.waitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waits_total",
			Help:      "Total number of finished waits",
		},
		[]string{"outcome"},
	)

	c.waitDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wait_duration_seconds",
			Help:      "Wait duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	c.waitAttempts = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wait_attempts",
			Help:      "Condition evaluations per wait",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	// 查找错误
	c.findErrors = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "find_errors_total",
			Help:      "Errors returned while evaluating conditions, by error code",
		},
		[]string{"code"},
	)

	return c
}

// =============================================================================
// 📈 记录方法
// =============================================================================

// ObservePoll 记录一次条件求值
func (c *Collector) ObservePoll(description string, elapsed time.Duration, err error) {
	c.pollDuration.Observe(elapsed.Seconds())
	if err == nil {
		c.pollsTotal.WithLabelValues("ok").Inc()
		return
	}
	code := errorLabel(err)
	c.pollsTotal.WithLabelValues(code).Inc()
	c.findErrors.WithLabelValues(code).Inc()
}

// ObserveWait 记录一次等待结束
func (c *Collector) ObserveWait(description string, outcome wait.Outcome, elapsed time.Duration, attempts int) {
	c.waitsTotal.WithLabelValues(string(outcome)).Inc()
	c.waitDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
	c.waitAttempts.Observe(float64(attempts))

	if outcome != wait.OutcomeSuccess {
		c.logger.Debug("wait did not succeed",
			zap.String("description", description),
			zap.String("outcome", string(outcome)),
			zap.Int("attempts", attempts))
	}
}

// errorLabel 将错误映射为低基数的标签值
func errorLabel(err error) string {
	if code := types.GetErrorCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return "unknown"
}
