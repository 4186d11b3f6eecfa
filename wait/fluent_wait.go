package wait

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/fluentwait/internal/ctxkeys"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
	"github.com/BaSui01/fluentwait/types"
)

const (
	// DefaultTimeout bounds a wait when AtMost is not called.
	DefaultTimeout = 5 * time.Second
	// DefaultPolling is the delay between two condition evaluations.
	DefaultPolling = 500 * time.Millisecond

	minPolling     = time.Millisecond
	captureTimeout = 10 * time.Second
	tracerName     = "github.com/BaSui01/fluentwait/wait"
)

// Capturer 在等待超时时保存诊断信息（页面源码、截图），返回写入的路径
type Capturer interface {
	Capture(ctx context.Context, reason string) ([]string, error)
}

// FluentWait 是绑定到查找设施的不可变轮询策略，
// 所有 Builder 方法都返回修改后的副本。
type FluentWait struct {
	search    search.Search
	timeout   time.Duration
	polling   time.Duration
	message   string
	ignored   []types.ErrorCode
	ignoreAll bool

	logger   *zap.Logger
	observer Observer
	capturer Capturer
	tracer   trace.Tracer
}

// Option configures a FluentWait at construction.
type Option func(*FluentWait)

// WithLogger sets the logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *FluentWait) {
		if logger != nil {
			w.logger = logger.With(zap.String("component", "fluent_wait"))
		}
	}
}

// WithObserver sets the poll/wait observer.
func WithObserver(o Observer) Option {
	return func(w *FluentWait) {
		if o != nil {
			w.observer = o
		}
	}
}

// WithCapturer sets the diagnostics capturer used on timeout.
func WithCapturer(c Capturer) Option {
	return func(w *FluentWait) { w.capturer = c }
}

// WithTimeout sets the initial timeout.
func WithTimeout(d time.Duration) Option {
	return func(w *FluentWait) { w.timeout = d }
}

// WithPolling sets the initial polling interval.
func WithPolling(d time.Duration) Option {
	return func(w *FluentWait) { w.polling = clampPolling(d) }
}

// New 基于 s 创建 FluentWait，默认策略：超时 5s，轮询间隔 500ms，
// 忽略 ELEMENT_NOT_FOUND 与 STALE_ELEMENT。
func New(s search.Search, opts ...Option) *FluentWait {
	w := &FluentWait{
		search:   s,
		timeout:  DefaultTimeout,
		polling:  DefaultPolling,
		ignored:  []types.ErrorCode{types.ErrElementNotFound, types.ErrStaleElement},
		logger:   zap.NewNop(),
		observer: nopObserver{},
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func clampPolling(d time.Duration) time.Duration {
	if d < minPolling {
		return minPolling
	}
	return d
}

func (w *FluentWait) clone() *FluentWait {
	c := *w
	c.ignored = append([]types.ErrorCode(nil), w.ignored...)
	return &c
}

// AtMost returns a copy that gives up after d.
func (w *FluentWait) AtMost(d time.Duration) *FluentWait {
	c := w.clone()
	c.timeout = d
	return c
}

// PollingEvery returns a copy that evaluates the condition every d.
func (w *FluentWait) PollingEvery(d time.Duration) *FluentWait {
	c := w.clone()
	c.polling = clampPolling(d)
	return c
}

// WithMessage returns a copy whose timeout error carries msg instead of
// the matcher's generated message.
func (w *FluentWait) WithMessage(msg string) *FluentWait {
	c := w.clone()
	c.message = msg
	return c
}

// Ignoring returns a copy that also keeps polling through errors with the
// given codes.
func (w *FluentWait) Ignoring(codes ...types.ErrorCode) *FluentWait {
	c := w.clone()
	c.ignored = append(c.ignored, codes...)
	return c
}

// IgnoreAll returns a copy that keeps polling through every error.
func (w *FluentWait) IgnoreAll() *FluentWait {
	c := w.clone()
	c.ignoreAll = true
	return c
}

// Timeout returns the configured timeout.
func (w *FluentWait) Timeout() time.Duration { return w.timeout }

// Polling returns the configured polling interval.
func (w *FluentWait) Polling() time.Duration { return w.polling }

// Search returns the search facility the wait resolves locators with.
func (w *FluentWait) Search() search.Search { return w.search }

// Until starts a matcher on loc.
func (w *FluentWait) Until(loc locator.Locator) *LocatorMatcher {
	return newLocatorMatcher(w, loc)
}

// UntilSelector starts a matcher on a raw CSS selector.
func (w *FluentWait) UntilSelector(selector string) *LocatorMatcher {
	return newSelectorMatcher(w, selector)
}

// UntilFunc polls fn until it returns true.
func (w *FluentWait) UntilFunc(ctx context.Context, description string, fn func(context.Context) (bool, error)) error {
	return w.until(ctx, description, fn, func() string {
		return fmt.Sprintf("%s is not satisfied", description)
	})
}

func (w *FluentWait) ignores(err error) bool {
	if w.ignoreAll {
		return true
	}
	for _, code := range w.ignored {
		if types.HasCode(err, code) {
			return true
		}
	}
	return false
}

// until 是轮询主循环。
//   - 首次求值总会执行，超时为 0 也不例外
//   - 之后由容量为 1 的令牌桶按轮询间隔限速
//   - 等待时长不超过截止时间，最后一次求值恰好发生在超时时刻
func (w *FluentWait) until(ctx context.Context, description string, cond func(context.Context) (bool, error), message func() string) error {
	ctx, span := w.tracer.Start(ctx, "fluentwait.until", trace.WithAttributes(
		attribute.String("wait.description", description),
		attribute.Int64("wait.timeout_ms", w.timeout.Milliseconds()),
		attribute.Int64("wait.polling_ms", w.polling.Milliseconds()),
	))
	defer span.End()

	logger := w.logger
	if runID, ok := ctxkeys.RunID(ctx); ok {
		logger = logger.With(zap.String("run_id", runID))
		span.SetAttributes(attribute.String("fluentwait.run_id", runID))
	}

	start := time.Now()
	deadline := start.Add(w.timeout)
	limiter := rate.NewLimiter(rate.Every(w.polling), 1)
	limiter.Allow()
	attempts := 0
	var lastErr error

poll:
	for {
		attempts++
		pollStart := time.Now()
		ok, expired, err := w.evaluate(ctx, deadline, cond)
		w.observer.ObservePoll(description, time.Since(pollStart), err)

		if err == nil && ok {
			w.finish(span, description, OutcomeSuccess, start, attempts)
			logger.Debug("wait satisfied",
				zap.String("description", description),
				zap.Int("attempts", attempts),
				zap.Duration("elapsed", time.Since(start)))
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if expired {
				lastErr = err
				break
			}
			if !w.ignores(err) {
				w.finish(span, description, OutcomeError, start, attempts)
				span.RecordError(err)
				logger.Debug("wait aborted",
					zap.String("description", description),
					zap.Int("attempts", attempts),
					zap.Bool("retryable", types.IsRetryable(err)),
					zap.Error(err))
				return err
			}
			lastErr = err
			logger.Debug("ignoring poll error",
				zap.String("description", description),
				zap.Int("attempt", attempts),
				zap.Error(err))
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		r := limiter.Reserve()
		delay := r.Delay()
		if delay > remaining {
			r.Cancel()
			delay = remaining
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			break poll
		case <-timer.C:
		}
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		w.finish(span, description, OutcomeCancelled, start, attempts)
		return types.Errorf(types.ErrCancelled, "%s: wait cancelled", description).WithCause(ctxErr)
	}

	msg := w.message
	if msg == "" {
		msg = message()
	}
	w.finish(span, description, OutcomeTimeout, start, attempts)
	logger.Warn("wait timed out",
		zap.String("description", description),
		zap.String("message", msg),
		zap.Duration("timeout", w.timeout),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))
	w.capture(ctx, logger, msg)

	return types.NewError(types.ErrWaitTimeout, msg).WithCause(lastErr)
}

// evaluate 执行一次 cond。单次求值至少拥有一个轮询间隔的预算，
// 截止时刻的那次求值也能完成；expired 表示本次求值耗尽了预算。
func (w *FluentWait) evaluate(ctx context.Context, deadline time.Time, cond func(context.Context) (bool, error)) (ok, expired bool, err error) {
	if floor := time.Now().Add(w.polling); deadline.Before(floor) {
		deadline = floor
	}
	attemptCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	ok, err = cond(attemptCtx)
	return ok, attemptCtx.Err() != nil && ctx.Err() == nil, err
}

func (w *FluentWait) finish(span trace.Span, description string, outcome Outcome, start time.Time, attempts int) {
	span.SetAttributes(
		attribute.String("wait.outcome", string(outcome)),
		attribute.Int("wait.attempts", attempts),
	)
	if outcome != OutcomeSuccess {
		span.SetStatus(codes.Error, string(outcome))
	}
	w.observer.ObserveWait(description, outcome, time.Since(start), attempts)
}

func (w *FluentWait) capture(ctx context.Context, logger *zap.Logger, reason string) {
	if w.capturer == nil {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), captureTimeout)
	defer cancel()
	paths, err := w.capturer.Capture(cctx, reason)
	if err != nil {
		logger.Warn("failed to capture diagnostics", zap.Strings("paths", paths), zap.Error(err))
		return
	}
	logger.Info("captured diagnostics", zap.Strings("paths", paths))
}
