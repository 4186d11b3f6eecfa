package cdpsearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/types"
)

const driverName = "chrome"

// Options 是 NewDriver 启动 Chrome 进程的配置选项
type Options struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	ProxyURL     string
	// Chrome 可执行文件路径（可选，默认自动查找）
	ExecPath string
	// 启动超时，0 表示不限制
	StartTimeout time.Duration
}

// DefaultOptions 返回默认选项：无头模式，1280x720
func DefaultOptions() Options {
	return Options{
		Headless:     true,
		WindowWidth:  1280,
		WindowHeight: 720,
		StartTimeout: 30 * time.Second,
	}
}

// Driver 基于 chromedp 驱动单个 Chrome 标签页
type Driver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
	opts        Options
	logger      *zap.Logger

	mu     sync.Mutex
	closed bool
}

var _ Browser = (*Driver)(nil)

// NewDriver 启动 Chrome 并打开空白标签页
func NewDriver(ctx context.Context, opts Options, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ProxyURL != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyURL))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// 浏览器进程的生命周期与调用方 ctx 解耦，由 Close 负责回收
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	d := &Driver{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         tabCtx,
		cancel:      cancel,
		opts:        opts,
		logger:      logger.With(zap.String("component", "chromedp_driver")),
	}

	// 设置启动超时
	startCtx := ctx
	if opts.StartTimeout > 0 {
		var stop context.CancelFunc
		startCtx, stop = context.WithTimeout(ctx, opts.StartTimeout)
		defer stop()
	}
	// 空动作列表即可触发浏览器启动
	if err := d.run(startCtx); err != nil {
		cancel()
		allocCancel()
		return nil, types.NewError(types.ErrDriverError, "failed to start browser").WithCause(err).WithDriver(driverName)
	}

	d.logger.Info("chrome started",
		zap.Bool("headless", opts.Headless),
		zap.Int("window_w", opts.WindowWidth),
		zap.Int("window_h", opts.WindowHeight))
	return d, nil
}

// run 在标签页上执行 actions，受调用方 context 约束
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return types.NewError(types.ErrDriverClosed, "browser is closed").WithDriver(driverName)
	}

	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate 打开 url 并等待 body 就绪
func (d *Driver) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("navigating", zap.String("url", url))
	if err := d.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return classify(err, "navigate to "+url)
	}
	return nil
}

// URL 返回当前页面地址
func (d *Driver) URL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, chromedp.Location(&url)); err != nil {
		return "", classify(err, "read location")
	}
	return url, nil
}

// Screenshot 截取整页 PNG
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, classify(err, "screenshot")
	}
	return buf, nil
}

// PageSource 返回序列化后的 html 元素
func (d *Driver) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", classify(err, "read page source")
	}
	return html, nil
}

// QueryNodes 实现 Browser。CSS 选择器走 querySelectorAll，
// XPath 走 DOM.performSearch，结果为空不视为错误。
func (d *Driver) QueryNodes(ctx context.Context, expr string, xpath bool) ([]*cdp.Node, error) {
	by := chromedp.ByQueryAll
	if xpath {
		by = chromedp.BySearch
	}
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(expr, &nodes, by, chromedp.AtLeast(0))); err != nil {
		return nil, classify(err, "query "+expr)
	}
	return nodes, nil
}

// CallOnNode 实现 Browser，在节点上调用 JS 函数
func (d *Driver) CallOnNode(ctx context.Context, node *cdp.Node, function string, res any, args ...any) error {
	err := d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.CallFunctionOnNode(ctx, node, function, res, args...)
	}))
	if err != nil {
		return classify(err, strings.ToLower(node.LocalName))
	}
	return nil
}

// Close 关闭标签页与浏览器进程，可重复调用
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	d.logger.Info("closing chrome")
	d.cancel()
	d.allocCancel()
	return nil
}

var staleMarkers = []string{
	"No node with given id",
	"Could not find node with given id",
	"Node with given id does not belong to the document",
	"Cannot find context with specified id",
}

// classify 将 chromedp 错误映射为错误码。
// 文档变化导致的节点查找失败映射为 STALE_ELEMENT。
func classify(err error, what string) error {
	if err == nil {
		return nil
	}
	if types.GetErrorCode(err) != "" {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	msg := err.Error()
	for _, marker := range staleMarkers {
		if strings.Contains(msg, marker) {
			return types.Stale(what).WithDriver(driverName).WithCause(err)
		}
	}
	return types.Errorf(types.ErrDriverError, "%s failed", what).WithCause(err).WithDriver(driverName)
}
