package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/fluentwait/capture"
	"github.com/BaSui01/fluentwait/config"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/internal/ctxkeys"
	"github.com/BaSui01/fluentwait/internal/metrics"
	"github.com/BaSui01/fluentwait/internal/telemetry"
	"github.com/BaSui01/fluentwait/internal/tlsutil"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
	"github.com/BaSui01/fluentwait/search/cdpsearch"
	"github.com/BaSui01/fluentwait/search/htmlsearch"
	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// =============================================================================
// ⏳ wait 命令
// =============================================================================

// attrFlags 收集可重复的 --attr name=value 参数
type attrFlags []filter.Filter

func (a *attrFlags) String() string {
	parts := make([]string, 0, len(*a))
	for _, f := range *a {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "")
}

func (a *attrFlags) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*a = append(*a, filter.Attribute(name, value))
	return nil
}

// waitOptions 是 wait 命令解析后的参数
type waitOptions struct {
	configPath  string
	driver      string
	url         string
	file        string
	timeout     time.Duration
	polling     time.Duration
	until       string
	negate      bool
	id          string
	name        string
	class       string
	text        string
	attrs       attrFlags
	message     string
	captureDir  string
	metricsFile string
	parallel    int
	insecure    bool

	selectors []string
	set       map[string]bool
}

func parseWaitArgs(args []string, stderr io.Writer) (*waitOptions, error) {
	o := &waitOptions{set: make(map[string]bool)}

	fs := flag.NewFlagSet("wait", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configPath, "config", "", "Path to config file")
	fs.StringVar(&o.driver, "driver", "", "Driver kind: html or chrome")
	fs.StringVar(&o.url, "url", "", "Document URL or page to open")
	fs.StringVar(&o.file, "file", "", "Local HTML document, - for stdin")
	fs.DurationVar(&o.timeout, "timeout", 0, "Maximum wait")
	fs.DurationVar(&o.polling, "polling", 0, "Polling interval")
	fs.StringVar(&o.until, "until", "present", "Condition to wait for")
	fs.BoolVar(&o.negate, "not", false, "Negate the condition")
	fs.StringVar(&o.id, "id", "", "Filter by id")
	fs.StringVar(&o.name, "name", "", "Filter by name")
	fs.StringVar(&o.class, "class", "", "Filter by class")
	fs.StringVar(&o.text, "text", "", "Filter by contained text")
	fs.Var(&o.attrs, "attr", "Filter by attribute name=value (repeatable)")
	fs.StringVar(&o.message, "message", "", "Message reported on timeout")
	fs.StringVar(&o.captureDir, "capture", "", "Dump the page into this directory on timeout")
	fs.StringVar(&o.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	fs.IntVar(&o.parallel, "parallel", 4, "Maximum concurrent waits")
	fs.BoolVar(&o.insecure, "insecure", false, "Skip TLS certificate verification when fetching --url")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	o.selectors = fs.Args()
	if len(o.selectors) == 0 {
		return nil, fmt.Errorf("at least one selector is required")
	}
	if o.url != "" && o.file != "" {
		return nil, fmt.Errorf("--url and --file are mutually exclusive")
	}
	if o.parallel < 1 {
		return nil, fmt.Errorf("--parallel must be at least 1")
	}
	return o, nil
}

// applyTo 将显式设置的命令行参数覆盖到配置
func (o *waitOptions) applyTo(cfg *config.Config) {
	if o.set["driver"] {
		cfg.Driver.Kind = o.driver
	}
	if o.set["insecure"] {
		cfg.Driver.InsecureSkipVerify = o.insecure
	}
	if o.set["timeout"] {
		cfg.Wait.Timeout = o.timeout
	}
	if o.set["polling"] {
		cfg.Wait.Polling = o.polling
	}
	if o.set["message"] {
		cfg.Wait.Message = o.message
	}
	if o.set["capture"] {
		cfg.Capture.Enabled = o.captureDir != ""
		cfg.Capture.Dir = o.captureDir
	}
	if o.set["metrics-file"] {
		cfg.Metrics.Enabled = o.metricsFile != ""
		cfg.Metrics.TextfilePath = o.metricsFile
	}
}

// filters 返回命令行指定的过滤器
func (o *waitOptions) filters() []filter.Filter {
	var fs []filter.Filter
	if o.id != "" {
		fs = append(fs, filter.ID(o.id))
	}
	if o.name != "" {
		fs = append(fs, filter.Name(o.name))
	}
	if o.class != "" {
		fs = append(fs, filter.Class(o.class))
	}
	if o.text != "" {
		fs = append(fs, filter.Text(o.text))
	}
	return append(fs, o.attrs...)
}

// waitResult 是单个选择器的等待结果
type waitResult struct {
	description string
	err         error
}

func runWait(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseWaitArgs(args, stderr)
	if err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintf(stderr, "Invalid arguments: %v\n", err)
		}
		return exitUsage
	}
	cond, err := parseCondition(opts.until)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid --until: %v\n", err)
		return exitUsage
	}

	// 加载配置
	loader := config.NewLoader()
	if opts.configPath != "" {
		loader = loader.WithConfigPath(opts.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return exitUsage
	}
	opts.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid config: %v\n", err)
		return exitUsage
	}

	runID := uuid.NewString()
	ctx = ctxkeys.WithRunID(ctx, runID)
	logger := initLogger(cfg.Log)
	defer logger.Sync()
	logger.Debug("wait run started",
		zap.String("run_id", runID),
		zap.Strings("selectors", opts.selectors),
		zap.String("driver", cfg.Driver.Kind))

	// 初始化 OpenTelemetry
	providers, err := telemetry.Init(ctx, cfg.Telemetry, logger, telemetry.WithServiceVersion(Version))
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	// 初始化页面
	page, err := openSearch(ctx, cfg, opts, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open page: %v\n", err)
		return exitFailed
	}
	defer page.close()

	// 组装等待
	var observers []wait.Observer
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		observers = append(observers, metrics.NewCollector(cfg.Metrics.Namespace, registry, logger))
	}
	if cfg.Telemetry.Enabled {
		if inst, err := telemetry.NewWaitInstruments(providers.Meter()); err != nil {
			logger.Warn("failed to create wait instruments", zap.Error(err))
		} else {
			observers = append(observers, inst)
		}
	}
	waitOpts := []wait.Option{
		wait.WithLogger(logger),
		wait.WithTimeout(cfg.Wait.Timeout),
		wait.WithPolling(cfg.Wait.Polling),
		wait.WithObserver(wait.Observers(observers...)),
	}
	if cfg.Capture.Enabled {
		waitOpts = append(waitOpts, wait.WithCapturer(capture.NewDir(cfg.Capture.Dir, page.source,
			capture.WithLogger(logger), capture.WithScreenshots(cfg.Capture.Screenshots))))
	}
	fw := wait.New(page.search, waitOpts...).Ignoring(cfg.Wait.IgnoredCodes()...)
	if cfg.Wait.IgnoreAll {
		fw = fw.IgnoreAll()
	}
	if cfg.Wait.Message != "" {
		fw = fw.WithMessage(cfg.Wait.Message)
	}

	results := waitAll(ctx, fw, opts, cond)

	code := exitOK
	for _, r := range results {
		if r.err != nil {
			code = exitFailed
			hint := ""
			if types.IsRetryable(r.err) {
				hint = " (retryable)"
			}
			fmt.Fprintf(stdout, "FAIL %s: %v%s\n", r.description, r.err, hint)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s\n", r.description)
	}

	if registry != nil && cfg.Metrics.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.TextfilePath, registry); err != nil {
			logger.Warn("failed to write metrics", zap.String("path", cfg.Metrics.TextfilePath), zap.Error(err))
		}
	}
	return code
}

// waitAll 并发等待所有选择器，结果按选择器顺序返回
func waitAll(ctx context.Context, fw *wait.FluentWait, opts *waitOptions, cond condition) []waitResult {
	results := make([]waitResult, len(opts.selectors))
	filters := opts.filters()

	var g errgroup.Group
	g.SetLimit(opts.parallel)
	for i, sel := range opts.selectors {
		m := fw.Until(locator.Parse(sel))
		for _, f := range filters {
			m.WithFilter(f)
		}
		if opts.negate {
			m = m.Not()
		}
		results[i].description = m.Description()
		g.Go(func() error {
			results[i].err = cond(m, ctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// =============================================================================
// 🌐 页面初始化
// =============================================================================

// openSearch 按驱动类型创建查找器，返回用于诊断转储的页面源与关闭函数
func openSearch(ctx context.Context, cfg *config.Config, opts *waitOptions, logger *zap.Logger) (*searchHandle, error) {
	switch cfg.Driver.Kind {
	case config.DriverChrome:
		if opts.url == "" {
			return nil, fmt.Errorf("the chrome driver needs --url")
		}
		chrome := cfg.Driver.Chrome
		driver, err := cdpsearch.NewDriver(ctx, cdpsearch.Options{
			Headless:     chrome.Headless,
			WindowWidth:  chrome.WindowWidth,
			WindowHeight: chrome.WindowHeight,
			UserAgent:    chrome.UserAgent,
			ProxyURL:     chrome.ProxyURL,
			ExecPath:     chrome.ExecPath,
			StartTimeout: chrome.StartTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := driver.Navigate(ctx, opts.url); err != nil {
			driver.Close()
			return nil, err
		}
		return &searchHandle{
			search: cdpsearch.New(driver, logger),
			source: driver,
			close:  func() { driver.Close() },
		}, nil

	default:
		source, err := htmlSource(cfg, opts)
		if err != nil {
			return nil, err
		}
		s := htmlsearch.New(source,
			htmlsearch.WithLogger(logger),
			htmlsearch.WithRefreshOnFind(cfg.Driver.RefreshOnFind))
		return &searchHandle{search: s, source: s, close: func() {}}, nil
	}
}

// searchHandle 聚合查找器、页面源与关闭函数
type searchHandle struct {
	search search.Search
	source capture.PageSource
	close  func()
}

func htmlSource(cfg *config.Config, opts *waitOptions) (htmlsearch.Source, error) {
	switch {
	case opts.url != "":
		return htmlsearch.URLSource(opts.url, tlsutil.DocumentClient(tlsutil.ClientOptions{
			Timeout:            cfg.Driver.HTTPTimeout,
			UserAgent:          cfg.Driver.Chrome.UserAgent,
			InsecureSkipVerify: cfg.Driver.InsecureSkipVerify,
		})), nil
	case opts.file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return htmlsearch.StringSource("stdin", string(data)), nil
	case opts.file != "":
		return htmlsearch.FileSource(opts.file), nil
	}
	return nil, fmt.Errorf("the html driver needs --url or --file")
}
