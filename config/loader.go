// =============================================================================
// 📦 fluentwait 配置加载器
// =============================================================================
// 统一配置加载，支持 YAML 文件 + 环境变量覆盖
//
// 使用方法:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("fluentwait.yaml").
//	    WithEnvPrefix("FLUENTWAIT").
//	    Load()
//
// 配置优先级: 默认值 → YAML 文件 → 环境变量
// =============================================================================
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/fluentwait/types"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 fluentwait 的完整配置结构
type Config struct {
	// Wait 等待默认参数
	Wait WaitConfig `yaml:"wait" env:"WAIT"`

	// Driver 页面驱动配置
	Driver DriverConfig `yaml:"driver" env:"DRIVER"`

	// Capture 超时诊断转储配置
	Capture CaptureConfig `yaml:"capture" env:"CAPTURE"`

	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics 指标配置
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`

	// Telemetry 遥测配置
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// WaitConfig 等待配置
type WaitConfig struct {
	// 最长等待时间
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// 轮询间隔
	Polling time.Duration `yaml:"polling" env:"POLLING"`
	// 轮询期间忽略的错误码，为空时使用默认值
	Ignored []string `yaml:"ignored" env:"IGNORED"`
	// 是否忽略所有错误
	IgnoreAll bool `yaml:"ignore_all" env:"IGNORE_ALL"`
	// 超时消息（可选）
	Message string `yaml:"message" env:"MESSAGE"`
}

// DriverConfig 驱动配置
type DriverConfig struct {
	// 驱动类型: html, chrome
	Kind string `yaml:"kind" env:"KIND"`
	// 每次查找前重新加载文档（仅 html）
	RefreshOnFind bool `yaml:"refresh_on_find" env:"REFRESH_ON_FIND"`
	// 拉取 URL 文档的超时（仅 html）
	HTTPTimeout time.Duration `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
	// 跳过 TLS 证书校验（仅 html，用于自签名测试环境）
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" env:"INSECURE_SKIP_VERIFY"`
	// Chrome 选项
	Chrome ChromeConfig `yaml:"chrome" env:"CHROME"`
}

// ChromeConfig Chrome 浏览器配置
type ChromeConfig struct {
	// 是否无头模式
	Headless bool `yaml:"headless" env:"HEADLESS"`
	// 窗口宽度
	WindowWidth int `yaml:"window_width" env:"WINDOW_WIDTH"`
	// 窗口高度
	WindowHeight int `yaml:"window_height" env:"WINDOW_HEIGHT"`
	// User-Agent（可选）
	UserAgent string `yaml:"user_agent" env:"USER_AGENT"`
	// 代理地址（可选）
	ProxyURL string `yaml:"proxy_url" env:"PROXY_URL"`
	// Chrome 可执行文件路径（可选）
	ExecPath string `yaml:"exec_path" env:"EXEC_PATH"`
	// 启动超时
	StartTimeout time.Duration `yaml:"start_timeout" env:"START_TIMEOUT"`
}

// CaptureConfig 诊断转储配置
type CaptureConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 输出目录
	Dir string `yaml:"dir" env:"DIR"`
	// 是否同时截图
	Screenshots bool `yaml:"screenshots" env:"SCREENSHOTS"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 日志级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 输出格式: json, console
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// 是否启用调用者信息
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
	// 是否启用堆栈跟踪
	EnableStacktrace bool `yaml:"enable_stacktrace" env:"ENABLE_STACKTRACE"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// 指标命名空间
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
	// 退出时写入的 textfile 路径（node_exporter 格式，可选）
	TextfilePath string `yaml:"textfile_path" env:"TEXTFILE_PATH"`
}

// TelemetryConfig 遥测配置
type TelemetryConfig struct {
	// 是否启用
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLP 端点
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// 服务名称
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// 采样率
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// =============================================================================
// 🔧 配置加载器
// =============================================================================

// DefaultConfigFile 是未显式指定配置文件时在当前目录查找的文件名
const DefaultConfigFile = "fluentwait.yaml"

// Loader 配置加载器（Builder 模式）
type Loader struct {
	configPath string
	explicit   bool
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader 创建新的配置加载器
func NewLoader() *Loader {
	return &Loader{envPrefix: "FLUENTWAIT"}
}

// WithConfigPath 设置配置文件路径，文件必须存在
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	l.explicit = path != ""
	return l
}

// WithEnvPrefix 设置环境变量前缀
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator 添加配置验证器
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load 加载配置
// 优先级: 默认值 → YAML 文件 → 环境变量 → 验证器
//
// 配置文件查找顺序: WithConfigPath → ${PREFIX}_CONFIG → ./fluentwait.yaml。
// 前两者指向的文件不存在时报错，默认文件不存在时忽略。
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	path, required := l.resolvePath()
	if err := decodeFile(path, required, cfg); err != nil {
		return nil, types.Errorf(types.ErrInvalidConfig, "failed to load config file %s", path).WithCause(err)
	}

	env := envWalker{lookup: os.LookupEnv}
	if err := env.apply(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, types.NewError(types.ErrInvalidConfig, "failed to load config from env").WithCause(err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, types.NewError(types.ErrInvalidConfig, "config validation failed").WithCause(err)
		}
	}
	return cfg, nil
}

func (l *Loader) resolvePath() (string, bool) {
	if l.explicit {
		return l.configPath, true
	}
	if p, ok := os.LookupEnv(l.envPrefix + "_CONFIG"); ok && p != "" {
		return p, true
	}
	return DefaultConfigFile, false
}

// decodeFile 严格解析 YAML：未知字段视为错误，避免拼写错误被静默忽略
func decodeFile(path string, required bool, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// =============================================================================
// 🌱 环境变量覆盖
// =============================================================================

var durationType = reflect.TypeOf(time.Duration(0))

// envWalker 按 env 标签递归覆盖结构体字段，键名为 PREFIX_SECTION_FIELD
type envWalker struct {
	lookup func(string) (string, bool)
}

func (w envWalker) apply(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := range t.NumField() {
		tag := t.Field(i).Tag.Get("env")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + "_" + tag
		field := v.Field(i)

		if field.Kind() == reflect.Struct {
			if err := w.apply(field, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := w.lookup(key)
		if !ok || raw == "" || !field.CanSet() {
			continue
		}
		parsed, err := parseEnvValue(field.Type(), raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, raw, err)
		}
		field.Set(parsed)
	}
	return nil
}

func parseEnvValue(t reflect.Type, raw string) (reflect.Value, error) {
	if t == durationType {
		d, err := time.ParseDuration(raw)
		return reflect.ValueOf(d), err
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return out, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return out, err
		}
		out.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return out, err
		}
		out.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() != reflect.String {
			return out, fmt.Errorf("unsupported slice type %s", t)
		}
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		out.Set(reflect.ValueOf(items))
	default:
		return out, fmt.Errorf("unsupported field type %s", t)
	}
	return out, nil
}

// =============================================================================
// 🔍 辅助函数
// =============================================================================

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Wait.Timeout < 0 {
		errs = append(errs, "wait.timeout must not be negative")
	}
	if c.Wait.Polling <= 0 {
		errs = append(errs, "wait.polling must be positive")
	}
	for _, code := range c.Wait.Ignored {
		if !knownCode(types.ErrorCode(code)) {
			errs = append(errs, fmt.Sprintf("wait.ignored: unknown error code %q", code))
		}
	}

	switch c.Driver.Kind {
	case DriverHTML:
	case DriverChrome:
		if c.Driver.Chrome.WindowWidth <= 0 || c.Driver.Chrome.WindowHeight <= 0 {
			errs = append(errs, "driver.chrome window size must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("driver.kind must be %q or %q", DriverHTML, DriverChrome))
	}

	if c.Capture.Enabled && c.Capture.Dir == "" {
		errs = append(errs, "capture.dir is required when capture is enabled")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, "log.format must be json or console")
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(errs) > 0 {
		return types.NewError(types.ErrInvalidConfig, "config validation errors: "+strings.Join(errs, "; "))
	}

	return nil
}

// IgnoredCodes 返回等待期间忽略的错误码
func (w WaitConfig) IgnoredCodes() []types.ErrorCode {
	codes := make([]types.ErrorCode, 0, len(w.Ignored))
	for _, c := range w.Ignored {
		codes = append(codes, types.ErrorCode(c))
	}
	return codes
}

func knownCode(code types.ErrorCode) bool {
	switch code {
	case types.ErrElementNotFound, types.ErrStaleElement, types.ErrInvalidLocator, types.ErrInvalidFilter,
		types.ErrDriverError, types.ErrDriverClosed, types.ErrNoDocument, types.ErrUnsupported,
		types.ErrSourceUnreadable:
		return true
	}
	return false
}
