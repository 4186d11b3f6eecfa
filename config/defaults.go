// =============================================================================
// 📦 fluentwait 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// 驱动类型
const (
	DriverHTML   = "html"
	DriverChrome = "chrome"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Wait:      DefaultWaitConfig(),
		Driver:    DefaultDriverConfig(),
		Capture:   DefaultCaptureConfig(),
		Log:       DefaultLogConfig(),
		Metrics:   DefaultMetricsConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultWaitConfig 返回默认等待配置
func DefaultWaitConfig() WaitConfig {
	return WaitConfig{
		Timeout: 5 * time.Second,
		Polling: 500 * time.Millisecond,
	}
}

// DefaultDriverConfig 返回默认驱动配置
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		Kind:          DriverHTML,
		RefreshOnFind: true,
		HTTPTimeout:   10 * time.Second,
		Chrome: ChromeConfig{
			Headless:     true,
			WindowWidth:  1280,
			WindowHeight: 720,
			StartTimeout: 30 * time.Second,
		},
	}
}

// DefaultCaptureConfig 返回默认诊断转储配置
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		Enabled:     false,
		Dir:         "fluentwait-captures",
		Screenshots: true,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "fluentwait",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "fluentwait",
		SampleRate:   0.1,
	}
}
