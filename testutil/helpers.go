// =============================================================================
// 🧪 测试辅助函数
// =============================================================================
// 提供等待、查找与命令行测试共用的辅助函数和断言
//
// 使用方法:
//
//	ctx := testutil.TestContext(t)
//	srv := testutil.ServeHTML(t, fixtures.LoginPage)
//	testutil.AssertErrorCode(t, err, types.ErrWaitTimeout)
//	testutil.AssertTexts(t, ctx, []string{"a", "b"}, list)
// =============================================================================
package testutil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/types"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带 30s 超时的测试上下文，测试结束时自动取消
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 📄 页面辅助
// =============================================================================

// WriteHTML 将页面写入临时目录并返回文件路径
func WriteHTML(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		t.Fatalf("failed to write page: %v", err)
	}
	return path
}

// ServeHTML 启动返回固定页面的 HTTP 服务，测试结束时自动关闭
func ServeHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// ObservedLogger 返回记录所有日志条目的 logger
func ObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// =============================================================================
// 🔍 断言辅助
// =============================================================================

// AssertErrorCode 断言错误链中包含指定错误码
func AssertErrorCode(t *testing.T, err error, code types.ErrorCode) {
	t.Helper()
	if err == nil {
		t.Errorf("expected error with code %s, got nil", code)
		return
	}
	if !types.HasCode(err, code) {
		t.Errorf("expected error with code %s, got %v", code, err)
	}
}

// AssertTimeoutMessage 断言等待超时且错误消息与 expected 一致
func AssertTimeoutMessage(t *testing.T, err error, expected string) {
	t.Helper()
	var werr *types.Error
	if !errors.As(err, &werr) || werr.Code != types.ErrWaitTimeout {
		t.Errorf("expected %s error, got %v", types.ErrWaitTimeout, err)
		return
	}
	if werr.Message != expected {
		t.Errorf("timeout message mismatch:\n expected %q\n got      %q", expected, werr.Message)
	}
}

// AssertTexts 断言元素列表的文本依次相等
func AssertTexts(t *testing.T, ctx context.Context, expected []string, list dom.List) {
	t.Helper()

	texts, err := list.Texts(ctx)
	if err != nil {
		t.Errorf("failed to read texts: %v", err)
		return
	}
	if len(expected) != len(texts) {
		t.Errorf("element count mismatch: expected %d, got %d (%q)", len(expected), len(texts), texts)
		return
	}
	for i := range expected {
		if expected[i] != texts[i] {
			t.Errorf("element[%d] text mismatch: expected %q, got %q", i, expected[i], texts[i])
		}
	}
}
