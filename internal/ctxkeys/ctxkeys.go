// Package ctxkeys 定义在 context 中传递的调用元数据。
package ctxkeys

import "context"

// contextKey 用于在 context 中存储值的键类型
type contextKey string

const runIDKey contextKey = "run_id"

// WithRunID 设置 RunID，一次命令行调用中的所有等待共享同一 RunID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID 获取 RunID
func RunID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(runIDKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
