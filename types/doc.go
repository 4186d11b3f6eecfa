// Copyright (c) fluentwait Authors.
// Licensed under the MIT License.

/*
Package types 提供 fluentwait 的全局共享错误类型。

# 概述

types 是最底层的公共包，不依赖任何内部包。locator、search、wait、
capture 与 config 通过统一的 ErrorCode 报告失败，调用方据此决定
是否忽略错误继续轮询。

# 错误码

  - 查找: ELEMENT_NOT_FOUND / STALE_ELEMENT / INVALID_LOCATOR / INVALID_FILTER
  - 等待: WAIT_TIMEOUT / CANCELLED
  - 驱动: DRIVER_ERROR / DRIVER_CLOSED / NO_DOCUMENT / UNSUPPORTED /
    SOURCE_UNREADABLE
  - 其它: INVALID_CONFIG / CAPTURE_FAILED

# 主要能力

  - 构造: NewError / Errorf / NotFound / Stale，链式 WithCause / WithRetryable / WithDriver
  - 检查: GetErrorCode / HasCode / IsNotFound / IsStale / IsRetryable，
    沿 errors.Unwrap 链查找
*/
package types
