// Copyright 2026 fluentwait Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
Package testutil 提供 fluentwait 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / CancelledContext，自动注册 Cleanup 防止泄漏
  - 页面辅助: WriteHTML / ServeHTML（httptest 服务，测试结束自动关闭）
  - 日志辅助: ObservedLogger（zaptest/observer 记录日志条目）
  - 断言工具: AssertErrorCode / AssertTimeoutMessage / AssertTexts

# 子包

  - testutil/mocks: MockSearch（搜索设施，记录调用并支持顺序注入结果）、
    FakeElement（可预设属性与状态的页面元素）、MockElement（MockGen 生成）
  - testutil/fixtures: 预置 HTML 页面样例

# 使用示例

	ctx := testutil.TestContext(t)
	s := mocks.NewMockSearch().WithElements(locator.ByCSS("li"), mocks.NewFakeElement("li"))
	err := wait.New(s).UntilSelector("li").IsPresent(ctx)
	require.NoError(t, err)
*/
package testutil
