// Copyright (c) fluentwait Authors.
// Licensed under the BSD-style License.

/*
Package main 提供 fluentwait 命令行程序入口。

# 概述

cmd/fluentwait 在静态 HTML 文档或 Chrome 页面上轮询等待元素满足条件，
适用于部署脚本与端到端测试编排。程序支持 YAML 配置文件与环境变量、
结构化日志（zap）、Prometheus textfile 指标以及 OpenTelemetry 追踪。

# 子命令

  - wait：等待一个或多个选择器满足条件，多个选择器并发等待
  - version：显示版本信息
  - help：显示帮助

# 退出码

  - 0：所有条件满足
  - 1：至少一个等待超时或失败
  - 2：参数或配置错误
*/
package main
