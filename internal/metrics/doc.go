// Copyright 2026 fluentwait Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license.

/*
包 metrics 提供基于 Prometheus 的等待指标采集能力。

# 概述

Collector 实现 wait.Observer，记录每次轮询与每次等待的结果。
指标通过调用方传入的 prometheus.Registerer 注册，命令行在退出时
使用 prometheus.WriteToTextfile 输出 node_exporter textfile 格式。

# 指标

  - polls_total：轮询次数，按 result（ok 或错误码）分组。
  - poll_duration_seconds：单次条件求值耗时。
  - waits_total / wait_duration_seconds：等待次数与耗时，按 outcome 分组。
  - wait_attempts：每次等待的轮询次数分布。
  - find_errors_total：查找错误，按错误码分组。
*/
package metrics
