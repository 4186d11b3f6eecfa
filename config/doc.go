// Package config 提供 fluentwait 命令行与库的配置管理功能。
//
// 配置来源依次为默认值、YAML 文件与 FLUENTWAIT_ 前缀的环境变量，
// 加载后通过 Validate 校验。配置文件取 WithConfigPath、FLUENTWAIT_CONFIG
// 或当前目录下的 fluentwait.yaml，YAML 中的未知字段视为错误。
package config
