// Package tlsutil 提供拉取远程 HTML 文档所用的 HTTP 客户端，
// 默认采用安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
