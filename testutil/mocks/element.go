// =============================================================================
// 🧩 FakeElement - 页面元素模拟实现
// =============================================================================
// 用于测试的 dom.Element 实现，支持属性、文本、状态预设与过期注入
//
// 使用方法:
//
//	el := mocks.NewFakeElement("button").WithID("submit").WithText("Send")
//	el.MarkStale()
// =============================================================================
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/fluentwait/types"
)

// FakeElement 是 dom.Element 的模拟实现
type FakeElement struct {
	mu sync.RWMutex

	tag       string
	attrs     map[string]string
	text      string
	displayed bool
	enabled   bool
	selected  bool

	// 错误注入
	stale  bool
	accErr error

	// 调用记录
	textCalls int
}

// NewFakeElement 创建新的 FakeElement（默认可见、可用）
func NewFakeElement(tag string) *FakeElement {
	return &FakeElement{
		tag:       tag,
		attrs:     make(map[string]string),
		displayed: true,
		enabled:   true,
	}
}

// WithAttr 设置属性
func (e *FakeElement) WithAttr(name, value string) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attrs[name] = value
	return e
}

// WithID 设置 id 属性
func (e *FakeElement) WithID(id string) *FakeElement { return e.WithAttr("id", id) }

// WithName 设置 name 属性
func (e *FakeElement) WithName(name string) *FakeElement { return e.WithAttr("name", name) }

// WithClass 设置 class 属性
func (e *FakeElement) WithClass(class string) *FakeElement { return e.WithAttr("class", class) }

// WithText 设置文本
func (e *FakeElement) WithText(text string) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	return e
}

// WithDisplayed 设置可见状态
func (e *FakeElement) WithDisplayed(v bool) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displayed = v
	return e
}

// WithEnabled 设置可用状态
func (e *FakeElement) WithEnabled(v bool) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = v
	return e
}

// WithSelected 设置选中状态
func (e *FakeElement) WithSelected(v bool) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = v
	return e
}

// WithError 设置所有访问方法返回的错误
func (e *FakeElement) WithError(err error) *FakeElement {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accErr = err
	return e
}

// MarkStale 使后续访问返回 STALE_ELEMENT
func (e *FakeElement) MarkStale() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stale = true
}

// TextCalls 返回 Text 调用次数
func (e *FakeElement) TextCalls() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.textCalls
}

// =============================================================================
// 🎯 dom.Element 接口实现
// =============================================================================

func (e *FakeElement) check() error {
	if e.stale {
		return types.Stale(e.tag)
	}
	return e.accErr
}

// TagName 返回标签名
func (e *FakeElement) TagName() string { return e.tag }

// Attribute 返回属性值
func (e *FakeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return "", false, err
	}
	v, ok := e.attrs[name]
	return v, ok, nil
}

// Text 返回文本
func (e *FakeElement) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.textCalls++
	if err := e.check(); err != nil {
		return "", err
	}
	return e.text, nil
}

// Displayed 返回可见状态
func (e *FakeElement) Displayed(ctx context.Context) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return e.displayed, nil
}

// Enabled 返回可用状态
func (e *FakeElement) Enabled(ctx context.Context) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return e.enabled, nil
}

// Selected 返回选中状态
func (e *FakeElement) Selected(ctx context.Context) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return false, err
	}
	return e.selected, nil
}
