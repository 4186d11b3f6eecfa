// =============================================================================
// 🔍 MockSearch - 搜索设施模拟实现
// =============================================================================
// 用于测试的 search.Search 实现，按定位器预设元素，记录每次调用，
// 支持按顺序注入结果与错误以模拟轮询过程中的页面变化
//
// 使用方法:
//
//	s := mocks.NewMockSearch().WithElements(locator.ByCSS("li"), el1, el2)
//	s.PushResult(nil, types.Stale("li"))
//	calls := s.FilteredCalls()
// =============================================================================
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
	"github.com/BaSui01/fluentwait/types"
)

// FindCall 记录一次 Find / FindWithFilters 调用
type FindCall struct {
	Locator locator.Locator
	Filters []filter.Filter
}

type scripted struct {
	list dom.List
	err  error
}

// MockSearch 是 search.Search 的模拟实现
type MockSearch struct {
	mu sync.Mutex

	// 元素存储
	elements map[locator.Locator]dom.List

	// 顺序注入
	script []scripted

	// 错误注入
	findErr error

	// 调用记录
	findCalls         []FindCall
	filteredCalls     []FindCall
	instantiatorCalls int
}

var _ search.Search = (*MockSearch)(nil)

// NewMockSearch 创建新的 MockSearch
func NewMockSearch() *MockSearch {
	return &MockSearch{elements: make(map[locator.Locator]dom.List)}
}

// WithElements 设置定位器对应的元素
func (m *MockSearch) WithElements(loc locator.Locator, elems ...dom.Element) *MockSearch {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements[loc] = append(dom.List{}, elems...)
	return m
}

// WithFindError 设置所有查找返回的错误
func (m *MockSearch) WithFindError(err error) *MockSearch {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findErr = err
	return m
}

// PushResult 追加一个按顺序消费的查找结果
func (m *MockSearch) PushResult(list dom.List, err error) *MockSearch {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{list: list, err: err})
	return m
}

// FindCalls 返回无过滤查找的调用记录
func (m *MockSearch) FindCalls() []FindCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FindCall(nil), m.findCalls...)
}

// FilteredCalls 返回带过滤查找的调用记录
func (m *MockSearch) FilteredCalls() []FindCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]FindCall(nil), m.filteredCalls...)
}

// InstantiatorCalls 返回 Instantiator 调用次数
func (m *MockSearch) InstantiatorCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instantiatorCalls
}

// =============================================================================
// 🎯 search.Search 接口实现
// =============================================================================

// Find 查找定位器匹配的全部元素
func (m *MockSearch) Find(ctx context.Context, loc locator.Locator) (dom.List, error) {
	m.mu.Lock()
	m.findCalls = append(m.findCalls, FindCall{Locator: loc})
	m.mu.Unlock()
	return m.resolve(ctx, loc, nil)
}

// FindWithFilters 查找定位器与过滤器同时匹配的元素
func (m *MockSearch) FindWithFilters(ctx context.Context, loc locator.Locator, filters []filter.Filter) (dom.List, error) {
	m.mu.Lock()
	m.filteredCalls = append(m.filteredCalls, FindCall{
		Locator: loc,
		Filters: append([]filter.Filter(nil), filters...),
	})
	m.mu.Unlock()
	return m.resolve(ctx, loc, filters)
}

// Instantiator 返回元素列表工厂
func (m *MockSearch) Instantiator() dom.Instantiator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.instantiatorCalls++
	return dom.DefaultInstantiator{}
}

func (m *MockSearch) resolve(ctx context.Context, loc locator.Locator, filters []filter.Filter) (dom.List, error) {
	if err := filter.Validate(filters); err != nil {
		return nil, err
	}
	m.mu.Lock()
	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		m.mu.Unlock()
		return next.list, next.err
	}
	if m.findErr != nil {
		err := m.findErr
		m.mu.Unlock()
		return nil, err
	}
	list := m.elements[loc]
	m.mu.Unlock()

	list, err := filter.Apply(ctx, list, filters)
	if err != nil {
		return nil, err
	}
	if list.Empty() {
		return nil, types.NotFound(search.Describe(loc, filters))
	}
	return list, nil
}
