package wait

import (
	"context"
	"strings"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/types"
)

const selectorPrefix = "Selector"

// filterList 由匹配器及其所有取反副本共享
type filterList struct {
	items []filter.Filter
}

// LocatorMatcher 等待与定位器及有序属性过滤器匹配的元素。
// 非并发安全。
type LocatorMatcher struct {
	wait        *FluentWait
	locator     locator.Locator
	filters     *filterList
	negation    bool
	description string
}

func newLocatorMatcher(w *FluentWait, loc locator.Locator) *LocatorMatcher {
	return &LocatorMatcher{
		wait:        w,
		locator:     loc,
		filters:     &filterList{},
		description: selectorPrefix + " " + loc.String(),
	}
}

func newSelectorMatcher(w *FluentWait, selector string) *LocatorMatcher {
	return &LocatorMatcher{
		wait:        w,
		locator:     locator.ByCSS(selector),
		filters:     &filterList{},
		description: selectorPrefix + " " + selector,
	}
}

// Not 返回取反后的匹配器。新匹配器与接收者共享过滤器列表，
// 接收者本身不变。
func (m *LocatorMatcher) Not() *LocatorMatcher {
	return &LocatorMatcher{
		wait:        m.wait,
		locator:     m.locator,
		filters:     m.filters,
		negation:    !m.negation,
		description: m.description,
	}
}

// Negated reports whether conditions are inverted.
func (m *LocatorMatcher) Negated() bool { return m.negation }

// Locator returns the matcher's locator.
func (m *LocatorMatcher) Locator() locator.Locator { return m.locator }

// Description returns the human readable subject used in messages.
func (m *LocatorMatcher) Description() string { return m.description }

// Filters returns a snapshot of the attached filters in insertion order.
func (m *LocatorMatcher) Filters() []filter.Filter {
	return append([]filter.Filter(nil), m.filters.items...)
}

func (m *LocatorMatcher) addFilter(f filter.Filter) {
	m.filters.items = append(m.filters.items, f)
}

// With starts a filter on an arbitrary attribute.
func (m *LocatorMatcher) With(attribute string) *FiltersBuilder {
	return newFiltersBuilder(m, attribute)
}

// WithIDThat starts a filter on the id attribute.
func (m *LocatorMatcher) WithIDThat() *FiltersBuilder {
	return newFiltersBuilder(m, filter.AttrID)
}

// WithNameThat starts a filter on the name attribute.
func (m *LocatorMatcher) WithNameThat() *FiltersBuilder {
	return newFiltersBuilder(m, filter.AttrName)
}

// WithClassThat starts a filter on the class attribute.
func (m *LocatorMatcher) WithClassThat() *FiltersBuilder {
	return newFiltersBuilder(m, filter.AttrClass)
}

// WithTextThat starts a filter on the element text.
func (m *LocatorMatcher) WithTextThat() *FiltersBuilder {
	return newFiltersBuilder(m, filter.AttrText)
}

// WithID keeps the elements whose id equals value.
func (m *LocatorMatcher) WithID(value string) *LocatorMatcher {
	m.addFilter(filter.ID(value))
	return m
}

// WithName keeps the elements whose name equals value.
func (m *LocatorMatcher) WithName(value string) *LocatorMatcher {
	m.addFilter(filter.Name(value))
	return m
}

// WithClass keeps the elements carrying the class value.
func (m *LocatorMatcher) WithClass(value string) *LocatorMatcher {
	m.addFilter(filter.Class(value))
	return m
}

// WithText keeps the elements whose text contains value.
func (m *LocatorMatcher) WithText(value string) *LocatorMatcher {
	m.addFilter(filter.Text(value))
	return m
}

// WithFilter appends a prebuilt filter.
func (m *LocatorMatcher) WithFilter(f filter.Filter) *LocatorMatcher {
	m.addFilter(f)
	return m
}

// Find 执行一次查找。未找到与过期引用返回空列表，
// 其他查找错误原样返回。
func (m *LocatorMatcher) Find(ctx context.Context) (dom.List, error) {
	s := m.wait.search

	var (
		list dom.List
		err  error
	)
	if len(m.filters.items) > 0 {
		list, err = s.FindWithFilters(ctx, m.locator, m.Filters())
	} else {
		list, err = s.Find(ctx, m.locator)
	}
	if err != nil {
		if types.IsNotFound(err) || types.IsStale(err) {
			return s.Instantiator().NewList(), nil
		}
		return nil, err
	}
	return list, nil
}

// BuildMessage appends the filter descriptions to defaultMessage.
func (m *LocatorMatcher) BuildMessage(defaultMessage string) string {
	if len(m.filters.items) == 0 {
		return defaultMessage
	}
	var b strings.Builder
	b.WriteString(defaultMessage)
	for _, f := range m.filters.items {
		b.WriteString(f.String())
	}
	b.WriteString(" Filters : ")
	return b.String()
}
