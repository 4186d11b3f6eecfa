// Package filter 按属性值收窄定位到的元素。
//
// 能表达为 CSS 属性选择器的过滤器由 Split 下推到选择器中，
// 其余（文本、取反、正则）逐元素求值。
package filter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/types"
)

// 常用属性
const (
	AttrID    = "id"
	AttrName  = "name"
	AttrClass = "class"
	AttrText  = "text"
	AttrValue = "value"
)

// Kind is the comparison a filter applies.
type Kind int

const (
	Equals Kind = iota
	Contains
	StartsWith
	EndsWith
	NotContains
	NotStartsWith
	NotEndsWith
	Matches
	NotMatches
)

var kindOps = map[Kind]string{
	Equals:        "=",
	Contains:      "*=",
	StartsWith:    "^=",
	EndsWith:      "$=",
	NotContains:   "!*=",
	NotStartsWith: "!^=",
	NotEndsWith:   "!$=",
	Matches:       "~",
	NotMatches:    "!~",
}

// Negated reports whether the kind rejects matching values.
func (k Kind) Negated() bool {
	switch k {
	case NotContains, NotStartsWith, NotEndsWith, NotMatches:
		return true
	}
	return false
}

func (k Kind) String() string {
	if op, ok := kindOps[k]; ok {
		return op
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Filter 是 (attribute, value, kind) 三元谓词。零值不可用，
// 请使用下面的构造函数创建。
type Filter struct {
	attribute string
	kind      Kind
	value     string
	pattern   *regexp.Regexp
	invalid   bool
}

// New builds a string comparison filter.
func New(attribute string, kind Kind, value string) Filter {
	return Filter{attribute: attribute, kind: kind, value: value}
}

// NewPattern builds a regular expression filter. kind must be Matches or
// NotMatches; any other kind is treated as Matches. A nil re yields a
// filter whose Match reports INVALID_FILTER.
func NewPattern(attribute string, kind Kind, re *regexp.Regexp) Filter {
	if kind != NotMatches {
		kind = Matches
	}
	if re == nil {
		return Filter{attribute: attribute, kind: kind, value: "<nil>", invalid: true}
	}
	return Filter{attribute: attribute, kind: kind, value: re.String(), pattern: re}
}

// ID matches elements whose id equals value.
func ID(value string) Filter { return New(AttrID, Equals, value) }

// Name matches elements whose name equals value.
func Name(value string) Filter { return New(AttrName, Equals, value) }

// Class matches elements carrying the class value.
func Class(value string) Filter { return New(AttrClass, Equals, value) }

// Text matches elements whose text contains value.
func Text(value string) Filter { return New(AttrText, Contains, value) }

// Attribute matches elements whose attribute equals value.
func Attribute(attribute, value string) Filter { return New(attribute, Equals, value) }

// Attribute returns the filtered attribute name.
func (f Filter) Attribute() string { return f.attribute }

// Kind returns the comparison kind.
func (f Filter) Kind() Kind { return f.kind }

// Value returns the expected value (the pattern source for regexps).
func (f Filter) Value() string { return f.value }

// Valid reports whether the filter can be evaluated.
func (f Filter) Valid() bool { return !f.invalid }

// String describes the filter, e.g. [id=x] or [text*=Sign in].
func (f Filter) String() string {
	if f.pattern != nil || f.invalid {
		return fmt.Sprintf("[%s%s/%s/]", f.attribute, f.kind, f.value)
	}
	return fmt.Sprintf("[%s%s%s]", f.attribute, f.kind, f.value)
}

// Match evaluates the filter against el.
func (f Filter) Match(ctx context.Context, el dom.Element) (bool, error) {
	if f.invalid {
		return false, types.Errorf(types.ErrInvalidFilter, "filter %s has no pattern", f)
	}
	var (
		actual  string
		present bool
		err     error
	)
	if f.attribute == AttrText {
		actual, err = el.Text(ctx)
		present = err == nil
	} else {
		actual, present, err = el.Attribute(ctx, f.attribute)
	}
	if err != nil {
		return false, err
	}
	if !present {
		return f.kind.Negated(), nil
	}
	return f.compare(actual), nil
}

func (f Filter) compare(actual string) bool {
	switch f.kind {
	case Equals:
		if f.attribute == AttrClass {
			for _, c := range strings.Fields(actual) {
				if c == f.value {
					return true
				}
			}
			return false
		}
		return actual == f.value
	case Contains:
		return strings.Contains(actual, f.value)
	case StartsWith:
		return strings.HasPrefix(actual, f.value)
	case EndsWith:
		return strings.HasSuffix(actual, f.value)
	case NotContains:
		return !strings.Contains(actual, f.value)
	case NotStartsWith:
		return !strings.HasPrefix(actual, f.value)
	case NotEndsWith:
		return !strings.HasSuffix(actual, f.value)
	case Matches:
		return f.pattern != nil && f.pattern.MatchString(actual)
	case NotMatches:
		return f.pattern == nil || !f.pattern.MatchString(actual)
	}
	return false
}

// CSS returns the attribute selector equivalent to f, if one exists.
// Text, negated and pattern filters have none. CSS substring operators
// never match an empty value, so empty substring filters stay post filters.
func (f Filter) CSS() (string, bool) {
	if f.attribute == AttrText || f.pattern != nil || f.invalid || f.kind.Negated() {
		return "", false
	}
	if !validAttrName(f.attribute) {
		return "", false
	}
	q := locator.Quote(f.value)
	switch f.kind {
	case Equals:
		if f.attribute == AttrClass {
			if f.value == "" || strings.ContainsAny(f.value, " \t\n\r\f") {
				return "", false
			}
			return fmt.Sprintf(`[class~="%s"]`, q), true
		}
		return fmt.Sprintf(`[%s="%s"]`, f.attribute, q), true
	case Contains, StartsWith, EndsWith:
		if f.value == "" {
			return "", false
		}
		return fmt.Sprintf(`[%s%s"%s"]`, f.attribute, f.kind, q), true
	}
	return "", false
}

func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case (r >= '0' && r <= '9') || r == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Validate returns INVALID_FILTER for the first filter that cannot be
// evaluated.
func Validate(filters []Filter) error {
	for _, f := range filters {
		if f.invalid {
			return types.Errorf(types.ErrInvalidFilter, "filter %s has no pattern", f)
		}
	}
	return nil
}

// MatchAll reports whether el satisfies every filter.
func MatchAll(ctx context.Context, el dom.Element, filters []Filter) (bool, error) {
	for _, f := range filters {
		ok, err := f.Match(ctx, el)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// Split separates the filters that can be pushed down into a CSS
// selector suffix from the ones that must be evaluated per element.
func Split(filters []Filter) (css string, post []Filter) {
	var b strings.Builder
	for _, f := range filters {
		if sel, ok := f.CSS(); ok {
			b.WriteString(sel)
			continue
		}
		post = append(post, f)
	}
	return b.String(), post
}

// Apply narrows list to the elements satisfying every filter.
func Apply(ctx context.Context, list dom.List, filters []Filter) (dom.List, error) {
	if len(filters) == 0 {
		return list, nil
	}
	return list.Filter(ctx, func(ctx context.Context, el dom.Element) (bool, error) {
		return MatchAll(ctx, el, filters)
	})
}
