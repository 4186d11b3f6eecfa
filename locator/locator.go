// Package locator 描述如何在页面中查找元素。
package locator

import (
	"fmt"
	"strings"
)

// Strategy is the lookup mechanism of a locator.
type Strategy string

const (
	CSS       Strategy = "css"
	XPath     Strategy = "xpath"
	ID        Strategy = "id"
	Name      Strategy = "name"
	ClassName Strategy = "class"
	TagName   Strategy = "tag"
	LinkText  Strategy = "link"
)

var strategies = []Strategy{CSS, XPath, ID, Name, ClassName, TagName, LinkText}

// Locator 是不可变的选择器表达式
type Locator struct {
	strategy Strategy
	value    string
}

// ByCSS locates elements with a CSS selector.
func ByCSS(selector string) Locator { return Locator{strategy: CSS, value: selector} }

// ByXPath locates elements with an XPath expression.
func ByXPath(expr string) Locator { return Locator{strategy: XPath, value: expr} }

// ByID locates elements by id attribute.
func ByID(id string) Locator { return Locator{strategy: ID, value: id} }

// ByName locates elements by name attribute.
func ByName(name string) Locator { return Locator{strategy: Name, value: name} }

// ByClassName locates elements carrying the given class.
func ByClassName(class string) Locator { return Locator{strategy: ClassName, value: class} }

// ByTagName locates elements by tag.
func ByTagName(tag string) Locator { return Locator{strategy: TagName, value: tag} }

// ByLinkText locates anchors whose trimmed text equals text.
func ByLinkText(text string) Locator { return Locator{strategy: LinkText, value: text} }

// Parse 从原始选择器字符串解析定位器。
// 带 "strategy=" 前缀时按前缀选择策略，否则视为 CSS 选择器。
func Parse(raw string) Locator {
	for _, s := range strategies {
		prefix := string(s) + "="
		if strings.HasPrefix(raw, prefix) {
			return Locator{strategy: s, value: raw[len(prefix):]}
		}
	}
	return ByCSS(raw)
}

// Strategy returns the lookup mechanism.
func (l Locator) Strategy() Strategy { return l.strategy }

// Value returns the raw selector expression.
func (l Locator) Value() string { return l.value }

// IsZero reports whether l was never constructed.
func (l Locator) IsZero() bool { return l.strategy == "" }

// String renders the locator as "strategy=value".
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.strategy, l.value)
}

// CSS returns the CSS selector equivalent to l. XPath has none.
// Link text locators map to "a" and need a text post filter, see
// NeedsLinkTextFilter.
func (l Locator) CSS() (string, bool) {
	switch l.strategy {
	case CSS:
		return l.value, true
	case ID:
		return fmt.Sprintf(`[id="%s"]`, Quote(l.value)), true
	case Name:
		return fmt.Sprintf(`[name="%s"]`, Quote(l.value)), true
	case ClassName:
		return fmt.Sprintf(`[class~="%s"]`, Quote(l.value)), true
	case TagName:
		return l.value, true
	case LinkText:
		return "a", true
	default:
		return "", false
	}
}

// NeedsLinkTextFilter reports whether matches must also be checked for an
// exact link text.
func (l Locator) NeedsLinkTextFilter() bool { return l.strategy == LinkText }

// Refine appends a CSS suffix (attribute selectors) to l. It fails for
// non CSS locators and for selector groups, where a suffix would only
// narrow the last member.
func (l Locator) Refine(suffix string) (Locator, bool) {
	if suffix == "" {
		return l, true
	}
	css, ok := l.CSS()
	if !ok || l.strategy == LinkText || isGroup(css) {
		return l, false
	}
	css = strings.TrimSpace(css)
	if css == "" {
		return l, false
	}
	return ByCSS(css + suffix), true
}

// Quote escapes a value for use inside a double quoted CSS string.
func Quote(v string) string {
	return cssQuoter.Replace(v)
}

var cssQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `, "\r", `\d `)

// isGroup reports whether css holds a top-level comma.
func isGroup(css string) bool {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range css {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(' || r == '[':
			depth++
		case r == ')' || r == ']':
			depth--
		case r == ',' && depth == 0:
			return true
		}
	}
	return false
}
