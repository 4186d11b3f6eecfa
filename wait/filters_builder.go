package wait

import (
	"regexp"

	"github.com/BaSui01/fluentwait/filter"
)

// FiltersBuilder completes a filter on one attribute and appends it to its
// matcher.
type FiltersBuilder struct {
	matcher   *LocatorMatcher
	attribute string
}

func newFiltersBuilder(m *LocatorMatcher, attribute string) *FiltersBuilder {
	return &FiltersBuilder{matcher: m, attribute: attribute}
}

func (b *FiltersBuilder) add(kind filter.Kind, value string) *LocatorMatcher {
	b.matcher.addFilter(filter.New(b.attribute, kind, value))
	return b.matcher
}

// EqualTo requires the attribute to equal value.
func (b *FiltersBuilder) EqualTo(value string) *LocatorMatcher {
	return b.add(filter.Equals, value)
}

// Contains requires the attribute to contain value.
func (b *FiltersBuilder) Contains(value string) *LocatorMatcher {
	return b.add(filter.Contains, value)
}

// StartsWith requires the attribute to start with value.
func (b *FiltersBuilder) StartsWith(value string) *LocatorMatcher {
	return b.add(filter.StartsWith, value)
}

// EndsWith requires the attribute to end with value.
func (b *FiltersBuilder) EndsWith(value string) *LocatorMatcher {
	return b.add(filter.EndsWith, value)
}

// NotContains requires the attribute not to contain value.
func (b *FiltersBuilder) NotContains(value string) *LocatorMatcher {
	return b.add(filter.NotContains, value)
}

// NotStartsWith requires the attribute not to start with value.
func (b *FiltersBuilder) NotStartsWith(value string) *LocatorMatcher {
	return b.add(filter.NotStartsWith, value)
}

// NotEndsWith requires the attribute not to end with value.
func (b *FiltersBuilder) NotEndsWith(value string) *LocatorMatcher {
	return b.add(filter.NotEndsWith, value)
}

// Matches requires the attribute to match re.
func (b *FiltersBuilder) Matches(re *regexp.Regexp) *LocatorMatcher {
	b.matcher.addFilter(filter.NewPattern(b.attribute, filter.Matches, re))
	return b.matcher
}

// NotMatches requires the attribute not to match re.
func (b *FiltersBuilder) NotMatches(re *regexp.Regexp) *LocatorMatcher {
	b.matcher.addFilter(filter.NewPattern(b.attribute, filter.NotMatches, re))
	return b.matcher
}
