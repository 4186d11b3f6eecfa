package wait

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/BaSui01/fluentwait/dom"
)

// expectation names a condition for failure messages: unmet is reported
// when a plain wait expires, met when a negated one does.
type expectation struct {
	unmet string
	met   string
}

type listPredicate func(ctx context.Context, list dom.List) (bool, error)

type elementPredicate func(ctx context.Context, el dom.Element) (bool, error)

// untilList polls Find until pred (inverted when negated) holds.
func (m *LocatorMatcher) untilList(ctx context.Context, negated bool, exp expectation, pred listPredicate) error {
	message := func() string {
		what := exp.unmet
		if negated {
			what = exp.met
		}
		return m.BuildMessage(m.description + " " + what)
	}
	return m.wait.until(ctx, m.description, func(ctx context.Context) (bool, error) {
		list, err := m.Find(ctx)
		if err != nil {
			return false, err
		}
		ok, err := pred(ctx, list)
		if err != nil {
			return false, err
		}
		return ok != negated, nil
	}, message)
}

// anyElement holds when at least one located element satisfies pred.
func anyElement(pred elementPredicate) listPredicate {
	return func(ctx context.Context, list dom.List) (bool, error) {
		return list.Any(ctx, pred)
	}
}

// IsPresent waits until at least one element matches.
func (m *LocatorMatcher) IsPresent(ctx context.Context) error {
	return m.untilList(ctx, m.negation, expectation{"is not present", "is present"},
		func(_ context.Context, list dom.List) (bool, error) {
			return !list.Empty(), nil
		})
}

// IsNotPresent waits until no element matches.
func (m *LocatorMatcher) IsNotPresent(ctx context.Context) error {
	return m.Not().IsPresent(ctx)
}

// HasSize waits until exactly n elements match.
func (m *LocatorMatcher) HasSize(ctx context.Context, n int) error {
	return m.HasSizeThat().EqualTo(ctx, n)
}

// HasSizeThat starts a size comparison.
func (m *LocatorMatcher) HasSizeThat() *SizeBuilder {
	return &SizeBuilder{matcher: m}
}

// HasText waits until some element's text contains text.
func (m *LocatorMatcher) HasText(ctx context.Context, text string) error {
	return m.untilList(ctx, m.negation,
		expectation{fmt.Sprintf("does not contain text %q", text), fmt.Sprintf("contains text %q", text)},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			got, err := el.Text(ctx)
			if err != nil {
				return false, err
			}
			return strings.Contains(got, text), nil
		}))
}

// HasTextMatching waits until some element's text matches re.
func (m *LocatorMatcher) HasTextMatching(ctx context.Context, re *regexp.Regexp) error {
	return m.untilList(ctx, m.negation,
		expectation{fmt.Sprintf("does not have text matching /%s/", re), fmt.Sprintf("has text matching /%s/", re)},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			got, err := el.Text(ctx)
			if err != nil {
				return false, err
			}
			return re.MatchString(got), nil
		}))
}

// HasAttribute waits until some element's attribute equals value.
func (m *LocatorMatcher) HasAttribute(ctx context.Context, attribute, value string) error {
	return m.untilList(ctx, m.negation,
		expectation{
			fmt.Sprintf("does not have %s %q", attribute, value),
			fmt.Sprintf("has %s %q", attribute, value),
		},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			got, ok, err := el.Attribute(ctx, attribute)
			if err != nil {
				return false, err
			}
			return ok && got == value, nil
		}))
}

// HasID waits until some element's id equals value.
func (m *LocatorMatcher) HasID(ctx context.Context, value string) error {
	return m.HasAttribute(ctx, "id", value)
}

// HasName waits until some element's name equals value.
func (m *LocatorMatcher) HasName(ctx context.Context, value string) error {
	return m.HasAttribute(ctx, "name", value)
}

// HasValue waits until some element's value equals value.
func (m *LocatorMatcher) HasValue(ctx context.Context, value string) error {
	return m.HasAttribute(ctx, "value", value)
}

// IsDisplayed waits until some element is displayed.
func (m *LocatorMatcher) IsDisplayed(ctx context.Context) error {
	return m.untilList(ctx, m.negation, expectation{"is not displayed", "is displayed"},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			return el.Displayed(ctx)
		}))
}

// IsNotDisplayed waits until no element is displayed, which includes
// no element being present.
func (m *LocatorMatcher) IsNotDisplayed(ctx context.Context) error {
	return m.Not().IsDisplayed(ctx)
}

// IsEnabled waits until some element is enabled.
func (m *LocatorMatcher) IsEnabled(ctx context.Context) error {
	return m.untilList(ctx, m.negation, expectation{"is not enabled", "is enabled"},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			return el.Enabled(ctx)
		}))
}

// IsSelected waits until some element is selected.
func (m *LocatorMatcher) IsSelected(ctx context.Context) error {
	return m.untilList(ctx, m.negation, expectation{"is not selected", "is selected"},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			return el.Selected(ctx)
		}))
}

// IsClickable waits until some element is both displayed and enabled.
func (m *LocatorMatcher) IsClickable(ctx context.Context) error {
	return m.untilList(ctx, m.negation, expectation{"is not clickable", "is clickable"},
		anyElement(func(ctx context.Context, el dom.Element) (bool, error) {
			shown, err := el.Displayed(ctx)
			if err != nil || !shown {
				return false, err
			}
			return el.Enabled(ctx)
		}))
}
