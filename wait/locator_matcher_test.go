package wait

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/testutil"
	"github.com/BaSui01/fluentwait/testutil/mocks"
	"github.com/BaSui01/fluentwait/types"
)

func TestLocatorMatcher_Description(t *testing.T) {
	w := New(mocks.NewMockSearch())

	assert.Equal(t, "Selector #login", w.UntilSelector("#login").Description())
	assert.Equal(t, "Selector xpath=//form", w.Until(locator.ByXPath("//form")).Description())
	assert.Equal(t, locator.ByCSS("#login"), w.UntilSelector("#login").Locator())
}

func TestLocatorMatcher_FindWithoutFilters(t *testing.T) {
	ctx := context.Background()
	loc := locator.ByCSS("li")
	a, b := mocks.NewFakeElement("li"), mocks.NewFakeElement("li")
	s := mocks.NewMockSearch().WithElements(loc, a, b)

	list, err := New(s).Until(loc).Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.List{a, b}, list)

	require.Len(t, s.FindCalls(), 1)
	assert.Equal(t, loc, s.FindCalls()[0].Locator)
	assert.Empty(t, s.FilteredCalls(), "filtered resolution must not run without filters")
}

func TestLocatorMatcher_FindWithFilters(t *testing.T) {
	ctx := context.Background()
	loc := locator.ByCSS("input")
	user := mocks.NewFakeElement("input").WithID("user")
	pass := mocks.NewFakeElement("input").WithID("pass")
	s := mocks.NewMockSearch().WithElements(loc, user, pass)

	list, err := New(s).Until(loc).WithID("pass").Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, dom.List{pass}, list)

	assert.Empty(t, s.FindCalls())
	calls := s.FilteredCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, loc, calls[0].Locator)
	assert.Equal(t, []filter.Filter{filter.ID("pass")}, calls[0].Filters)
}

func TestLocatorMatcher_FilterChainingKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := mocks.NewMockSearch()

	_, err := New(s).UntilSelector("input").WithID("x").WithName("y").Find(ctx)
	require.NoError(t, err)

	calls := s.FilteredCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []filter.Filter{filter.ID("x"), filter.Name("y")}, calls[0].Filters)
}

func TestLocatorMatcher_FindSwallowsNotFoundAndStale(t *testing.T) {
	ctx := context.Background()

	for name, lookupErr := range map[string]error{
		"not found":         types.NotFound("li"),
		"stale":             types.Stale("li"),
		"wrapped not found": errors.Join(errors.New("query"), types.NotFound("li")),
	} {
		t.Run(name, func(t *testing.T) {
			s := mocks.NewMockSearch().WithFindError(lookupErr)
			m := New(s).UntilSelector("li")

			list, err := m.Find(ctx)
			require.NoError(t, err)
			require.NotNil(t, list)
			assert.Equal(t, 0, list.Len())
			assert.Equal(t, 1, s.InstantiatorCalls())

			list, err = m.WithClass("x").Find(ctx)
			require.NoError(t, err)
			assert.True(t, list.Empty())
			assert.Equal(t, 2, s.InstantiatorCalls())
		})
	}
}

func TestLocatorMatcher_FindPropagatesOtherErrors(t *testing.T) {
	ctx := context.Background()
	boom := types.NewError(types.ErrDriverError, "target crashed")
	s := mocks.NewMockSearch().WithFindError(boom)

	_, err := New(s).UntilSelector("li").Find(ctx)
	assert.Same(t, boom, err)

	_, err = New(s).UntilSelector("li").WithText("a").Find(ctx)
	assert.Same(t, boom, err)
	assert.Equal(t, 0, s.InstantiatorCalls())
}

func TestLocatorMatcher_NotSharesFilters(t *testing.T) {
	m := New(mocks.NewMockSearch()).UntilSelector("li").WithID("a")
	neg := m.Not()

	assert.False(t, m.Negated(), "receiver must not change")
	assert.True(t, neg.Negated())
	assert.False(t, neg.Not().Negated())
	assert.Equal(t, m.Locator(), neg.Locator())
	assert.Equal(t, m.Description(), neg.Description())

	m.WithName("b")
	assert.Equal(t, []filter.Filter{filter.ID("a"), filter.Name("b")}, neg.Filters())

	neg.WithClass("c")
	assert.Equal(t, []filter.Filter{filter.ID("a"), filter.Name("b"), filter.Class("c")}, m.Filters())
}

func TestLocatorMatcher_Builders(t *testing.T) {
	m := New(mocks.NewMockSearch()).UntilSelector("a")
	re := regexp.MustCompile(`^/docs/`)

	m.WithIDThat().StartsWith("nav-").
		WithNameThat().EqualTo("").
		WithClassThat().Contains("link").
		WithTextThat().NotContains("draft").
		With("href").Matches(re).
		With("rel").NotStartsWith("no").
		With("target").NotEndsWith("blank").
		With("title").EndsWith("!").
		With("lang").NotMatches(re)

	var got []string
	for _, f := range m.Filters() {
		got = append(got, f.String())
	}
	assert.Equal(t, []string{
		"[id^=nav-]",
		"[name=]",
		"[class*=link]",
		"[text!*=draft]",
		"[href~/^/docs//]",
		"[rel!^=no]",
		"[target!$=blank]",
		"[title$=!]",
		"[lang!~/^/docs//]",
	}, got)
}

func TestLocatorMatcher_BuildMessage(t *testing.T) {
	m := New(mocks.NewMockSearch()).UntilSelector("div")
	assert.Equal(t, "Wait", m.BuildMessage("Wait"))

	m.WithID("x")
	assert.Equal(t, "Wait[id=x] Filters : ", m.BuildMessage("Wait"))

	m.WithText("hello")
	assert.Equal(t, "Wait[id=x][text*=hello] Filters : ", m.BuildMessage("Wait"))
}

func TestLocatorMatcher_FiltersSnapshot(t *testing.T) {
	m := New(mocks.NewMockSearch()).UntilSelector("div").WithID("x")
	snap := m.Filters()
	snap[0] = filter.ID("y")
	assert.Equal(t, filter.ID("x"), m.Filters()[0])
}

func TestLocatorMatcher_NilPatternAbortsWait(t *testing.T) {
	ctx := context.Background()
	loc := locator.ByCSS("a")
	s := mocks.NewMockSearch().WithElements(loc, mocks.NewFakeElement("a").WithAttr("href", "/x"))
	w := New(s).AtMost(time.Minute)

	m := w.Until(loc).With("href").Matches(nil)
	assert.Equal(t, "Selector css=a[href~/<nil>/] Filters : ", m.BuildMessage(m.Description()))

	err := m.IsPresent(ctx)
	testutil.AssertErrorCode(t, err, types.ErrInvalidFilter)
	assert.Len(t, s.FilteredCalls(), 1, "an invalid filter stops the wait at once")

	err = w.Until(loc).With("href").NotMatches(nil).Not().IsPresent(ctx)
	testutil.AssertErrorCode(t, err, types.ErrInvalidFilter)
}
