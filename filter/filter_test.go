package filter_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/testutil/mocks"
	"github.com/BaSui01/fluentwait/types"
)

func TestFilter_String(t *testing.T) {
	tests := []struct {
		f    filter.Filter
		want string
	}{
		{filter.ID("x"), "[id=x]"},
		{filter.Name("q"), "[name=q]"},
		{filter.Class("btn"), "[class=btn]"},
		{filter.Text("Sign in"), "[text*=Sign in]"},
		{filter.Attribute("href", "/a"), "[href=/a]"},
		{filter.New("href", filter.StartsWith, "http"), "[href^=http]"},
		{filter.New("src", filter.EndsWith, ".png"), "[src$=.png]"},
		{filter.New("class", filter.NotEndsWith, "x"), "[class!$=x]"},
		{filter.New("text", filter.NotContains, "err"), "[text!*=err]"},
		{filter.NewPattern("id", filter.Matches, regexp.MustCompile(`^row-\d+$`)), `[id~/^row-\d+$/]`},
		{filter.NewPattern("id", filter.NotMatches, regexp.MustCompile(`a`)), `[id!~/a/]`},
		{filter.ID(""), "[id=]"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.String())
		})
	}
}

func TestFilter_Match(t *testing.T) {
	ctx := context.Background()
	el := mocks.NewFakeElement("button").
		WithID("submit").
		WithName("go").
		WithClass("btn  btn-primary").
		WithAttr("href", "https://example.com/a.png").
		WithText("Sign in now")

	tests := []struct {
		name string
		f    filter.Filter
		want bool
	}{
		{"id equals", filter.ID("submit"), true},
		{"id differs", filter.ID("subm"), false},
		{"name equals", filter.Name("go"), true},
		{"class token", filter.Class("btn-primary"), true},
		{"class partial token", filter.Class("btn-prim"), false},
		{"class contains raw", filter.New("class", filter.Contains, "n  b"), true},
		{"text contains", filter.Text("in no"), true},
		{"text equals", filter.New("text", filter.Equals, "Sign in now"), true},
		{"text missing", filter.Text("Sign out"), false},
		{"starts with", filter.New("href", filter.StartsWith, "https://"), true},
		{"ends with", filter.New("href", filter.EndsWith, ".png"), true},
		{"not contains", filter.New("href", filter.NotContains, "example"), false},
		{"not starts with", filter.New("href", filter.NotStartsWith, "ftp"), true},
		{"not ends with", filter.New("href", filter.NotEndsWith, ".jpg"), true},
		{"matches", filter.NewPattern("id", filter.Matches, regexp.MustCompile(`^sub`)), true},
		{"not matches", filter.NewPattern("id", filter.NotMatches, regexp.MustCompile(`^sub`)), false},
		{"missing attr equals", filter.Attribute("title", ""), false},
		{"missing attr contains", filter.New("title", filter.Contains, ""), false},
		{"missing attr negated", filter.New("title", filter.NotContains, "x"), true},
		{"empty contains", filter.New("href", filter.Contains, ""), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.f.Match(ctx, el)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_MatchPropagatesStale(t *testing.T) {
	ctx := context.Background()
	el := mocks.NewFakeElement("div").WithID("a")
	el.MarkStale()

	_, err := filter.ID("a").Match(ctx, el)
	assert.True(t, types.IsStale(err))

	_, err = filter.Text("a").Match(ctx, el)
	assert.True(t, types.IsStale(err))
}

func TestFilter_MatchWithGeneratedMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	el := mocks.NewMockElement(ctrl)
	el.EXPECT().Attribute(gomock.Any(), "data-id").Return("42", true, nil)
	el.EXPECT().Text(gomock.Any()).Return("", errors.New("cdp: connection reset"))

	ok, err := filter.Attribute("data-id", "42").Match(ctx, el)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = filter.Text("x").Match(ctx, el)
	assert.EqualError(t, err, "cdp: connection reset")
}

func TestFilter_CSS(t *testing.T) {
	tests := []struct {
		name string
		f    filter.Filter
		css  string
		ok   bool
	}{
		{"id", filter.ID("x"), `[id="x"]`, true},
		{"id empty", filter.ID(""), `[id=""]`, true},
		{"quoted", filter.Name(`a"b`), `[name="a\"b"]`, true},
		{"class", filter.Class("btn"), `[class~="btn"]`, true},
		{"class with space", filter.Class("a b"), "", false},
		{"class empty", filter.Class(""), "", false},
		{"prefix", filter.New("href", filter.StartsWith, "/a"), `[href^="/a"]`, true},
		{"data attr", filter.New("data-state", filter.Contains, "op"), `[data-state*="op"]`, true},
		{"empty substring", filter.New("href", filter.EndsWith, ""), "", false},
		{"text", filter.Text("x"), "", false},
		{"negated", filter.New("id", filter.NotContains, "x"), "", false},
		{"pattern", filter.NewPattern("id", filter.Matches, regexp.MustCompile("x")), "", false},
		{"odd attr name", filter.Attribute("x:y", "1"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			css, ok := tt.f.CSS()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.css, css)
		})
	}
}

func TestSplit(t *testing.T) {
	css, post := filter.Split([]filter.Filter{
		filter.ID("a"),
		filter.Text("hello"),
		filter.Class("c"),
		filter.New("href", filter.NotContains, "x"),
	})
	assert.Equal(t, `[id="a"][class~="c"]`, css)
	require.Len(t, post, 2)
	assert.Equal(t, "[text*=hello]", post[0].String())
	assert.Equal(t, "[href!*=x]", post[1].String())

	css, post = filter.Split(nil)
	assert.Empty(t, css)
	assert.Empty(t, post)
}

func TestApplyAndMatchAll(t *testing.T) {
	ctx := context.Background()
	a := mocks.NewFakeElement("li").WithClass("item").WithText("one")
	b := mocks.NewFakeElement("li").WithClass("item done").WithText("two")
	c := mocks.NewFakeElement("li").WithText("three")

	got, err := filter.Apply(ctx, dom.List{a, b, c}, []filter.Filter{filter.Class("item"), filter.Text("o")})
	require.NoError(t, err)
	assert.Equal(t, dom.List{a, b}, got)

	got, err = filter.Apply(ctx, dom.List{a, b, c}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	ok, err := filter.MatchAll(ctx, c, nil)
	require.NoError(t, err)
	assert.True(t, ok, "no filter matches everything")
}

func TestNewPattern_NilIsInvalid(t *testing.T) {
	ctx := context.Background()
	for _, kind := range []filter.Kind{filter.Matches, filter.NotMatches} {
		f := filter.NewPattern("href", kind, nil)
		assert.False(t, f.Valid())
		assert.Equal(t, "[href"+kind.String()+"/<nil>/]", f.String())

		_, ok := f.CSS()
		assert.False(t, ok)

		matched, err := f.Match(ctx, mocks.NewFakeElement("a").WithAttr("href", "/x"))
		assert.False(t, matched)
		assert.True(t, types.HasCode(err, types.ErrInvalidFilter))

		err = filter.Validate([]filter.Filter{filter.ID("a"), f})
		assert.True(t, types.HasCode(err, types.ErrInvalidFilter))
	}
	assert.NoError(t, filter.Validate([]filter.Filter{filter.ID("a")}))
	assert.True(t, filter.ID("a").Valid())
}
