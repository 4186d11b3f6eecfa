package cdpsearch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/testutil"
	"github.com/BaSui01/fluentwait/types"
	"github.com/BaSui01/fluentwait/wait"
)

// fakeNode is the page side state of one node.
type fakeNode struct {
	node      *cdp.Node
	attrs     map[string]string
	text      string
	displayed bool
	enabled   bool
	selected  bool
}

// fakeBrowser answers queries from a table keyed by expression.
type fakeBrowser struct {
	mu      sync.Mutex
	results map[string][]*fakeNode
	byID    map[cdp.NodeID]*fakeNode
	removed map[cdp.NodeID]bool
	queries []string
	nextID  cdp.NodeID
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		results: make(map[string][]*fakeNode),
		byID:    make(map[cdp.NodeID]*fakeNode),
		removed: make(map[cdp.NodeID]bool),
	}
}

func (b *fakeBrowser) add(expr, tag, text string, attrs map[string]string) *fakeNode {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	n := &fakeNode{
		node:      &cdp.Node{NodeID: b.nextID, NodeType: cdp.NodeTypeElement, NodeName: tag, LocalName: tag},
		attrs:     attrs,
		text:      text,
		displayed: true,
		enabled:   true,
	}
	b.results[expr] = append(b.results[expr], n)
	b.byID[n.node.NodeID] = n
	return n
}

func (b *fakeBrowser) remove(n *fakeNode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removed[n.node.NodeID] = true
	for expr, list := range b.results {
		kept := list[:0]
		for _, fn := range list {
			if fn != n {
				kept = append(kept, fn)
			}
		}
		b.results[expr] = kept
	}
}

func (b *fakeBrowser) QueryNodes(_ context.Context, expr string, xpath bool) ([]*cdp.Node, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := expr
	if xpath {
		key = "xpath:" + expr
	}
	b.queries = append(b.queries, key)
	var nodes []*cdp.Node
	for _, n := range b.results[key] {
		nodes = append(nodes, n.node)
	}
	return nodes, nil
}

func (b *fakeBrowser) CallOnNode(_ context.Context, node *cdp.Node, function string, res any, args ...any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.removed[node.NodeID] {
		return classify(errors.New("No node with given id found (-32000)"), node.LocalName)
	}
	n := b.byID[node.NodeID]
	switch function {
	case jsText:
		*res.(*string) = n.text
	case jsAttribute:
		v, ok := n.attrs[args[0].(string)]
		*res.(*attributeResult) = attributeResult{Present: ok, Value: v}
	case jsDisplayed:
		*res.(*bool) = n.displayed
	case jsEnabled:
		*res.(*bool) = n.enabled
	case jsSelected:
		*res.(*bool) = n.selected
	default:
		return fmt.Errorf("unexpected function %q", function)
	}
	return nil
}

func (b *fakeBrowser) lastQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[len(b.queries)-1]
}

func TestSearch_QueryExpressions(t *testing.T) {
	ctx := testutil.TestContext(t)
	b := newFakeBrowser()
	b.add(`[id="submit"]`, "button", "Sign in", map[string]string{"id": "submit"})
	b.add("xpath://button", "button", "Sign in", nil)
	b.add("a", "a", "Help", nil)
	b.add("a", "a", "Create account", nil)
	s := New(b, zap.NewNop())

	list, err := s.Find(ctx, locator.ByID("submit"))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, "button", list[0].TagName())

	list, err = s.Find(ctx, locator.ByXPath("//button"))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, "xpath://button", b.lastQuery())

	list, err = s.Find(ctx, locator.ByLinkText("Create account"))
	require.NoError(t, err)
	testutil.AssertTexts(t, ctx, []string{"Create account"}, list)

	_, err = s.Find(ctx, locator.ByCSS(".missing"))
	assert.True(t, types.IsNotFound(err))
}

func TestSearch_FilterPushdown(t *testing.T) {
	ctx := testutil.TestContext(t)
	b := newFakeBrowser()
	b.add(`li[data-state="open"]`, "li", "Write code", map[string]string{"data-state": "open"})
	b.add(`li[data-state="open"]`, "li", "Write tests", map[string]string{"data-state": "open"})
	s := New(b, nil)

	list, err := s.FindWithFilters(ctx, locator.ByCSS("li"), []filter.Filter{
		filter.Attribute("data-state", "open"),
		filter.Text("tests"),
	})
	require.NoError(t, err)
	assert.Equal(t, `li[data-state="open"]`, b.lastQuery())
	testutil.AssertTexts(t, ctx, []string{"Write tests"}, list)
}

func TestElement_State(t *testing.T) {
	ctx := testutil.TestContext(t)
	b := newFakeBrowser()
	n := b.add("#remember", "input", "", map[string]string{"type": "checkbox"})
	n.selected = true
	n.enabled = false
	n.displayed = false
	s := New(b, nil)

	list, err := s.Find(ctx, locator.ByCSS("#remember"))
	require.NoError(t, err)
	el := list[0]

	v, ok, err := el.Attribute(ctx, "type")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "checkbox", v)

	_, ok, err = el.Attribute(ctx, "checked")
	require.NoError(t, err)
	assert.False(t, ok)

	selected, err := el.Selected(ctx)
	require.NoError(t, err)
	assert.True(t, selected)
	enabled, err := el.Enabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)
	displayed, err := el.Displayed(ctx)
	require.NoError(t, err)
	assert.False(t, displayed)
}

func TestElement_StaleAfterRemoval(t *testing.T) {
	ctx := testutil.TestContext(t)
	b := newFakeBrowser()
	n := b.add("#toast", "div", "Saved", nil)
	s := New(b, nil)

	list, err := s.Find(ctx, locator.ByCSS("#toast"))
	require.NoError(t, err)
	b.remove(n)

	_, err = list[0].Text(ctx)
	assert.True(t, types.IsStale(err))

	w := wait.New(s).AtMost(time.Second).PollingEvery(5 * time.Millisecond)
	require.NoError(t, w.UntilSelector("#toast").IsNotPresent(ctx))
}

func TestSearch_WaitUntilNodeAppears(t *testing.T) {
	ctx := testutil.TestContext(t)
	b := newFakeBrowser()
	s := New(b, nil)

	go func() {
		time.Sleep(30 * time.Millisecond)
		b.add(`.status[class~="ready"]`, "span", "Ready", map[string]string{"class": "status ready"})
	}()

	w := wait.New(s).AtMost(2 * time.Second).PollingEvery(5 * time.Millisecond)
	require.NoError(t, w.UntilSelector(".status").WithClass("ready").HasText(ctx, "Ready"))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil, "x"))
	assert.ErrorIs(t, classify(context.DeadlineExceeded, "x"), context.DeadlineExceeded)
	assert.True(t, types.IsStale(classify(errors.New("Could not find node with given id"), "div")))
	testutil.AssertErrorCode(t, classify(errors.New("websocket closed"), "query"), types.ErrDriverError)

	already := types.NewError(types.ErrDriverClosed, "closed")
	assert.Same(t, already, classify(already, "x"))
}

func TestDriver_ClosedRejectsCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Driver{
		ctx:         ctx,
		cancel:      cancel,
		allocCtx:    ctx,
		allocCancel: cancel,
		logger:      zap.NewNop(),
	}
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	_, err := d.QueryNodes(context.Background(), "div", false)
	testutil.AssertErrorCode(t, err, types.ErrDriverClosed)
	_, err = d.PageSource(context.Background())
	testutil.AssertErrorCode(t, err, types.ErrDriverClosed)
	_, err = d.Screenshot(context.Background())
	testutil.AssertErrorCode(t, err, types.ErrDriverClosed)
}
