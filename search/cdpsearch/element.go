package cdpsearch

import (
	"context"
	"strings"

	"github.com/chromedp/cdproto/cdp"

	"github.com/BaSui01/fluentwait/dom"
)

// Functions evaluated with the element bound to this.
const (
	jsText      = `function() { return (this.innerText || this.textContent || "").trim(); }`
	jsAttribute = `function(name) { const v = this.getAttribute(name); return { present: v !== null, value: v === null ? "" : v }; }`
	jsDisplayed = `function() {
	if (!this.isConnected) return false;
	const style = window.getComputedStyle(this);
	if (style.display === "none" || style.visibility === "hidden") return false;
	return this.getClientRects().length > 0;
}`
	jsEnabled  = `function() { return !this.matches(":disabled"); }`
	jsSelected = `function() { return !!(this.selected || this.checked); }`
)

type attributeResult struct {
	Present bool   `json:"present"`
	Value   string `json:"value"`
}

// element is a remote DOM node. Calls on a node the page has since
// dropped fail with STALE_ELEMENT.
type element struct {
	browser Browser
	node    *cdp.Node
	tag     string
}

var _ dom.Element = (*element)(nil)

func newElement(b Browser, n *cdp.Node) *element {
	tag := n.LocalName
	if tag == "" {
		tag = strings.ToLower(n.NodeName)
	}
	return &element{browser: b, node: n, tag: tag}
}

func (e *element) TagName() string { return e.tag }

func (e *element) Attribute(ctx context.Context, name string) (string, bool, error) {
	var res attributeResult
	if err := e.browser.CallOnNode(ctx, e.node, jsAttribute, &res, name); err != nil {
		return "", false, err
	}
	return res.Value, res.Present, nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.browser.CallOnNode(ctx, e.node, jsText, &text)
	return text, err
}

func (e *element) Displayed(ctx context.Context) (bool, error) {
	return e.flag(ctx, jsDisplayed)
}

func (e *element) Enabled(ctx context.Context) (bool, error) {
	return e.flag(ctx, jsEnabled)
}

func (e *element) Selected(ctx context.Context) (bool, error) {
	return e.flag(ctx, jsSelected)
}

func (e *element) flag(ctx context.Context, fn string) (bool, error) {
	var ok bool
	if err := e.browser.CallOnNode(ctx, e.node, fn, &ok); err != nil {
		return false, err
	}
	return ok, nil
}
