package htmlsearch

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/types"
)

// element is a node of the snapshot its lookup parsed. It turns stale
// once the owner is explicitly reloaded.
type element struct {
	owner *Search
	sel   *goquery.Selection
	epoch uint64
	tag   string
}

var _ dom.Element = (*element)(nil)

func newElement(owner *Search, sel *goquery.Selection, epoch uint64) *element {
	return &element{owner: owner, sel: sel, epoch: epoch, tag: goquery.NodeName(sel)}
}

func (e *element) check() error {
	if e.owner.currentEpoch() != e.epoch {
		return types.Stale(e.tag).WithDriver(driverName)
	}
	return nil
}

func (e *element) node() *html.Node {
	return e.sel.Get(0)
}

func (e *element) TagName() string { return e.tag }

func (e *element) Attribute(_ context.Context, name string) (string, bool, error) {
	if err := e.check(); err != nil {
		return "", false, err
	}
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

// Text returns the rendered text: script and style content skipped,
// whitespace runs collapsed.
func (e *element) Text(_ context.Context) (string, error) {
	if err := e.check(); err != nil {
		return "", err
	}
	var b strings.Builder
	collectText(e.node(), &b)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func collectText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Template, atom.Noscript:
			return
		case atom.Br:
			b.WriteByte(' ')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Displayed approximates rendering from markup: the element and its
// ancestors must not be hidden by attribute or inline style.
func (e *element) Displayed(_ context.Context) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	n := e.node()
	if n.DataAtom == atom.Input && strings.EqualFold(attr(n, "type"), "hidden") {
		return false, nil
	}
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Head, atom.Script, atom.Style, atom.Template, atom.Title, atom.Meta, atom.Link:
			return false, nil
		}
		if hasAttr(n, "hidden") || hiddenByStyle(attr(n, "style")) {
			return false, nil
		}
	}
	return true, nil
}

// Enabled is false for disabled form controls and controls inside a
// disabled fieldset.
func (e *element) Enabled(_ context.Context) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	for n := e.node(); n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasAttr(n, "disabled") {
			if n == e.node() || n.DataAtom == atom.Fieldset {
				return false, nil
			}
		}
	}
	return true, nil
}

func (e *element) Selected(_ context.Context) (bool, error) {
	if err := e.check(); err != nil {
		return false, err
	}
	n := e.node()
	return hasAttr(n, "selected") || hasAttr(n, "checked"), nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func hiddenByStyle(style string) bool {
	if style == "" {
		return false
	}
	compact := strings.ToLower(strings.Join(strings.Fields(style), ""))
	return strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden")
}
