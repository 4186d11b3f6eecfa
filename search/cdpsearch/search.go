// Package cdpsearch resolves locators against a live Chrome page through
// the DevTools protocol.
package cdpsearch

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"go.uber.org/zap"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/search"
)

// Browser is the part of a Chrome session a Search needs. Driver is the
// production implementation.
type Browser interface {
	// QueryNodes returns every node matching expr, possibly none.
	QueryNodes(ctx context.Context, expr string, xpath bool) ([]*cdp.Node, error)
	// CallOnNode runs a JavaScript function with the node bound to this
	// and decodes the returned value into res.
	CallOnNode(ctx context.Context, node *cdp.Node, function string, res any, args ...any) error
}

// Search queries the current page of a Browser.
type Search struct {
	browser Browser
	logger  *zap.Logger
}

var _ search.Search = (*Search)(nil)

// New creates a Search over b.
func New(b Browser, logger *zap.Logger) *Search {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Search{
		browser: b,
		logger:  logger.With(zap.String("component", "cdp_search")),
	}
}

// Find implements search.Search.
func (s *Search) Find(ctx context.Context, loc locator.Locator) (dom.List, error) {
	return s.FindWithFilters(ctx, loc, nil)
}

// FindWithFilters implements search.Search.
func (s *Search) FindWithFilters(ctx context.Context, loc locator.Locator, filters []filter.Filter) (dom.List, error) {
	return search.Resolve(ctx, s.query, loc, filters)
}

func (s *Search) query(ctx context.Context, loc locator.Locator) (dom.List, error) {
	expr, xpath := loc.Value(), true
	if css, ok := loc.CSS(); ok {
		expr, xpath = css, false
	}
	nodes, err := s.browser.QueryNodes(ctx, expr, xpath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("nodes queried", zap.String("expr", expr), zap.Int("count", len(nodes)))

	list := make(dom.List, 0, len(nodes))
	for _, n := range nodes {
		if n.NodeType != cdp.NodeTypeElement {
			continue
		}
		list = append(list, newElement(s.browser, n))
	}
	return list, nil
}

// Instantiator implements search.Search.
func (s *Search) Instantiator() dom.Instantiator {
	return dom.DefaultInstantiator{}
}
