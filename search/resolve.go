package search

import (
	"context"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
	"github.com/BaSui01/fluentwait/types"
)

// QueryFunc runs one raw lookup for a locator, returning every match
// (possibly none).
type QueryFunc func(ctx context.Context, loc locator.Locator) (dom.List, error)

// Resolve is the lookup pipeline shared by the search implementations:
// push the CSS expressible filters down into the locator when it can be
// refined, query, post filter the rest and force a non-empty result.
func Resolve(ctx context.Context, query QueryFunc, loc locator.Locator, filters []filter.Filter) (dom.List, error) {
	if err := filter.Validate(filters); err != nil {
		return nil, err
	}
	post := filters
	target := loc
	if len(filters) > 0 {
		css, rest := filter.Split(filters)
		if refined, ok := loc.Refine(css); ok {
			target, post = refined, rest
		}
	}
	if loc.NeedsLinkTextFilter() {
		post = append([]filter.Filter{filter.New(filter.AttrText, filter.Equals, loc.Value())}, post...)
	}

	list, err := query(ctx, target)
	if err != nil {
		return nil, err
	}
	list, err = filter.Apply(ctx, list, post)
	if err != nil {
		return nil, err
	}
	if list.Empty() {
		return nil, types.NotFound(Describe(loc, filters))
	}
	return list, nil
}

// Describe renders a locator with its filters for error messages.
func Describe(loc locator.Locator, filters []filter.Filter) string {
	s := loc.String()
	for _, f := range filters {
		s += f.String()
	}
	return s
}
