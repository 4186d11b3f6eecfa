// Package search defines the facility the wait matchers use to resolve
// locators into elements.
package search

import (
	"context"

	"github.com/BaSui01/fluentwait/dom"
	"github.com/BaSui01/fluentwait/filter"
	"github.com/BaSui01/fluentwait/locator"
)

// Search resolves locators against the current page.
//
// Both lookups are forced: an empty result is reported as an
// ELEMENT_NOT_FOUND error rather than an empty list, and references that
// went stale during the lookup are reported as STALE_ELEMENT. Every other
// error is a driver failure.
type Search interface {
	// Find resolves every element matching loc.
	Find(ctx context.Context, loc locator.Locator) (dom.List, error)
	// FindWithFilters resolves the elements matching loc and all filters.
	FindWithFilters(ctx context.Context, loc locator.Locator, filters []filter.Filter) (dom.List, error)
	// Instantiator builds lists of the container type this search returns.
	Instantiator() dom.Instantiator
}
