// Package dom defines the element and element list values a search facility
// hands back to the wait matchers.
package dom

import "context"

// Element is a located element. Every accessor may fail with a stale
// element error once the underlying page has moved on.
//
//go:generate mockgen -destination=../testutil/mocks/mock_element.go -package=mocks github.com/BaSui01/fluentwait/dom Element
type Element interface {
	// TagName returns the lower-case tag name captured at lookup time.
	TagName() string
	// Attribute returns the attribute value and whether it is present.
	Attribute(ctx context.Context, name string) (string, bool, error)
	// Text returns the trimmed text content.
	Text(ctx context.Context) (string, error)
	// Displayed reports whether the element is rendered.
	Displayed(ctx context.Context) (bool, error)
	// Enabled reports whether the element accepts input.
	Enabled(ctx context.Context) (bool, error)
	// Selected reports whether an option, checkbox or radio is selected.
	Selected(ctx context.Context) (bool, error)
}

// Instantiator builds element lists of the concrete container a search
// facility hands out.
type Instantiator interface {
	NewList(elems ...Element) List
}

// DefaultInstantiator builds plain lists.
type DefaultInstantiator struct{}

// NewList returns a non-nil list holding elems.
func (DefaultInstantiator) NewList(elems ...Element) List {
	l := make(List, 0, len(elems))
	return append(l, elems...)
}
