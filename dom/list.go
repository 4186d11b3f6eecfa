package dom

import "context"

// List is an ordered set of located elements.
type List []Element

// Len returns the number of elements.
func (l List) Len() int { return len(l) }

// Empty reports whether the list holds no element.
func (l List) Empty() bool { return len(l) == 0 }

// First returns the first element, if any.
func (l List) First() (Element, bool) {
	if len(l) == 0 {
		return nil, false
	}
	return l[0], true
}

// Texts returns the text of every element in order.
func (l List) Texts(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(l))
	for _, el := range l {
		txt, err := el.Text(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, txt)
	}
	return out, nil
}

// Attributes returns the value of attr for every element; missing
// attributes yield the empty string.
func (l List) Attributes(ctx context.Context, attr string) ([]string, error) {
	out := make([]string, 0, len(l))
	for _, el := range l {
		v, _, err := el.Attribute(ctx, attr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Any reports whether pred holds for at least one element. It stops at the
// first error.
func (l List) Any(ctx context.Context, pred func(context.Context, Element) (bool, error)) (bool, error) {
	for _, el := range l {
		ok, err := pred(ctx, el)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Filter returns the elements for which pred holds.
func (l List) Filter(ctx context.Context, pred func(context.Context, Element) (bool, error)) (List, error) {
	out := make(List, 0, len(l))
	for _, el := range l {
		ok, err := pred(ctx, el)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, el)
		}
	}
	return out, nil
}
