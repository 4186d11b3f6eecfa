package wait

import (
	"context"
	"fmt"

	"github.com/BaSui01/fluentwait/dom"
)

// SizeBuilder waits on the number of matching elements.
type SizeBuilder struct {
	matcher *LocatorMatcher
}

func (b *SizeBuilder) until(ctx context.Context, op string, n int, cmp func(size int) bool) error {
	exp := expectation{
		unmet: fmt.Sprintf("does not have size %s %d", op, n),
		met:   fmt.Sprintf("has size %s %d", op, n),
	}
	return b.matcher.untilList(ctx, b.matcher.negation, exp, func(_ context.Context, list dom.List) (bool, error) {
		return cmp(list.Len()), nil
	})
}

// EqualTo waits until exactly n elements match.
func (b *SizeBuilder) EqualTo(ctx context.Context, n int) error {
	return b.until(ctx, "==", n, func(size int) bool { return size == n })
}

// NotEqualTo waits until the count differs from n.
func (b *SizeBuilder) NotEqualTo(ctx context.Context, n int) error {
	return b.until(ctx, "!=", n, func(size int) bool { return size != n })
}

// LessThan waits until fewer than n elements match.
func (b *SizeBuilder) LessThan(ctx context.Context, n int) error {
	return b.until(ctx, "<", n, func(size int) bool { return size < n })
}

// LessThanOrEqualTo waits until at most n elements match.
func (b *SizeBuilder) LessThanOrEqualTo(ctx context.Context, n int) error {
	return b.until(ctx, "<=", n, func(size int) bool { return size <= n })
}

// GreaterThan waits until more than n elements match.
func (b *SizeBuilder) GreaterThan(ctx context.Context, n int) error {
	return b.until(ctx, ">", n, func(size int) bool { return size > n })
}

// GreaterThanOrEqualTo waits until at least n elements match.
func (b *SizeBuilder) GreaterThanOrEqualTo(ctx context.Context, n int) error {
	return b.until(ctx, ">=", n, func(size int) bool { return size >= n })
}
